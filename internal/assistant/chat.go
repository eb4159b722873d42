package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const DefaultSystemPrompt = "You are a friendly assistant of this Telegram bot. Answer briefly and in the language of the user."

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatAssistant answers every message on its own: the persona prompt and the
// user text, nothing remembered between calls.
type ChatAssistant struct {
	client       chatClient
	model        string
	systemPrompt string
	maxTokens    int
	temperature  float64
	timeout      time.Duration
	logger       *zap.Logger
}

func NewChatAssistant(client chatClient, model, systemPrompt string, maxTokens int, temperature float64, timeout time.Duration, logger *zap.Logger) *ChatAssistant {
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ChatAssistant{
		client:       client,
		model:        model,
		systemPrompt: systemPrompt,
		maxTokens:    maxTokens,
		temperature:  temperature,
		timeout:      timeout,
		logger:       logger,
	}
}

func (a *ChatAssistant) Mode() Mode {
	return ModeStateless
}

func (a *ChatAssistant) Handle(ctx context.Context, userID int64, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, a.request(text))
	if err != nil {
		return "", fmt.Errorf("failed to get chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		a.logger.Error("Chat completion returned no choices",
			zap.Int64("user_id", userID),
			zap.String("model", a.model))
		return "", ErrUnexpectedResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (a *ChatAssistant) request(text string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: a.systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		MaxTokens:   a.maxTokens,
		Temperature: float32(a.temperature),
	}
}
