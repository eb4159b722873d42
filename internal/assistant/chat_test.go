package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatClient struct {
	response openai.ChatCompletionResponse
	err      error
	requests []openai.ChatCompletionRequest
}

func (s *stubChatClient) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.requests = append(s.requests, request)
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return s.response, nil
}

func TestChatAssistant_SystemPromptFirst(t *testing.T) {
	client := &stubChatClient{
		response: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "  Sure thing!\n"}},
				{Message: openai.ChatCompletionMessage{Content: "ignored"}},
			},
		},
	}
	a := NewChatAssistant(client, "gpt-4o-mini", "You are a pirate.", 200, 0.3, 0, nil)

	for _, text := range []string{"first", "second"} {
		reply, err := a.Handle(context.Background(), 1, text)
		require.NoError(t, err)
		assert.Equal(t, "  Sure thing!\n", reply)
	}

	require.Len(t, client.requests, 2)
	for i, req := range client.requests {
		require.Len(t, req.Messages, 2, "no history may carry over between calls")
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Equal(t, "You are a pirate.", req.Messages[0].Content)
		assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role)
		assert.Equal(t, []string{"first", "second"}[i], req.Messages[1].Content)
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Equal(t, 200, req.MaxTokens)
		assert.InDelta(t, 0.3, req.Temperature, 0.0001)
	}
	assert.Equal(t, ModeStateless, a.Mode())
}

func TestChatAssistant_Defaults(t *testing.T) {
	client := &stubChatClient{
		response: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "hi"}}},
		},
	}
	a := NewChatAssistant(client, "", "", 0, 0.7, 0, nil)

	_, err := a.Handle(context.Background(), 1, "hello")
	require.NoError(t, err)
	assert.Equal(t, openai.GPT3Dot5Turbo, client.requests[0].Model)
	assert.Equal(t, DefaultSystemPrompt, client.requests[0].Messages[0].Content)
}

func TestChatAssistant_BackendError(t *testing.T) {
	boom := errors.New("502 bad gateway")
	a := NewChatAssistant(&stubChatClient{err: boom}, "", "", 0, 0.7, 0, nil)

	_, err := a.Handle(context.Background(), 1, "hello")
	assert.ErrorIs(t, err, boom)
}

func TestChatAssistant_NoChoices(t *testing.T) {
	a := NewChatAssistant(&stubChatClient{}, "", "", 0, 0.7, 0, nil)

	_, err := a.Handle(context.Background(), 1, "hello")
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}
