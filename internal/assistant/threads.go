package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/xaenox/assistant-bot/internal/metrics"
	"github.com/xaenox/assistant-bot/internal/models"
	"github.com/xaenox/assistant-bot/internal/storage"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultRunTimeout   = 2 * time.Minute

	cancelTimeout = 5 * time.Second
)

// ThreadsClient is the subset of the OpenAI Assistants API used here.
type ThreadsClient interface {
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID string, runID string) (openai.Run, error)
	CancelRun(ctx context.Context, threadID string, runID string) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)
}

type PollConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// ThreadAssistant keeps one remote thread per user and runs the configured
// assistant against it for every message.
type ThreadAssistant struct {
	client      ThreadsClient
	assistantID string
	threads     storage.ThreadStorage
	poll        PollConfig
	metrics     *metrics.BotMetrics
	logger      *zap.Logger
}

func NewThreadAssistant(client ThreadsClient, assistantID string, threads storage.ThreadStorage, poll PollConfig, m *metrics.BotMetrics, logger *zap.Logger) *ThreadAssistant {
	if poll.Interval <= 0 {
		poll.Interval = DefaultPollInterval
	}
	if poll.Timeout <= 0 {
		poll.Timeout = DefaultRunTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ThreadAssistant{
		client:      client,
		assistantID: assistantID,
		threads:     threads,
		poll:        poll,
		metrics:     m,
		logger:      logger,
	}
}

func (a *ThreadAssistant) Mode() Mode {
	return ModeStateful
}

func (a *ThreadAssistant) Handle(ctx context.Context, userID int64, text string) (string, error) {
	threadID, err := a.threads.GetOrCreateThread(ctx, userID, func(ctx context.Context) (string, error) {
		thread, err := a.client.CreateThread(ctx, openai.ThreadRequest{})
		if err != nil {
			return "", err
		}
		a.metrics.ObserveSessionCreated()
		a.logger.Info("Created thread",
			zap.Int64("user_id", userID),
			zap.String("thread_id", thread.ID))
		return thread.ID, nil
	})
	if err != nil {
		return "", err
	}
	a.threads.UpdateThreadLastUsed(ctx, userID)

	if _, err := a.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	}); err != nil {
		return "", fmt.Errorf("failed to add message to thread %s: %w", threadID, err)
	}

	created, err := a.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: a.assistantID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start run on thread %s: %w", threadID, err)
	}

	run, err := a.waitForRun(ctx, toRun(threadID, created))
	if err != nil {
		return "", err
	}

	if run.Status != models.RunStatusCompleted {
		a.logger.Error("Run did not complete",
			zap.Int64("user_id", userID),
			zap.String("thread_id", threadID),
			zap.String("run_id", run.ID),
			zap.String("status", string(run.Status)),
			zap.String("last_error", run.LastError))
		return "", &RunStatusError{RunID: run.ID, Status: run.Status, Detail: run.LastError}
	}

	return a.latestReply(ctx, threadID)
}

// waitForRun polls the run every interval until it leaves the pending
// states. The whole wait is bounded by the poll timeout.
func (a *ThreadAssistant) waitForRun(ctx context.Context, run models.Run) (models.Run, error) {
	if !run.Status.Pending() {
		return run, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, a.poll.Timeout)
	defer cancel()

	ticker := time.NewTicker(a.poll.Interval)
	defer ticker.Stop()

	for run.Status.Pending() {
		select {
		case <-waitCtx.Done():
			return run, a.abandonRun(ctx, run)
		case <-ticker.C:
		}

		retrieved, err := a.client.RetrieveRun(waitCtx, run.ThreadID, run.ID)
		if err != nil {
			if waitCtx.Err() != nil {
				return run, a.abandonRun(ctx, run)
			}
			return run, fmt.Errorf("failed to retrieve run %s: %w", run.ID, err)
		}
		run = toRun(run.ThreadID, retrieved)
	}
	return run, nil
}

// abandonRun cancels a run whose wait ended early. It reports ErrRunTimeout
// unless the caller's own context was cancelled.
func (a *ThreadAssistant) abandonRun(ctx context.Context, run models.Run) error {
	a.cancelRun(run)
	if ctx.Err() != nil {
		return fmt.Errorf("run %s interrupted: %w", run.ID, ctx.Err())
	}
	a.logger.Warn("Run timed out",
		zap.String("thread_id", run.ThreadID),
		zap.String("run_id", run.ID),
		zap.Duration("timeout", a.poll.Timeout))
	return ErrRunTimeout
}

func (a *ThreadAssistant) cancelRun(run models.Run) {
	ctx, cancel := context.WithTimeout(context.Background(), cancelTimeout)
	defer cancel()

	if _, err := a.client.CancelRun(ctx, run.ThreadID, run.ID); err != nil {
		a.logger.Warn("Failed to cancel run",
			zap.Error(err),
			zap.String("thread_id", run.ThreadID),
			zap.String("run_id", run.ID))
	}
}

func (a *ThreadAssistant) latestReply(ctx context.Context, threadID string) (string, error) {
	limit := 1
	order := "desc"
	messages, err := a.client.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to list messages of thread %s: %w", threadID, err)
	}

	if len(messages.Messages) == 0 {
		a.logger.Error("Thread has no messages", zap.String("thread_id", threadID))
		return "", ErrUnexpectedResponse
	}

	msg := messages.Messages[0]
	if msg.Role != openai.ChatMessageRoleAssistant || len(msg.Content) == 0 ||
		msg.Content[0].Type != "text" || msg.Content[0].Text == nil {
		a.logger.Error("Got non-text or non-assistant response",
			zap.String("thread_id", threadID),
			zap.String("message_id", msg.ID),
			zap.String("role", msg.Role))
		return "", ErrUnexpectedResponse
	}
	return msg.Content[0].Text.Value, nil
}

func toRun(threadID string, r openai.Run) models.Run {
	run := models.Run{
		ID:       r.ID,
		ThreadID: threadID,
		Status:   models.RunStatus(r.Status),
	}
	if r.LastError != nil {
		run.LastError = fmt.Sprintf("%s: %s", r.LastError.Code, r.LastError.Message)
	}
	return run
}
