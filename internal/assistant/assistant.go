// Package assistant forwards free-text messages to the OpenAI backend,
// either through per-user Assistants API threads or as single-turn chat
// completions.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/xaenox/assistant-bot/internal/catalog"
	"github.com/xaenox/assistant-bot/internal/models"
)

type Mode string

const (
	ModeDisabled  Mode = "disabled"
	ModeStateless Mode = "stateless"
	ModeStateful  Mode = "stateful"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDisabled, ModeStateless, ModeStateful:
		return m, nil
	default:
		return "", fmt.Errorf("unknown assistant mode %q", s)
	}
}

// Assistant answers one user message.
type Assistant interface {
	Mode() Mode
	Handle(ctx context.Context, userID int64, text string) (string, error)
}

var (
	ErrUnexpectedResponse = errors.New("unexpected assistant response")
	ErrRunTimeout         = errors.New("run timed out")
)

// RunStatusError reports a run that ended in a status other than completed.
type RunStatusError struct {
	RunID  string
	Status models.RunStatus
	Detail string
}

func (e *RunStatusError) Error() string {
	return fmt.Sprintf("run %s finished with status %s", e.RunID, e.Status)
}

// ReplyForError picks the apology sent to the user for err. Backend error
// detail never reaches the user.
func ReplyForError(c *catalog.Catalog, err error) string {
	var statusErr *RunStatusError
	switch {
	case errors.As(err, &statusErr):
		return c.RunStatusReply(string(statusErr.Status))
	case errors.Is(err, ErrRunTimeout):
		return c.RunStatusReply("timeout")
	case errors.Is(err, ErrUnexpectedResponse):
		return c.Text(catalog.MsgUnexpectedResponse)
	default:
		return c.Text(catalog.MsgTryLater)
	}
}

// Outcome labels err for metrics.
func Outcome(err error) string {
	var statusErr *RunStatusError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &statusErr):
		return string(statusErr.Status)
	case errors.Is(err, ErrRunTimeout):
		return "timeout"
	case errors.Is(err, ErrUnexpectedResponse):
		return "unexpected"
	default:
		return "error"
	}
}

func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}
