package storage

import (
	"context"
	"errors"

	"github.com/xaenox/assistant-bot/internal/models"
)

var ErrThreadExists = errors.New("thread already assigned")

// CreateThreadFunc asks the AI backend for a new remote thread id.
type CreateThreadFunc func(ctx context.Context) (string, error)

type Storage interface {
	GetSession(ctx context.Context, userID int64) (*models.Session, bool)
	Close() error

	// Embed ThreadStorage interface
	ThreadStorage
}

type ThreadStorage interface {
	GetThread(ctx context.Context, userID int64) (string, bool)
	SaveThread(ctx context.Context, userID int64, threadID string) error
	GetOrCreateThread(ctx context.Context, userID int64, create CreateThreadFunc) (string, error)
	UpdateThreadLastUsed(ctx context.Context, userID int64)
}
