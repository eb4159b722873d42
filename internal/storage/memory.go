package storage

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/xaenox/assistant-bot/internal/models"
	"golang.org/x/sync/singleflight"
)

var _ Storage = (*MemoryStorage)(nil)

// MemoryStorage keeps sessions in process memory. A user's thread id is
// assigned at most once; it is never replaced for the life of the store.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[int64]*models.Session
	creating singleflight.Group
	now      func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[int64]*models.Session),
		now:      time.Now,
	}
}

func (s *MemoryStorage) GetSession(ctx context.Context, userID int64) (*models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[userID]
	if !exists {
		return nil, false
	}
	copied := *session
	return &copied, true
}

func (s *MemoryStorage) GetThread(ctx context.Context, userID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if session, exists := s.sessions[userID]; exists {
		return session.ThreadID, true
	}
	return "", false
}

// SaveThread assigns threadID to the user. The first write wins; later
// writes fail with ErrThreadExists unless they carry the same id.
func (s *MemoryStorage) SaveThread(ctx context.Context, userID int64, threadID string) error {
	if threadID == "" {
		return fmt.Errorf("empty thread id for user %d", userID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if session, exists := s.sessions[userID]; exists {
		if session.ThreadID == threadID {
			return nil
		}
		return ErrThreadExists
	}

	now := s.now()
	s.sessions[userID] = &models.Session{
		UserID:     userID,
		ThreadID:   threadID,
		CreatedAt:  now,
		LastUsedAt: now,
	}
	return nil
}

// GetOrCreateThread returns the user's thread id, calling create when the
// user has none yet. Concurrent callers for the same user share one call to
// create. A failed create leaves the user without a thread.
func (s *MemoryStorage) GetOrCreateThread(ctx context.Context, userID int64, create CreateThreadFunc) (string, error) {
	if threadID, ok := s.GetThread(ctx, userID); ok {
		return threadID, nil
	}

	v, err, _ := s.creating.Do(strconv.FormatInt(userID, 10), func() (any, error) {
		if threadID, ok := s.GetThread(ctx, userID); ok {
			return threadID, nil
		}

		threadID, err := create(ctx)
		if err != nil {
			return "", err
		}

		if err := s.SaveThread(ctx, userID, threadID); err != nil {
			return "", err
		}
		return threadID, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	return v.(string), nil
}

func (s *MemoryStorage) UpdateThreadLastUsed(ctx context.Context, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, exists := s.sessions[userID]; exists {
		session.LastUsedAt = s.now()
	}
}

// Len returns the number of users holding a session.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
