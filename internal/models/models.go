package models

import "time"

// InboundMessage is a text message delivered by the transport
type InboundMessage struct {
	UserID     int64     `json:"user_id"`
	ChatID     int64     `json:"chat_id"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// OutboundReply is a plain-text reply with an optional reply keyboard.
// Keyboard holds button labels in display order, one button per row.
type OutboundReply struct {
	ChatID   int64    `json:"chat_id"`
	Text     string   `json:"text"`
	Keyboard []string `json:"keyboard,omitempty"`
}

// User represents a bot user as seen by the transport
type User struct {
	ID int64 `json:"id"`
}

// Session holds the per-user AI conversation state
type Session struct {
	UserID     int64     `json:"user_id"`
	ThreadID   string    `json:"thread_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusExpired        RunStatus = "expired"
	RunStatusIncomplete     RunStatus = "incomplete"
)

// Pending reports whether the run still has to be polled.
func (s RunStatus) Pending() bool {
	return s == RunStatusQueued || s == RunStatusInProgress
}

// Run is one AI completion attempt against a thread. It is never stored.
type Run struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	Status    RunStatus `json:"status"`
	LastError string    `json:"last_error,omitempty"`
}
