package notify

import (
	"context"

	"github.com/gofrs/uuid/v5"
)

type Action string

const (
	NotificationShown   Action = "notification-shown"
	NotificationCleared Action = "notification-cleared"
	SessionTerminated   Action = "session-terminated"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
)

// Notification is the single user-visible message of a dashboard. ID grows
// with every show, so consumers can drop events about an older message.
type Notification struct {
	ID       uint64   `json:"id"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

type SendMsg struct {
	Channel   Action    `json:"action"`
	SessionID string    `json:"session_id"`
	Data      any       `json:"data"`
	UUID      uuid.UUID `json:"uuid"`
	Timestamp int64     `json:"timestamp"`
}

type HandleFunc func(ctx context.Context, msg *SendMsg) error

type MsgCenter interface {
	Registry(ctx context.Context, msgName Action, handleFunc HandleFunc) error
	Broadcast(ctx context.Context, msg *SendMsg) error
	Close(ctx context.Context) error
}
