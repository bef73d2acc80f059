package repo

import (
	"context"
	"time"
)

// TokenKey is the key the bearer token is stored under inside a session.
const TokenKey = "access_token"

// SessionStore keeps the bearer token of each browser session. Get returns
// code.SessionNotFound when nothing is stored.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Set(ctx context.Context, sessionID, token string, ttl time.Duration) error
	Del(ctx context.Context, sessionID string) error
}
