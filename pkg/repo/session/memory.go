package session

import (
	"context"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/scienceol/chemdash/pkg/common/code"
	"github.com/scienceol/chemdash/pkg/repo"
)

type entry struct {
	token    string
	expireAt time.Time
}

type memoryStore struct {
	tokens *haxmap.Map[string, entry]
	now    func() time.Time
}

func NewMemoryStore() repo.SessionStore {
	return &memoryStore{
		tokens: haxmap.New[string, entry](),
		now:    time.Now,
	}
}

func (m *memoryStore) Get(_ context.Context, sessionID string) (string, error) {
	e, ok := m.tokens.Get(sessionID)
	if !ok {
		return "", code.SessionNotFound
	}
	if !e.expireAt.IsZero() && !m.now().Before(e.expireAt) {
		m.tokens.Del(sessionID)
		return "", code.SessionNotFound
	}
	return e.token, nil
}

func (m *memoryStore) Set(_ context.Context, sessionID, token string, ttl time.Duration) error {
	e := entry{token: token}
	if ttl > 0 {
		e.expireAt = m.now().Add(ttl)
	}
	m.tokens.Set(sessionID, e)
	return nil
}

func (m *memoryStore) Del(_ context.Context, sessionID string) error {
	m.tokens.Del(sessionID)
	return nil
}
