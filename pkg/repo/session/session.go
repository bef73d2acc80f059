package session

import (
	"github.com/scienceol/chemdash/internal/config"
	"github.com/scienceol/chemdash/pkg/middleware/redis"
	"github.com/scienceol/chemdash/pkg/repo"
)

// New picks the redis store when redis is enabled and initialised, the
// in-process store otherwise.
func New() repo.SessionStore {
	if config.Global().Redis.Enable {
		if client := redis.GetClient(); client != nil {
			return NewRedisStore(client)
		}
	}
	return NewMemoryStore()
}
