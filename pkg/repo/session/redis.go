package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	r "github.com/redis/go-redis/v9"
	"github.com/scienceol/chemdash/pkg/common/code"
	"github.com/scienceol/chemdash/pkg/middleware/logger"
	"github.com/scienceol/chemdash/pkg/repo"
)

type redisStore struct {
	*r.Client
}

func NewRedisStore(client *r.Client) repo.SessionStore {
	return &redisStore{Client: client}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("chemdash:session:%s:%s", sessionID, repo.TokenKey)
}

func (s *redisStore) Get(ctx context.Context, sessionID string) (string, error) {
	token, err := s.Client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return "", code.SessionNotFound
		}
		logger.Errorf(ctx, "session get fail id: %s, err: %+v", sessionID, err)
		return "", code.SessionStoreErr.WithErr(err)
	}
	return token, nil
}

func (s *redisStore) Set(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	if err := s.Client.Set(ctx, sessionKey(sessionID), token, ttl).Err(); err != nil {
		logger.Errorf(ctx, "session set fail id: %s, err: %+v", sessionID, err)
		return code.LoginErr.WithErr(err)
	}
	return nil
}

func (s *redisStore) Del(ctx context.Context, sessionID string) error {
	if err := s.Client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		logger.Errorf(ctx, "session del fail id: %s, err: %+v", sessionID, err)
		return err
	}
	return nil
}
