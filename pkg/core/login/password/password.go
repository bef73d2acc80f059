package password

import (
	"context"
	"errors"
	"time"

	"github.com/scienceol/chemdash/internal/config"
	"github.com/scienceol/chemdash/pkg/common/code"
	"github.com/scienceol/chemdash/pkg/core/login"
	"github.com/scienceol/chemdash/pkg/middleware/logger"
	"github.com/scienceol/chemdash/pkg/repo"
	"github.com/scienceol/chemdash/pkg/utils"
	"golang.org/x/oauth2"
)

type passwordLogin struct {
	store       repo.SessionStore
	oauthConfig *oauth2.Config
	ttl         time.Duration
	now         func() time.Time
}

func New(store repo.SessionStore) login.Service {
	conf := config.Global()
	return NewWithConfig(store, conf.Remote.Addr+conf.Remote.TokenPath, conf.Session.TTL)
}

func NewWithConfig(store repo.SessionStore, tokenURL string, ttl time.Duration) login.Service {
	return &passwordLogin{
		store: store,
		oauthConfig: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		ttl: ttl,
		now: time.Now,
	}
}

func (p *passwordLogin) Login(ctx context.Context, sessionID string, req *login.LoginReq) (*login.Resp, error) {
	token, err := p.oauthConfig.PasswordCredentialsToken(ctx, req.Username, req.Password)
	if err != nil {
		logger.Errorf(ctx, "password login user: %s, err: %v", req.Username, err)
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, code.LoginErr.WithMsgf("http code: %d", re.Response.StatusCode)
		}
		return nil, code.LoginErr.WithErr(err)
	}
	return p.keep(ctx, sessionID, token.AccessToken, token.Expiry)
}

func (p *passwordLogin) Adopt(ctx context.Context, sessionID string, req *login.TokenReq) (*login.Resp, error) {
	var expiry time.Time
	if claims, ok := utils.InspectToken(req.AccessToken); ok && claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}
	return p.keep(ctx, sessionID, req.AccessToken, expiry)
}

func (p *passwordLogin) keep(ctx context.Context, sessionID, token string, expiry time.Time) (*login.Resp, error) {
	if token == "" {
		return nil, code.InvalidToken
	}
	now := p.now()
	ttl := p.ttl
	if !expiry.IsZero() {
		left := expiry.Sub(now)
		if left <= 0 {
			return nil, code.InvalidToken.WithMsg("token already expired")
		}
		if ttl <= 0 || left < ttl {
			ttl = left
		}
	}
	if err := p.store.Set(ctx, sessionID, token, ttl); err != nil {
		return nil, err
	}
	logger.Infof(ctx, "session %s logged in, ttl: %s", sessionID, ttl)
	return &login.Resp{
		SessionID: sessionID,
		TokenType: "Bearer",
		ExpiresIn: int64(ttl.Seconds()),
	}, nil
}

func (p *passwordLogin) Logout(ctx context.Context, sessionID string) error {
	return p.Session(sessionID).Terminate(ctx)
}

func (p *passwordLogin) Session(sessionID string) login.Session {
	return &tokenSession{id: sessionID, store: p.store, now: p.now}
}

type tokenSession struct {
	id    string
	store repo.SessionStore
	now   func() time.Time
}

func (s *tokenSession) ID() string {
	return s.id
}

func (s *tokenSession) Credential(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx, s.id)
	if errors.Is(err, code.SessionNotFound) {
		return "", code.UnLogin
	}
	if err != nil {
		logger.Errorf(ctx, "session %s credential err: %+v", s.id, err)
		return "", code.SessionStoreErr.WithErr(err)
	}
	if utils.TokenExpired(token, s.now()) {
		logger.Infof(ctx, "session %s token expired", s.id)
		_ = s.store.Del(ctx, s.id)
		return "", code.UnLogin
	}
	return token, nil
}

func (s *tokenSession) Terminate(ctx context.Context) error {
	if err := s.store.Del(ctx, s.id); err != nil {
		logger.Errorf(ctx, "terminate session %s err: %+v", s.id, err)
		return err
	}
	return nil
}
