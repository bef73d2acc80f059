package login

import "context"

type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenReq struct {
	AccessToken string `json:"access_token" binding:"required"`
}

type Resp struct {
	SessionID string `json:"session_id"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in,omitempty"`
}

// Service owns the bearer credential of every browser session.
type Service interface {
	// Login exchanges username and password for a token at the compound service.
	Login(ctx context.Context, sessionID string, req *LoginReq) (*Resp, error)
	// Adopt stores a token obtained elsewhere.
	Adopt(ctx context.Context, sessionID string, req *TokenReq) (*Resp, error)
	// Logout forgets the token locally; the compound service is not called.
	Logout(ctx context.Context, sessionID string) error
	Session(sessionID string) Session
}

// Session is the authentication context handed to one dashboard. The
// credential is read at the start of every action and never cached.
type Session interface {
	ID() string
	// Credential returns code.UnLogin when no usable token is held and
	// code.SessionStoreErr when the store could not be read.
	Credential(ctx context.Context) (string, error)
	// Terminate drops the token, after a 401 or on logout.
	Terminate(ctx context.Context) error
}
