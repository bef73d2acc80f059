package auth

import (
	"context"

	"github.com/gin-gonic/gin"
)

var (
	SESSIONKEY   = "AUTH_SESSION_KEY"
	SessionQuery = "session_id"
	// SessionHeader lets non-browser clients pass the session id without a cookie.
	SessionHeader = "X-Session-ID"
)

func GetSessionID(ctx context.Context) string {
	gCtx, ok := ctx.(*gin.Context)
	if !ok {
		return ""
	}
	return gCtx.GetString(SESSIONKEY)
}
