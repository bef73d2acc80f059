package login

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"github.com/scienceol/chemdash/internal/config"
	"github.com/scienceol/chemdash/pkg/common"
	"github.com/scienceol/chemdash/pkg/common/code"
	ls "github.com/scienceol/chemdash/pkg/core/login"
	"github.com/scienceol/chemdash/pkg/middleware/auth"
	"github.com/scienceol/chemdash/pkg/middleware/logger"
)

// Closer releases whatever else is held for a session once it logs out.
type Closer func(ctx context.Context, sessionID string)

type Login struct {
	lService ls.Service
	onLogout Closer
}

func NewLogin(lService ls.Service, onLogout Closer) *Login {
	if onLogout == nil {
		onLogout = func(context.Context, string) {}
	}
	return &Login{
		lService: lService,
		onLogout: onLogout,
	}
}

func (l *Login) Login(ctx *gin.Context) {
	req := &ls.LoginReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "Invalid login request: %v", err)
		common.ReplyErr(ctx, code.LoginFormatErr, err.Error())
		return
	}
	sessionID := uuid.Must(uuid.NewV4()).String()
	resp, err := l.lService.Login(ctx.Request.Context(), sessionID, req)
	if err != nil {
		common.ReplyErr(ctx, err)
		return
	}
	l.setCookie(ctx, resp)
	common.ReplyOk(ctx, resp)
}

// Token adopts an access token obtained outside this server.
func (l *Login) Token(ctx *gin.Context) {
	req := &ls.TokenReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "Invalid token request: %v", err)
		common.ReplyErr(ctx, code.LoginFormatErr, err.Error())
		return
	}
	sessionID := uuid.Must(uuid.NewV4()).String()
	resp, err := l.lService.Adopt(ctx.Request.Context(), sessionID, req)
	if err != nil {
		common.ReplyErr(ctx, err)
		return
	}
	l.setCookie(ctx, resp)
	common.ReplyOk(ctx, resp)
}

func (l *Login) Logout(ctx *gin.Context) {
	sessionID := auth.GetSessionID(ctx)
	reqCtx := ctx.Request.Context()
	l.onLogout(reqCtx, sessionID)
	if err := l.lService.Logout(reqCtx, sessionID); err != nil {
		common.ReplyErr(ctx, err)
		return
	}
	isSecure := ctx.Request.TLS != nil || ctx.GetHeader("X-Forwarded-Proto") == "https"
	ctx.SetCookie(config.Global().Session.CookieName, "", -1, "/", "", isSecure, true)
	common.ReplyOk(ctx)
}

func (l *Login) setCookie(ctx *gin.Context, resp *ls.Resp) {
	isSecure := ctx.Request.TLS != nil || ctx.GetHeader("X-Forwarded-Proto") == "https"
	ctx.SetCookie(config.Global().Session.CookieName, resp.SessionID, int(resp.ExpiresIn), "/", "", isSecure, true)
}
