package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemdash/internal/config"
	"github.com/scienceol/chemdash/pkg/common"
	"github.com/scienceol/chemdash/pkg/common/code"
	"github.com/scienceol/chemdash/pkg/utils"
)

// AuthSession only requires a session id to be presented. Whether the session
// still holds a usable token is decided by the dashboard at the start of every
// action.
func AuthSession() func(ctx *gin.Context) {
	cookieName := config.Global().Session.CookieName
	return func(ctx *gin.Context) {
		cookie, _ := ctx.Cookie(cookieName)
		sessionID := utils.Or(cookie, ctx.Query(SessionQuery), ctx.GetHeader(SessionHeader))
		if sessionID == "" {
			ctx.JSON(http.StatusUnauthorized, &common.Resp{
				Code:  code.UnLogin,
				Error: &common.Error{Msg: code.UnLogin.String()},
			})
			ctx.Abort()
			return
		}
		ctx.Set(SESSIONKEY, sessionID)
		ctx.Next()
	}
}
