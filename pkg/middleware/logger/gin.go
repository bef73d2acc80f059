package logger

import (
	"time"

	"github.com/gin-gonic/gin"
)

// LogWithWriter logs one line per request after the handler chain returns.
func LogWithWriter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path
		ctx.Next()

		status := ctx.Writer.Status()
		cost := time.Since(start)
		switch {
		case status >= 500:
			Errorf(ctx, "%s %s %d %s", ctx.Request.Method, path, status, cost)
		case status >= 400:
			Warnf(ctx, "%s %s %d %s", ctx.Request.Method, path, status, cost)
		default:
			Infof(ctx, "%s %s %d %s", ctx.Request.Method, path, status, cost)
		}
	}
}
