package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemdash/internal/config"
	"github.com/scienceol/chemdash/pkg/middleware/redis"
)

// Health is a simple health check (backward compatible).
func Health(g *gin.Context) {
	g.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Live is a lightweight liveness probe, the process is alive.
func Live(g *gin.Context) {
	g.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready verifies the session backend. The compound service is not probed; it
// is a remote dependency whose failures surface per action.
func Ready(g *gin.Context) {
	checks := gin.H{}
	healthy := true

	if config.Global().Redis.Enable {
		if rc := redis.GetClient(); rc != nil {
			if err := rc.Ping(g.Request.Context()).Err(); err != nil {
				checks["redis"] = "unhealthy"
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		} else {
			checks["redis"] = "not_initialized"
			healthy = false
		}
	} else {
		checks["session"] = "memory"
	}

	status := http.StatusOK
	msg := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		msg = "not_ready"
	}

	g.JSON(status, gin.H{
		"status": msg,
		"checks": checks,
	})
}
