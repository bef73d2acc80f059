package web

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemdash/internal/config"
	"github.com/scienceol/chemdash/pkg/core/login"
	"github.com/scienceol/chemdash/pkg/core/login/password"
	"github.com/scienceol/chemdash/pkg/core/notify"
	"github.com/scienceol/chemdash/pkg/core/notify/events"
	"github.com/scienceol/chemdash/pkg/core/render"
	"github.com/scienceol/chemdash/pkg/core/render/smiles"
	"github.com/scienceol/chemdash/pkg/middleware/auth"
	"github.com/scienceol/chemdash/pkg/middleware/logger"
	"github.com/scienceol/chemdash/pkg/repo"
	"github.com/scienceol/chemdash/pkg/repo/compound"
	"github.com/scienceol/chemdash/pkg/repo/pubchem"
	"github.com/scienceol/chemdash/pkg/repo/session"
	dashboardView "github.com/scienceol/chemdash/pkg/web/views/dashboard"
	"github.com/scienceol/chemdash/pkg/web/views/health"
	loginView "github.com/scienceol/chemdash/pkg/web/views/login"
	"github.com/scienceol/chemdash/pkg/web/views/ws"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type services struct {
	login     login.Service
	compounds repo.CompoundRepo
	names     repo.NameRepo
	renderer  render.Renderer
	center    notify.MsgCenter
}

func defaultServices() *services {
	return &services{
		login:     password.New(session.New()),
		compounds: compound.New(),
		names:     pubchem.NewPubChemRepo(),
		renderer:  smiles.New(),
		center:    events.NewEvents(config.Global().Notify.PoolSize),
	}
}

// NewRouter installs every route on g. Dashboards, websockets and the event
// center are torn down when ctx is done.
func NewRouter(ctx context.Context, g *gin.Engine) error {
	return installRouter(ctx, g, defaultServices())
}

func installRouter(ctx context.Context, g *gin.Engine, s *services) error {
	installMiddleware(g)
	return installURL(ctx, g, s)
}

func installMiddleware(g *gin.Engine) {
	g.ContextWithFallback = true
	server := config.Global().Server
	g.Use(cors.Default())
	g.Use(otelgin.Middleware(fmt.Sprintf("%s-%s", server.Platform, server.Service)))
	g.Use(logger.LogWithWriter())
}

func installURL(ctx context.Context, g *gin.Engine, s *services) error {
	api := g.Group("/api")
	api.GET("/health", health.Health)
	api.GET("/health/live", health.Live)
	api.GET("/health/ready", health.Ready)

	dHandle := dashboardView.NewDashboardHandle(dashboardView.Options{
		Login:          s.login,
		Compounds:      s.compounds,
		Names:          s.names,
		Renderer:       s.renderer,
		Center:         s.center,
		NotifyDuration: config.Global().Notify.Duration,
	})
	wsHandle, err := ws.NewWSHandle(ctx, s.center)
	if err != nil {
		return err
	}

	context.AfterFunc(ctx, func() {
		closeCtx := context.WithoutCancel(ctx)
		dHandle.Close(closeCtx)
		if err := wsHandle.Close(); err != nil {
			logger.Warnf(closeCtx, "close websocket err: %+v", err)
		}
		if err := s.center.Close(closeCtx); err != nil {
			logger.Warnf(closeCtx, "close event center err: %+v", err)
		}
	})

	// Auth routes
	{
		l := loginView.NewLogin(s.login, dHandle.Logout)
		authGroup := api.Group("/auth")
		authGroup.POST("/login", l.Login)
		authGroup.POST("/token", l.Token)
		authGroup.POST("/logout", auth.AuthSession(), l.Logout)
	}

	// Protected routes
	{
		v1 := api.Group("/v1")

		wsRouter := v1.Group("/ws", auth.AuthSession())
		{
			wsRouter.GET("/dashboard", wsHandle.Dashboard)
		}

		dashRouter := v1.Group("/dashboard", auth.AuthSession())
		{
			dashRouter.GET("", dHandle.Dashboard)
			dashRouter.PUT("/query", dHandle.SetQuery)
			dashRouter.POST("/search", dHandle.Search)
			dashRouter.POST("/save", dHandle.Save)
			dashRouter.DELETE("/compounds/:id", dHandle.Delete)
			dashRouter.POST("/compounds/:id/share", dHandle.ShareIntent)
			dashRouter.PUT("/share/user", dHandle.SelectUser)
			dashRouter.POST("/share/confirm", dHandle.ShareConfirm)
			dashRouter.DELETE("/share", dHandle.ShareCancel)
			dashRouter.DELETE("/notification", dHandle.Dismiss)
		}
	}
	return nil
}
