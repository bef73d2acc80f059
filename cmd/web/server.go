package web

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemdash/internal/config"
	"github.com/scienceol/chemdash/pkg/middleware/logger"
	"github.com/scienceol/chemdash/pkg/middleware/redis"
	"github.com/scienceol/chemdash/pkg/utils"
	"github.com/scienceol/chemdash/pkg/web"
	"github.com/spf13/cobra"
)

func NewWeb() *cobra.Command {
	return &cobra.Command{
		Use:          "dashboard",
		Long:         "Start the compound dashboard server",
		SilenceUsage: true,
		PreRunE:      initWeb,
		RunE:         newRouter,
		PostRunE:     cleanWebResource,
	}
}

func initWeb(cmd *cobra.Command, _ []string) error {
	conf := config.Global()
	if conf.Redis.Enable {
		redis.InitRedis(cmd.Context(), &redis.Redis{
			Host: conf.Redis.Host, Port: conf.Redis.Port,
			Password: conf.Redis.Password, DB: conf.Redis.DB,
		})
	}
	return nil
}

func newRouter(cmd *cobra.Command, _ []string) error {
	router := gin.New()
	router.Use(gin.Recovery())
	if err := web.NewRouter(cmd.Root().Context(), router); err != nil {
		return err
	}
	conf := config.Global()
	port := conf.Server.Port
	addr := ":" + strconv.Itoa(port)

	httpServer := http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       30 * time.Second,
		TLSNextProto:      make(map[string]func(*http.Server, *tls.Conn, http.Handler)),
	}

	fmt.Printf("Dashboard server starting on http://0.0.0.0:%d, compound service: %s\n", port, conf.Remote.Addr)

	utils.SafelyGo(func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf(cmd.Context(), "start server err: %v\n", err)
		}
	}, func(err error) {
		logger.Errorf(cmd.Context(), "run http server err: %+v", err)
		os.Exit(1)
	})

	fmt.Printf("Server started. Press Ctrl+C to shutdown.\n")
	<-cmd.Context().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("shut down server err: %+v", err)
	}
	return nil
}

func cleanWebResource(cmd *cobra.Command, _ []string) error {
	redis.CloseRedis(cmd.Context())
	return nil
}
