package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/bassista/go_flix/internal/api/middleware"
	route "github.com/bassista/go_flix/internal/api/route"
	appctx "github.com/bassista/go_flix/internal/app"
	"github.com/bassista/go_flix/internal/config"
	"github.com/bassista/go_flix/internal/logger"
	"github.com/enrichman/httpgrace"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	app, err := loadApp(opts)
	if err != nil {
		return err
	}
	defer app.Shutdown()

	if err := app.StartWatchers(); err != nil {
		return err
	}

	gin.SetMode(app.Config.Misc.GinMode)
	gin.DefaultWriter = logger.Logger.Writer()
	gin.DefaultErrorWriter = logger.Logger.Writer()

	logger.WithComponent("main").Infof("API will run on port: %d", app.Config.Server.Port)
	srv := createGraceHttpServer(app.BaseCtx, "api", app.Config.Server, newRouter(app))
	if err := srv.ListenAndServe(fmt.Sprintf(":%d", app.Config.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newRouter wires the middleware chain and every route. Honeybadger sits outside
// gin.Recovery so it sees panics before they are turned into a 500.
func newRouter(app *appctx.App) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(logger.WithComponent("http")))
	r.Use(middleware.HoneybadgerMiddleware(logger.WithComponent("honeybadger"), app.Config.Misc.HoneybadgerAPIKey, app.Config.Misc.HoneybadgerEnv))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(app.Config.Server.CORSAllowedOrigins))
	r.Use(middleware.RequestTimeout(app.Config.Server.RequestTimeout))

	route.SetupRoutes(r, app)
	return r
}

func createGraceHttpServer(ctx context.Context, name string, serverConfig config.ServerConfig, r *gin.Engine) *httpgrace.Server {
	slogLogger := slog.New(slog.NewTextHandler(logger.Logger.Writer(), nil))

	return httpgrace.NewServer(r,
		httpgrace.WithTimeout(serverConfig.ShutDownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(slogLogger),
		httpgrace.WithBeforeShutdown(func() {
			logger.WithComponent("http").Infof("Shutting down %s server....", name)
		}),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(serverConfig.ReadTimeout),
			httpgrace.WithWriteTimeout(serverConfig.WriteTimeout),
			httpgrace.WithIdleTimeout(serverConfig.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return ctx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = log.New(logger.Logger.Writer(), fmt.Sprintf("[%s] ", name), log.LstdFlags)
			},
		),
	)
}
