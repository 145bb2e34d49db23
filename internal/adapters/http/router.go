package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quoteswipe/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quoteswipe/internal/app/session"
	"github.com/jsamuelsen/quoteswipe/internal/platform/config"
	"github.com/jsamuelsen/quoteswipe/internal/platform/telemetry"
)

// RouterConfig holds what SetupRouter mounts.
type RouterConfig struct {
	Logger *slog.Logger

	// ServiceName names the request spans. Empty disables the otel
	// middleware.
	ServiceName string

	CORS    config.CORSConfig
	Timeout time.Duration

	Sessions *session.Manager

	Health  *handlers.HealthHandler
	Feed    *handlers.FeedHandler
	Auth    *handlers.AuthHandler
	Content *handlers.ContentHandler
	Pages   *handlers.PageHandler
}

// SetupRouter installs the middleware chain and every route.
//
// Global middleware, outermost first: recovery, the context logger,
// request and correlation ids, otel, the access log and CORS. The /-
// routes stop there. Everything else also gets the request deadline and
// the viewer session.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)

	if cfg.ServiceName != "" {
		engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	}

	engine.Use(middleware.AccessLog(), cors.New(corsConfig(cfg.CORS)))

	if cfg.Health != nil {
		cfg.Health.Register(engine.Group("/-"))
	}

	if cfg.Sessions == nil {
		return
	}

	viewer := []gin.HandlerFunc{middleware.Timeout(cfg.Timeout), middleware.Sessions(cfg.Sessions)}

	api := engine.Group("/api/v1", viewer...)

	if cfg.Feed != nil {
		cfg.Feed.Register(api)
	}

	if cfg.Auth != nil {
		cfg.Auth.Register(api)
	}

	if cfg.Content != nil {
		cfg.Content.Register(api)
	}

	if cfg.Pages != nil {
		cfg.Pages.Register(engine.Group("", viewer...))
	}
}

func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowOrigins:     c.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language", middleware.HeaderSessionID, middleware.HeaderRequestID, middleware.HeaderCorrelationID},
		ExposeHeaders:    []string{middleware.HeaderSessionID, middleware.HeaderRequestID, telemetry.HeaderTraceID},
		AllowCredentials: c.AllowCredentials,
		MaxAge:           c.MaxAge,
	}

	if len(cc.AllowOrigins) == 0 {
		cc.AllowAllOrigins = true
		cc.AllowCredentials = false
	}

	return cc
}
