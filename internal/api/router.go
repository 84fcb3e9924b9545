package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kgcrom/cluefin-sub000/internal/api/handlers"
	charthandler "github.com/kgcrom/cluefin-sub000/internal/api/handlers/chart"
	"github.com/kgcrom/cluefin-sub000/internal/api/middleware"
	"github.com/kgcrom/cluefin-sub000/internal/api/routes"
	"github.com/kgcrom/cluefin-sub000/internal/pkg/config"
	"github.com/kgcrom/cluefin-sub000/internal/pkg/logger"
)

// Handlers are built by the caller so the router stays free of wiring.
type Handlers struct {
	Health *handlers.HealthHandler
	Chart  *charthandler.Handler
}

// Router holds all dependencies for API routing
type Router struct {
	engine   *gin.Engine
	config   *config.Config
	handlers Handlers
}

// NewRouter creates a new API router with all dependencies
func NewRouter(cfg *config.Config, h Handlers) *Router {
	gin.SetMode(cfg.Server.Mode)

	r := &Router{
		engine:   gin.New(),
		config:   cfg,
		handlers: h,
	}
	r.setupMiddlewares()
	r.setupRoutes()
	return r
}

func (r *Router) setupMiddlewares() {
	// Recovery first so it also covers the other middlewares.
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	logCfg := middleware.LoggingConfig{SkipPaths: []string{"/health", "/health/ready"}}
	if r.config.Logging.FileEnabled {
		accessLogger := logger.NewAccessLogger(
			r.config.Logging.FilePath,
			r.config.Logging.RotationSize,
			r.config.Logging.RetentionDays,
		)
		logCfg.AccessLogger = &accessLogger
	}
	r.engine.Use(middleware.Logging(logCfg))

	if r.config.Server.Mode == gin.DebugMode {
		r.engine.Use(middleware.CORS(middleware.DevelopmentCORSConfig()))
	} else {
		r.engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}
}

func (r *Router) setupRoutes() {
	// Health checks (no /api prefix)
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/health/ready", r.handlers.Health.Ready)

	v1 := r.engine.Group("/api/v1")
	v1.GET("/health/detailed", r.handlers.Health.Detailed)
	routes.RegisterChartRoutes(v1, r.handlers.Chart)
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Server returns an http.Server for addr using the configured timeouts.
func (r *Router) Server(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      r.engine,
		ReadTimeout:  r.config.Server.ReadTimeout,
		WriteTimeout: r.config.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
}
