package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/clewlabs/memoria/internal/capture"
	"github.com/clewlabs/memoria/internal/githubctx"
	"github.com/clewlabs/memoria/internal/patterns"
	"github.com/clewlabs/memoria/internal/ratelimit"
	"github.com/clewlabs/memoria/internal/recall"
	"github.com/clewlabs/memoria/internal/storage"
)

const maxBodyBytes = 1 << 20 // 1MB

// Config carries the server's operational settings.
type Config struct {
	Addr           string
	CORSOrigins    []string
	GitHubToken    string
	GitHubUsername string
}

// Server wires the HTTP routes to the domain services.
type Server struct {
	cfg     Config
	store   storage.Store
	engine  *recall.Engine
	capture *capture.Service
	github  *githubctx.Service
	pattern *patterns.Service
	limiter *ratelimit.Limiter
	logger  *slog.Logger
	router  *gin.Engine
}

// NewServer builds the router. Pass nil for logger to use slog.Default.
func NewServer(cfg Config, store storage.Store, engine *recall.Engine, cap *capture.Service, gh *githubctx.Service, pat *patterns.Service, limiter *ratelimit.Limiter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		cfg:     cfg,
		store:   store,
		engine:  engine,
		capture: cap,
		github:  gh,
		pattern: pat,
		limiter: limiter,
		logger:  logger.With("component", "api"),
		router:  router,
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = origins
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "x-user-id")

	router.Use(gin.Recovery())
	router.Use(cors.New(corsCfg))
	router.Use(s.limitBody)
	router.Use(s.logRequest)

	router.GET("/health", s.handleHealth)

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/capture", s.handleCapture)
		apiGroup.GET("/archive", s.handleArchive)
		apiGroup.POST("/recall", s.handleRecall)
		apiGroup.GET("/patterns", s.handlePatterns)
		apiGroup.POST("/context/sync", s.handleContextSync)
		apiGroup.GET("/context", s.handleContext)
	}

	return s
}

// Handler returns the router for mounting on an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server on the configured address and blocks.
func (s *Server) Run() error {
	s.logger.Info("REST API listening", "addr", s.cfg.Addr)
	return s.router.Run(s.cfg.Addr)
}
