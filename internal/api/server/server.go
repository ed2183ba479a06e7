package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	apierrors "voice-interview/internal/api/errors"
	"voice-interview/internal/api/middleware"
	"voice-interview/internal/api/routes"
	"voice-interview/internal/api/services"
	"voice-interview/internal/app/api/provider"
	"voice-interview/internal/app/metrics"
	"voice-interview/internal/app/questions"
	"voice-interview/internal/config"
)

// Server represents the interview HTTP server: the JSON API under /api,
// Prometheus metrics and the static public directory.
type Server struct {
	config     config.ServerConfig
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
}

// Dependencies are the services the server exposes
type Dependencies struct {
	Questions     services.QuestionService
	Transcription services.TranscriptionService
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
}

// New wires the production dependencies from cfg: a fresh metrics
// registry, the tiered question resolver and the environment-keyed
// transcription provider.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry)

	factory := provider.NewEnvFactory(cfg.Transcription.Provider, provider.Settings{
		Model:    cfg.Transcription.Model,
		Language: cfg.Transcription.Language,
		BaseURL:  cfg.Transcription.BaseURL,
	}, config.RequireAPIKey)

	return NewServer(cfg.Server, Dependencies{
		Questions: questions.NewResolver(cfg.Server.PublicDir, logger, m),
		Transcription: services.NewTranscriptionProxy(factory, services.ProxyConfig{
			TempDir:  cfg.Server.TempDir,
			Language: cfg.Transcription.Language,
			Model:    cfg.Transcription.Model,
		}, logger, m),
		Metrics:  m,
		Gatherer: registry,
	}, logger)
}

// NewServer creates a new server over explicit dependencies
func NewServer(cfg config.ServerConfig, deps Dependencies, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger, "/api/health", "/metrics"))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Metrics(deps.Metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	routes.RegisterRoutes(router.Group("/api"), &routes.ServiceContainer{
		QuestionService:      deps.Questions,
		TranscriptionService: deps.Transcription,
		MaxUploadBytes:       cfg.MaxUploadBytes,
	})

	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	router.NoRoute(staticFiles(cfg.PublicDir))

	return &Server{
		config: cfg,
		router: router,
		httpServer: &http.Server{
			Addr:         cfg.Address(),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// staticFiles serves publicDir for GET and HEAD requests outside /api.
func staticFiles(publicDir string) gin.HandlerFunc {
	fileServer := http.FileServer(gin.Dir(publicDir, false))

	return func(c *gin.Context) {
		method := c.Request.Method
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || (method != http.MethodGet && method != http.MethodHead) {
			middleware.HandleError(c, apierrors.NewNotFoundError("Not found"))
			return
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}

// Start starts listening in the background. The returned channel yields
// the error that stopped the listener, if any, and is then closed.
func (s *Server) Start() <-chan error {
	s.logger.Info("Starting interview server",
		"address", s.httpServer.Addr,
		"environment", s.config.Environment,
		"public_dir", s.config.PublicDir,
	)

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server stopped", "error", err)
			errCh <- err
		}
	}()
	return errCh
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down interview server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	s.logger.Info("Interview server shutdown complete")
	return nil
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
