package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httpapi "github.com/GriffinCanCode/catalogd/internal/api/http"
	mcpapi "github.com/GriffinCanCode/catalogd/internal/api/mcp"
	"github.com/GriffinCanCode/catalogd/internal/api/middleware"
	"github.com/GriffinCanCode/catalogd/internal/domain/catalogue"
	"github.com/GriffinCanCode/catalogd/internal/domain/cost"
	"github.com/GriffinCanCode/catalogd/internal/domain/dependency"
	"github.com/GriffinCanCode/catalogd/internal/domain/dispatch"
	"github.com/GriffinCanCode/catalogd/internal/domain/quota"
	"github.com/GriffinCanCode/catalogd/internal/domain/search"
	"github.com/GriffinCanCode/catalogd/internal/domain/service"
	"github.com/GriffinCanCode/catalogd/internal/domain/validate"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/cache"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/config"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/logging"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/ratelimit"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/transport"
)

// Mode selects the ingress surface
type Mode int

const (
	ModeHTTP Mode = iota
	ModeStdio
)

// Server wraps the ingress surfaces and their dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	engine   *service.Engine
	mcp      *mcpapi.Server
	client   *transport.Client
	registry *prometheus.Registry
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer loads the catalogue and assembles the engine. Invalid settings
// are replaced by their defaults and logged.
func NewServer(ctx context.Context, cfg *config.Config, mode Mode) (*Server, error) {
	corrections := cfg.Sanitize()

	logCfg := logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development.Value}
	if mode == ModeStdio {
		logCfg = logging.StdioConfig(cfg.Logging.Level, cfg.Logging.Development.Value)
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	for _, c := range corrections {
		logger.Warn("Invalid configuration value replaced",
			zap.String("field", c.Field),
			zap.String("value", c.Value),
			zap.String("default", c.Default))
	}

	logger.Info("Initializing catalogd",
		zap.String("catalogue", cfg.Catalogue.Path),
		zap.Bool("remote", cfg.HasCredentials()),
		zap.Bool("quota_check", cfg.Quota.CheckEnabled.Value),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	cat, err := loadCatalogue(ctx, cfg.Catalogue)
	if err != nil {
		return nil, err
	}
	logger.Info("Catalogue loaded",
		zap.Int("entries", cat.Len()),
		zap.Strings("domains", cat.Domains()),
		zap.Int("dependencies", len(cat.Dependencies())))

	searchSvc := search.NewService(cat, SearchConfig(cfg.Search), logger)
	metrics.RecordIndexBuild(searchSvc.Index().Len())
	deps := dependency.NewService(cat, logger)
	limits := validate.Limits{MaxBytes: cfg.Dispatch.MaxBodyBytes.Value, MaxDepth: cfg.Dispatch.MaxBodyDepth.Value}
	responses := cache.New(CacheConfig(cfg.Cache))
	limiter := ratelimit.New(RateLimitConfig(cfg.RateLimit))

	opts := []dispatch.Option{
		dispatch.WithMetrics(metrics),
		dispatch.WithLogger(logger),
	}

	var client *transport.Client
	if cfg.HasCredentials() {
		client, err = transport.New(
			transport.Credentials{APIURL: cfg.API.URL, APIToken: cfg.API.Token},
			TransportConfig(cfg.API, metrics, logger),
		)
		if err != nil {
			logger.Warn("API credentials unusable; falling back to documentation mode", zap.Error(err))
			client = nil
		} else {
			opts = append(opts, dispatch.WithRemote(client))
			if cfg.Quota.CheckEnabled.Value {
				opts = append(opts, dispatch.WithQuota(quota.NewRemoteChecker(client)))
			}
			logger.Info("Execution mode", zap.String("api", client.BaseURL()))
		}
	} else {
		logger.Info("Documentation mode: API_URL and API_TOKEN not set")
	}

	dispatcher := dispatch.New(cat, limiter, responses, dispatch.Config{
		QuotaCheck: cfg.Quota.CheckEnabled.Value,
		BodyLimits: limits,
	}, opts...)

	engine := service.NewEngine(service.Components{
		Catalogue:    cat,
		Search:       searchSvc,
		Dependencies: deps,
		Validator:    validate.New(cat, limits),
		Dispatcher:   dispatcher,
		Estimator:    cost.New(cat),
		Metrics:      metrics,
		Logger:       logger,
	})

	s := &Server{
		engine:   engine,
		client:   client,
		registry: registry,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}

	if mode == ModeStdio {
		s.mcp = mcpapi.NewServer(engine, httpapi.Version, logger)
		logger.Info("Server initialized successfully", zap.String("mode", "stdio"))
		return s, nil
	}

	var breaker *resilience.Breaker
	if client != nil {
		breaker = client.Breaker()
	}
	s.router = newRouter(cfg, httpapi.NewHandlers(httpapi.Deps{
		Engine:  engine,
		Cache:   responses,
		Limiter: limiter,
		Breaker: breaker,
		Metrics: metrics,
		Logger:  logger,
		Remote:  client != nil,
	}), registry, metrics, logger)
	s.http = &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server initialized successfully", zap.String("mode", "http"))
	return s, nil
}

func newRouter(cfg *config.Config, handlers *httpapi.Handlers, registry *prometheus.Registry, metrics *monitoring.Metrics, logger *logging.Logger) *gin.Engine {
	if !cfg.Logging.Development.Value {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSFor(cfg.Ingress.Origins)))
	if cfg.Ingress.Enabled.Value {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.Ingress.RequestsPerSecond.Value),
			zap.Int("burst", cfg.Ingress.Burst.Value),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.Ingress.RequestsPerSecond.Value,
			Burst:             cfg.Ingress.Burst.Value,
		}))
	}

	handlers.Register(router, registry)
	return router
}

// loadCatalogue reads a single document or a directory tree
func loadCatalogue(ctx context.Context, cfg config.CatalogueConfig) (*catalogue.Catalogue, error) {
	info, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("catalogue path: %w", err)
	}
	if !info.IsDir() {
		return catalogue.LoadFile(cfg.Path)
	}
	return catalogue.LoadDir(ctx, cfg.Path, cfg.Pattern)
}

// Engine returns the assembled meta-operation engine
func (s *Server) Engine() *service.Engine {
	return s.engine
}

// Handler returns the HTTP handler; nil in stdio mode
func (s *Server) Handler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// Run serves the configured surface until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	if s.mcp != nil {
		return s.mcp.ServeStdio(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return nil
	}
}

// Close gracefully shuts down the server
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
			return fmt.Errorf("failed to shut down HTTP server: %w", err)
		}
	}

	// Sync logger before exit
	_ = s.logger.Sync()
	return nil
}
