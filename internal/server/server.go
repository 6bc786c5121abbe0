package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ridwanfathin/invoice-service/internal/auth"
	"github.com/ridwanfathin/invoice-service/internal/config"
	"github.com/ridwanfathin/invoice-service/internal/handler"
	"github.com/ridwanfathin/invoice-service/internal/logger"
	"github.com/ridwanfathin/invoice-service/internal/middleware"
	"github.com/ridwanfathin/invoice-service/internal/model"
)

// Dependencies are the collaborators the HTTP layer is built from
type Dependencies struct {
	InvoiceHandler *handler.InvoiceHandler
	AIHandler      *handler.AIHandler
	Tokens         auth.TokenValidator
	// HealthCheck reports whether storage is reachable; nil means always healthy
	HealthCheck func(ctx context.Context) error
}

// Server represents the HTTP server for the invoice service
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	rateLimiter *middleware.RateLimiter
	config      *config.Config
	log         zerolog.Logger
}

// NewServer creates and configures a new server instance
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	log := logger.WithComponent("server")

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.RequestResponseLogger(logger.WithComponent("http"), middleware.LoggerConfig{
		LogBodies: cfg.LogLevel == "debug",
		SkipPaths: []string{"/health"},
	}))

	server := &Server{
		router:      router,
		rateLimiter: middleware.NewRateLimiter(cfg.AIRateLimitPerMinute, cfg.AIRateBurst, logger.WithComponent("ratelimit")),
		config:      cfg,
		log:         log,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}

	server.setupRoutes(deps)

	return server
}

// GetRouter returns the gin router instance
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// setupRoutes configures all application routes
func (s *Server) setupRoutes(deps Dependencies) {
	s.router.GET("/health", func(c *gin.Context) {
		resp := model.HealthResponse{Status: "ok", Storage: s.config.StorageDriver}
		if deps.HealthCheck != nil {
			if err := deps.HealthCheck(c.Request.Context()); err != nil {
				s.log.Warn().Err(err).Msg("Health check failed")
				resp.Status = "degraded"
				c.JSON(http.StatusServiceUnavailable, resp)
				return
			}
		}
		c.JSON(http.StatusOK, resp)
	})

	// Swagger UI at /api-docs/index.html
	swaggerHandler := ginSwagger.WrapHandler(swaggerFiles.Handler)
	s.router.GET("/api-docs/*any", swaggerHandler)
	s.router.GET("/api-docs", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api-docs/index.html")
	})

	v1 := s.router.Group("/v1", middleware.AuthMiddleware(deps.Tokens))
	if deps.InvoiceHandler != nil {
		deps.InvoiceHandler.RegisterRoutes(v1)
	}
	if deps.AIHandler != nil {
		deps.AIHandler.RegisterRoutes(v1, s.rateLimiter.Limit())
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	s.rateLimiter.StartCleanup(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Int("port", s.config.Port).Msg("Server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.log.Info().Msg("Server exited gracefully")
	return nil
}
