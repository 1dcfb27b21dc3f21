package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kerlexov/errorlog/pkg/auth"
	"github.com/kerlexov/errorlog/pkg/config"
	"github.com/kerlexov/errorlog/pkg/errlog"
	"github.com/kerlexov/errorlog/pkg/ratelimit"
	"github.com/kerlexov/errorlog/pkg/security"
	"github.com/kerlexov/errorlog/pkg/storage"
	tlsconf "github.com/kerlexov/errorlog/pkg/tls"
	"github.com/kerlexov/errorlog/pkg/validation"
)

// Server exposes the error log over HTTP for inspection and remote
// reporting. All read endpoints are backed by the logger's file views
// and the optional SQLite index; the single write endpoint feeds
// reported errors through the same fan-out as in-process ones.
type Server struct {
	port        int
	logger      *errlog.AppLogger
	store       storage.ErrorStore
	validator   *validation.RecordValidator
	rateLimiter *ratelimit.RateLimiter
	auth        *auth.TokenManager
	tlsConfig   tlsconf.Config
	server      *http.Server
}

// NewServer creates a new inspection API server. A nil token manager
// disables authentication.
func NewServer(cfg config.APIConfig, logger *errlog.AppLogger, store storage.ErrorStore, tokens *auth.TokenManager) *Server {
	if tokens == nil {
		tokens = auth.NewTokenManager(nil)
	}

	return &Server{
		port:      cfg.Port,
		logger:    logger,
		store:     store,
		validator: validation.NewRecordValidator(),
		auth:      tokens,
		tlsConfig: cfg.TLS,
		rateLimiter: ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: cfg.RequestsPerMinute,
			BurstSize:         cfg.BurstSize,
			CleanupInterval:   5 * time.Minute,
			BlockDuration:     10 * time.Minute,
			MaxViolations:     5,
		}),
	}
}

// Start starts the API server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(s.loggingMiddleware())
	router.Use(s.recoveryMiddleware())
	router.Use(security.HeadersMiddleware(nil))
	router.Use(auth.Middleware(s.auth))
	router.Use(ratelimit.Middleware(s.rateLimiter))
	router.Use(s.requestSizeMiddleware())

	s.registerRoutes(router)

	tlsConfig, err := s.tlsConfig.Build()
	if err != nil {
		return fmt.Errorf("failed to configure TLS: %w", err)
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      router,
		TLSConfig:    tlsConfig,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		var err error
		if tlsConfig != nil {
			err = s.server.ListenAndServeTLS("", "")
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error(fmt.Sprintf("api server stopped: %v", err))
		}
	}()

	s.logger.Info(fmt.Sprintf("error inspection API listening on port %d", s.port))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.rateLimiter.Stop()

	return s.server.Shutdown(shutdownCtx)
}

// Stop stops the API server
func (s *Server) Stop() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes(router *gin.Engine) {
	read := auth.RequireScope(s.auth, auth.ScopeRead)
	report := auth.RequireScope(s.auth, auth.ScopeReport)

	router.GET("/health", s.handleHealthCheck)
	router.GET("/metrics", read, s.handleMetrics)
	router.GET("/summary", read, s.handleSummary)
	router.GET("/digest", read, s.handleDigest)

	errors := router.Group("/errors")
	{
		errors.GET("/recent", read, s.handleRecentErrors)
		errors.GET("/search", read, s.handleSearchErrors)
		errors.GET("/:code", read, s.handleErrorByCode)
		errors.POST("", report, s.handleReportError)
	}
}

// loggingMiddleware provides access logging for all requests
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] %s %s %d %s %s\n",
			param.TimeStamp.Format("2006-01-02 15:04:05"),
			param.Method,
			param.Path,
			param.StatusCode,
			param.Latency,
			param.ClientIP,
		)
	})
}

// recoveryMiddleware provides panic recovery with proper error responses
func (s *Server) recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		s.logger.Error(fmt.Sprintf("panic in api handler: %v", recovered))

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": "An internal server error occurred",
			},
		})
		c.Abort()
	})
}

// requestSizeMiddleware limits the size of request bodies
func (s *Server) requestSizeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		const maxRequestSize = 1 * 1024 * 1024 // 1MB

		if c.Request.ContentLength > maxRequestSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": gin.H{
					"code":    "REQUEST_TOO_LARGE",
					"message": "Request body too large",
					"details": fmt.Sprintf("Request body cannot exceed %d bytes", maxRequestSize),
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
