package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tejasgroup/expenseflow/internal/config"
)

// Server wraps the HTTP server and its routes
type Server struct {
	config     config.ServerConfig
	router     *gin.Engine
	httpServer *http.Server
	handlers   *Handlers
	tokens     *TokenIssuer
	resolver   IdentityResolver
	logger     *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, handlers *Handlers, tokens *TokenIssuer, resolver IdentityResolver, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:   cfg,
		router:   gin.New(),
		handlers: handlers,
		tokens:   tokens,
		resolver: resolver,
		logger:   logger,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.setupRoutes()

	return s
}

// loggingMiddleware logs each request with method, path, status and latency
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("latency", time.Since(start).String()),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.HealthCheck)

	api := s.router.Group("/api")
	api.POST("/login", s.handlers.Login)

	authed := api.Group("")
	authed.Use(authMiddleware(s.tokens, s.resolver))
	{
		// Expenses
		authed.POST("/expenses", s.handlers.CreateExpense)
		authed.GET("/expenses", s.handlers.ListExpenses)
		authed.GET("/expenses/pending", s.handlers.ListPending)
		authed.GET("/expenses/:id", s.handlers.GetExpense)
		authed.POST("/expenses/:id/stages/:stage/decision", s.handlers.DecideStage)

		// Reports
		authed.GET("/reports/brands", s.handlers.BrandReport)
		authed.GET("/reports/categories", s.handlers.CategoryReport)
		authed.GET("/reports/months", s.handlers.MonthReport)
		authed.GET("/reports/brand-month-matrix", s.handlers.MatrixReport)
	}

	admin := authed.Group("")
	admin.Use(requireAdmin())
	{
		admin.DELETE("/expenses/:id", s.handlers.DeleteExpense)
		admin.POST("/identities", s.handlers.CreateIdentity)
		admin.GET("/identities", s.handlers.ListIdentities)
		admin.PATCH("/identities/:username/active", s.handlers.SetIdentityActive)
		admin.POST("/identities/:username/secret", s.handlers.RotateIdentitySecret)
	}
}

// Start starts the HTTP server and blocks until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
