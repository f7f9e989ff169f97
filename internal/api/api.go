package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Houeta/gold-flow/internal/differ"
	"github.com/Houeta/gold-flow/internal/extractor"
	"github.com/Houeta/gold-flow/internal/repository"
	"github.com/Houeta/gold-flow/internal/services/checker"
	"github.com/gin-gonic/gin"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server exposes the checker over HTTP.
type Server struct {
	log     *slog.Logger
	checker checker.Interface
	engine  *gin.Engine
	srv     *http.Server
}

// NewServer builds the router. addr may be empty when the server is only used as a handler.
func NewServer(log *slog.Logger, chk checker.Interface, addr string) *Server {
	s := &Server{
		log:     log,
		checker: chk,
		engine:  gin.New(),
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/snapshot", s.getSnapshot)
		v1.POST("/check", s.runCheck)
	}
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	const opn = "api.Run"

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "HTTP API listening", "op", opn, "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s: failed to serve: %w", opn, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: failed to shutdown: %w", opn, err)
	}
	s.log.InfoContext(ctx, "HTTP API stopped", "op", opn)

	return nil
}

func (s *Server) getSnapshot(c *gin.Context) {
	snap, err := s.checker.LatestSnapshot(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrStateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot captured yet"})
			return
		}
		s.log.ErrorContext(c.Request.Context(), "Failed to load snapshot", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (s *Server) runCheck(c *gin.Context) {
	dryRun := false
	if raw := c.Query("dry_run"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dry_run must be a boolean"})
			return
		}
		dryRun = v
	}

	report, err := s.checker.CheckForUpdates(c.Request.Context(), checker.Options{DryRun: dryRun})
	if err != nil {
		s.log.ErrorContext(c.Request.Context(), "Check failed", "error", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, extractor.ErrExtractionExhausted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, differ.ErrComparisonImpossible):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.DebugContext(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
