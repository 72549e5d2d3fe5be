// Package server exposes the generation orchestrator over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pario-ai/namegen/pkg/budget"
	"github.com/pario-ai/namegen/pkg/models"
)

// ScopeHeader carries the caller scope set by the authentication layer.
const ScopeHeader = "X-Caller-Scope"

// Generator is the orchestrator surface served over HTTP.
type Generator interface {
	Generate(ctx context.Context, req models.NamingRequest, scope string) (*models.Envelope, error)
	BatchGenerate(ctx context.Context, reqs []models.NamingRequest, scope string) ([]*models.Envelope, error)
	Stats(ctx context.Context, scope string) (models.BudgetStats, error)
}

// BatchRequest is the body of POST /v1/names/batch.
type BatchRequest struct {
	Requests []models.NamingRequest `json:"requests"`
}

// BatchResponse lists the envelopes of the items that completed.
type BatchResponse struct {
	Results   []*models.Envelope `json:"results"`
	Requested int                `json:"requested"`
	Completed int                `json:"completed"`
}

// Server is the namegen HTTP server.
type Server struct {
	listen string
	gen    Generator
	logger *zap.Logger
	engine *gin.Engine
}

// New creates a Server. gatherer backs /metrics; nil uses the default registry.
func New(listen string, gen Generator, logger *zap.Logger, gatherer prometheus.Gatherer) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{listen: listen, gen: gen, logger: logger, engine: engine}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := engine.Group("/v1")
	v1.POST("/names", s.handleGenerate)
	v1.POST("/names/batch", s.handleBatch)
	v1.GET("/budget", s.handleBudget)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// ListenAndServe starts the server and shuts it down gracefully when ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listen,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("namegen listening", zap.String("addr", s.listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req models.NamingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &models.ValidationError{Field: "body", Rule: "json", Message: "request body must be a JSON naming request"})
		return
	}

	env, err := s.gen.Generate(c.Request.Context(), req, c.GetHeader(ScopeHeader))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}

func (s *Server) handleBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &models.ValidationError{Field: "body", Rule: "json", Message: "request body must contain a requests list"})
		return
	}
	if len(req.Requests) == 0 {
		writeError(c, &models.ValidationError{Field: "requests", Rule: "required", Message: "requests is required"})
		return
	}

	results, err := s.gen.BatchGenerate(c.Request.Context(), req.Requests, c.GetHeader(ScopeHeader))
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		writeError(c, vErr)
		return
	}
	if err != nil {
		s.logger.Warn("batch interrupted", zap.Int("completed", len(results)), zap.Error(err))
	}
	if results == nil {
		results = []*models.Envelope{}
	}
	c.JSON(http.StatusOK, BatchResponse{
		Results:   results,
		Requested: len(req.Requests),
		Completed: len(results),
	})
}

func (s *Server) handleBudget(c *gin.Context) {
	stats, err := s.gen.Stats(c.Request.Context(), c.GetHeader(ScopeHeader))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) fail(c *gin.Context, err error) {
	var vErr *models.ValidationError
	var bErr *budget.ExceededError
	switch {
	case errors.As(err, &vErr):
		writeError(c, vErr)
	case errors.As(err, &bErr):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": gin.H{
			"code":    bErr.Code(),
			"message": "spend limit reached, try again later",
			"period":  bErr.Period,
		}})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": gin.H{"code": "CANCELLED", "message": "request cancelled"}})
	default:
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL_ERROR", "message": "internal error"}})
	}
}

func writeError(c *gin.Context, e *models.ValidationError) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
		"code":    e.Code(),
		"message": e.Message,
		"field":   e.Field,
	}})
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
