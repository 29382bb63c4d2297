// Package server exposes the planner over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness probe
//	POST /api/plan      plan a list of orders
//	POST /api/compare   plan the same orders under the default scenarios
//	GET  /metrics       Prometheus metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/piwi3910/RollCut/internal/config"
	"github.com/piwi3910/RollCut/internal/engine"
	"github.com/piwi3910/RollCut/internal/model"
	"github.com/piwi3910/RollCut/internal/pool"
)

// ErrTooManyOrders is returned when a request exceeds the configured limit.
var ErrTooManyOrders = errors.New("too many orders")

const shutdownTimeout = 10 * time.Second

// Server serves the planning API. All requests share one worker pool.
type Server struct {
	cfg    config.ServerConfig
	base   model.PlanSettings
	pool   *pool.Pool
	logger *zap.Logger
	router *gin.Engine
}

// New builds the server and its routes. base supplies every setting a
// request leaves out.
func New(cfg config.ServerConfig, base model.PlanSettings, p *pool.Pool, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:    cfg,
		base:   base,
		pool:   p,
		logger: logger,
		router: gin.New(),
	}
	s.router.Use(gin.Recovery(), s.requestLogger())

	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	api := s.router.Group("/api")
	api.POST("/plan", s.handlePlan)
	api.POST("/compare", s.handleCompare)

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handlePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings, orders, err := s.prepare(req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	opt, err := engine.New(settings, engine.WithPool(s.pool), engine.WithLogger(s.logger))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	defer opt.Close()

	result, err := opt.Optimize(orders)
	resp := PlanResponse{Description: req.Description, Settings: opt.Settings, Result: result}
	switch {
	case errors.Is(err, model.ErrInfeasible):
		resp.Error = err.Error()
		c.JSON(http.StatusUnprocessableEntity, resp)
	case err != nil:
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, resp)
	}
}

func (s *Server) handleCompare(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings, orders, err := s.prepare(req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	results, err := engine.CompareScenarios(engine.BuildDefaultScenarios(settings), orders,
		engine.WithPool(s.pool), engine.WithLogger(s.logger))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	resp := CompareResponse{Best: engine.BestScenario(results)}
	for _, r := range results {
		sr := ScenarioResult{
			Name:          r.Scenario.Name,
			Settings:      r.Scenario.Settings,
			Height:        r.Height,
			Utilization:   r.Utilization,
			PlacedCount:   r.PlacedCount,
			UnplacedCount: r.UnplacedCount,
			Calls:         r.Calls,
			ElapsedMS:     r.Elapsed.Milliseconds(),
		}
		if r.Err != nil {
			sr.Error = r.Err.Error()
		}
		resp.Scenarios = append(resp.Scenarios, sr)
	}
	c.JSON(http.StatusOK, resp)
}

// prepare merges the request into the base settings and builds the orders.
func (s *Server) prepare(req PlanRequest) (model.PlanSettings, []model.Order, error) {
	if s.cfg.MaxOrders > 0 && len(req.Orders) > s.cfg.MaxOrders {
		return model.PlanSettings{}, nil, fmt.Errorf("%w: %d (limit %d)", ErrTooManyOrders, len(req.Orders), s.cfg.MaxOrders)
	}
	settings, err := req.settings(s.base)
	if err != nil {
		return settings, nil, err
	}
	return settings, req.orders(), nil
}

// statusFor maps planner errors to HTTP status codes.
func statusFor(err error) int {
	var cfgErr *model.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyOrders):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, model.ErrInfeasible):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
