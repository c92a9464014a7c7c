// Package server exposes sessions over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"SetupRadar/internal/collector"
	"SetupRadar/internal/directory"
	"SetupRadar/internal/model"
	"SetupRadar/internal/report"
	"SetupRadar/internal/session"
)

// ProfileStore reads and replaces the default portfolio configuration.
type ProfileStore interface {
	Get() model.PortfolioConfig
	Update(cfg model.PortfolioConfig) error
}

// HistoryStore lists recorded verdicts.
type HistoryStore interface {
	RecentVerdicts(ctx context.Context, symbol string, limit int) ([]model.Verdict, error)
}

// HTTPServer serves the session API.
type HTTPServer struct {
	addr     string
	sessions *session.Manager
	profile  ProfileStore
	history  HistoryStore
	router   *gin.Engine
}

type HTTPConfig struct {
	Addr     string
	Sessions *session.Manager
	Profile  ProfileStore
	History  HistoryStore
}

func NewHTTPServer(cfg HTTPConfig) (*HTTPServer, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &HTTPServer{
		addr:     cfg.Addr,
		sessions: cfg.Sessions,
		profile:  cfg.Profile,
		history:  cfg.History,
		router:   router,
	}
	s.registerRoutes()
	return s, nil
}

// Handler returns the router, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler { return s.router }

func (s *HTTPServer) registerRoutes() {
	api := s.router.Group("/api")
	api.POST("/sessions", s.handleCreate)
	api.GET("/sessions/:id", s.withSession(s.handleView))
	api.DELETE("/sessions/:id", s.handleDelete)
	api.POST("/sessions/:id/radar", s.withSession(s.handleRadar))
	api.PATCH("/sessions/:id/setup", s.withSession(s.handleEdit))
	api.POST("/sessions/:id/analyze", s.withSession(s.handleAnalyze))
	api.GET("/sessions/:id/report", s.withSession(s.handleReport))
	api.PUT("/sessions/:id/defaults", s.withSession(s.handleSaveDefaults))
	api.GET("/portfolio", s.handleGetPortfolio)
	api.PUT("/portfolio", s.handlePutPortfolio)
	api.GET("/history/:symbol", s.handleHistory)
}

func (s *HTTPServer) withSession(h func(*gin.Context, *session.Session)) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.sessions.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h(c, sess)
	}
}

func (s *HTTPServer) handleCreate(c *gin.Context) {
	sess := s.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"id": sess.ID(), "session": sess.View()})
}

func (s *HTTPServer) handleView(c *gin.Context, sess *session.Session) {
	c.JSON(http.StatusOK, gin.H{"session": sess.View()})
}

func (s *HTTPServer) handleDelete(c *gin.Context) {
	if !s.sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) handleRadar(c *gin.Context, sess *session.Session) {
	var req struct {
		Symbol string `json:"symbol" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := sess.Radar(c.Request.Context(), req.Symbol)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": snap, "setup": sess.Setup()})
}

func (s *HTTPServer) handleEdit(c *gin.Context, sess *session.Session) {
	var req struct {
		Field string   `json:"field" binding:"required"`
		Value *float64 `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := sess.Edit(req.Field, *req.Value); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.View()})
}

func (s *HTTPServer) handleAnalyze(c *gin.Context, sess *session.Session) {
	a, err := sess.Analyze()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": a})
}

func (s *HTTPServer) handleReport(c *gin.Context, sess *session.Session) {
	v := sess.View()
	if v.Last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session has no analysis yet"})
		return
	}
	c.String(http.StatusOK, report.Render(*v.Last))
}

func (s *HTTPServer) handleSaveDefaults(c *gin.Context, sess *session.Session) {
	if err := sess.SaveDefaults(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) handleGetPortfolio(c *gin.Context) {
	if s.profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no portfolio profile configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": s.profile.Get()})
}

func (s *HTTPServer) handlePutPortfolio(c *gin.Context) {
	if s.profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no portfolio profile configured"})
		return
	}
	var req model.PortfolioConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.profile.Update(req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": s.profile.Get()})
}

func (s *HTTPServer) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is not recorded"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	symbol := strings.ToUpper(c.Param("symbol"))
	verdicts, err := s.history.RecentVerdicts(c.Request.Context(), symbol, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "verdicts": verdicts})
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("api request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrDataUnavailable),
		errors.Is(err, directory.ErrNotFound),
		errors.Is(err, collector.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidSetup),
		errors.Is(err, model.ErrConfiguration),
		errors.Is(err, model.ErrUnknownField):
		return http.StatusUnprocessableEntity
	case errors.Is(err, collector.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or it fails.
func (s *HTTPServer) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("http api listening", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
