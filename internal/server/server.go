// Package server exposes the stored screening results over a read-only HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"us-screener/internal/model"
	"us-screener/internal/recorder"
)

// Reader is the read side of the application used by the API.
type Reader interface {
	FilteredTicks() ([]model.ClassifiedTicker, error)
	Errors() (model.ErrorSet, error)
}

// Server serves /healthz and /api/*.
type Server struct {
	reader Reader
	runs   recorder.Recorder
	logger *slog.Logger
	engine *gin.Engine
}

// New builds the router.
func New(reader Reader, runs recorder.Recorder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{reader: reader, runs: runs, logger: logger, engine: gin.New()}
	s.engine.Use(gin.Recovery(), s.logRequests())

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := s.engine.Group("/api")
	api.GET("/filtered", s.filtered)
	api.GET("/errors", s.errorSet)
	api.GET("/runs", s.recentRuns)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("http stopped")
	return nil
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request", "method", c.Request.Method, "path", c.Request.URL.Path,
			"status", c.Writer.Status(), "elapsed", time.Since(start))
	}
}

func (s *Server) filtered(c *gin.Context) {
	rows, err := s.reader.FilteredTicks()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if want := c.Query("type"); want != "" {
		kept := rows[:0:0]
		for _, r := range rows {
			if strings.EqualFold(r.Type, want) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	if rows == nil {
		rows = []model.ClassifiedTicker{}
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "count": len(rows)})
}

type errorTick struct {
	Ticker   string     `json:"ticker"`
	FailedAt *time.Time `json:"failed_at,omitempty"`
}

func (s *Server) errorSet(c *gin.Context) {
	set, err := s.reader.Errors()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]errorTick, 0, len(set))
	for _, tk := range set.Tickers() {
		e := errorTick{Ticker: tk}
		if at := set[tk]; !at.IsZero() {
			e.FailedAt = &at
		}
		out = append(out, e)
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "count": len(out)})
}

func (s *Server) recentRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
		return
	}
	runs, err := s.runs.RecentRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []recorder.RunSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"data": runs, "count": len(runs)})
}
