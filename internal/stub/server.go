// Package stub is a self-contained analysis backend speaking the same
// /upload, /summary and /query protocol as the real service. It classifies
// lines by keyword instead of calling a language model, which makes it
// suitable for demos, offline use and tests.
package stub

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/yildizm/loglens/internal/api"
	"github.com/yildizm/loglens/internal/logger"
)

// Error details returned to clients
const (
	DetailEmpty       = "Log file is empty."
	DetailNotAnalyzed = "No log file has been analyzed yet. Please call /upload first."
)

// DefaultBodyLimit caps upload size
const DefaultBodyLimit = "50M"

// Server holds the most recently uploaded file and answers questions
// about it. Each upload replaces the previous one.
type Server struct {
	echo  *echo.Echo
	log   *logger.Logger
	delay time.Duration

	mu     sync.RWMutex
	chunks []string
	stats  *Stats
}

// Option configures a Server
type Option func(*Server)

// WithLogger attaches a logger for request and lifecycle logs
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithDelay makes every endpoint wait d before answering, so clients can
// observe their in-flight states.
func WithDelay(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.delay = d
		}
	}
}

// New creates a server with its routes registered
func New(opts ...Option) *Server {
	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(DefaultBodyLimit))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Debug("request",
				logger.F("method", v.Method),
				logger.F("uri", v.URI),
				logger.F("status", v.Status),
				logger.F("request_id", v.RequestID),
				logger.Duration(v.Latency))
			return nil
		},
	}))

	e.GET("/", s.handleRoot)
	e.POST("/upload", s.handleUpload)
	e.GET("/summary", s.handleSummary)
	e.POST("/query", s.handleQuery)

	s.echo = e
	return s
}

// Handler exposes the routes for embedding or httptest
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.log.Info("stub backend listening", logger.F("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "Log analysis stub is running."})
}

func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return missingField("file")
	}

	f, err := fh.Open()
	if err != nil {
		return detailError(http.StatusInternalServerError, "An error occurred during upload: "+err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return detailError(http.StatusInternalServerError, "An error occurred during upload: "+err.Error())
	}
	if !utf8.Valid(data) {
		return detailError(http.StatusInternalServerError, "An error occurred during upload: file is not valid UTF-8")
	}

	lines := splitLines(string(data))
	if len(lines) == 0 {
		return detailError(http.StatusBadRequest, DetailEmpty)
	}

	if err := s.wait(c); err != nil {
		return err
	}

	stats := Analyze(lines)
	chunks := Chunk(lines)

	s.mu.Lock()
	s.chunks = chunks
	s.stats = stats
	s.mu.Unlock()

	s.log.Info("log analyzed",
		logger.F("file", fh.Filename),
		logger.F("lines", len(lines)),
		logger.F("chunks", len(chunks)))

	return c.JSON(http.StatusOK, stats.Result())
}

func (s *Server) handleSummary(c echo.Context) error {
	stats := s.current()
	if stats == nil {
		return detailError(http.StatusBadRequest, DetailNotAnalyzed)
	}
	if err := s.wait(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats.Summary())
}

func (s *Server) handleQuery(c echo.Context) error {
	var req api.QueryRequest
	if err := c.Bind(&req); err != nil {
		return missingField("query")
	}

	s.mu.RLock()
	stats, chunks := s.stats, s.chunks
	s.mu.RUnlock()
	if stats == nil {
		return detailError(http.StatusBadRequest, DetailNotAnalyzed)
	}
	if err := s.wait(c); err != nil {
		return err
	}

	snippets := Search(chunks, req.Query)
	return c.JSON(http.StatusOK, stats.Answer(req.Query, snippets))
}

func (s *Server) current() *Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// wait applies the configured delay unless the client goes away first
func (s *Server) wait(c echo.Context) error {
	if s.delay == 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-c.Request().Context().Done():
		return c.Request().Context().Err()
	case <-timer.C:
		return nil
	}
}

// splitLines splits on any line ending and drops a trailing empty line
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
