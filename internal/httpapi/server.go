// Package httpapi serves the dispatcher over HTTP for local development and
// container deployments.
//
//	POST /invoke   header "command" selects the command; the raw request body
//	               is the event body. Always answers 200 with the response.
//	GET  /healthz  runs the self-test; 200 when it passes, 503 otherwise.
//	GET  /metrics  Prometheus exposition.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahrav/go-grader/internal/domain"
)

// MaxBodyBytes bounds the accepted request body.
const MaxBodyBytes = 4 << 20

// Messages of requests rejected before dispatch.
const (
	MsgBodyTooLarge   = "Request body is too large."
	MsgBodyUnreadable = "Request body could not be read."
)

// Dispatcher is the invocation boundary served over HTTP.
type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.Event) domain.Response
}

// Server is the HTTP adapter.
type Server struct {
	dispatcher Dispatcher
	gatherer   prometheus.Gatherer
	logger     *slog.Logger
	engine     *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer serves gatherer on /metrics instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New builds the router.
func New(d Dispatcher, opts ...Option) *Server {
	s := &Server{
		dispatcher: d,
		gatherer:   prometheus.DefaultGatherer,
		logger:     slog.Default().With("component", "httpapi"),
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	engine.POST("/invoke", s.invoke)
	engine.GET("/healthz", s.healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	s.engine = engine
	return s
}

// Handler returns the http.Handler of the server.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http adapter listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) invoke(c *gin.Context) {
	event := domain.Event{}
	if cmd := c.GetHeader(domain.CommandHeader); cmd != "" {
		event[domain.HeadersKey] = map[string]any{domain.CommandHeader: cmd}
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil {
		status, msg := http.StatusBadRequest, MsgBodyUnreadable
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status, msg = http.StatusRequestEntityTooLarge, MsgBodyTooLarge
		}
		s.logger.WarnContext(c.Request.Context(), "request body rejected", "status", status, "error", err)
		c.AbortWithStatusJSON(status, domain.Failure(&domain.ErrorDetail{
			Message: msg,
			Kind:    domain.ErrorKindMalformedInput,
		}))
		return
	}
	if len(body) > 0 {
		event[domain.BodyKey] = string(body)
	}

	c.JSON(http.StatusOK, s.dispatcher.Dispatch(c.Request.Context(), event))
}

func (s *Server) healthz(c *gin.Context) {
	resp := s.dispatcher.Dispatch(c.Request.Context(), domain.NewEvent(domain.CommandHealthcheck, nil))

	status := http.StatusOK
	if result, ok := resp.Result.(domain.HealthcheckResult); !ok || !result.TestsPassed {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.DebugContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
