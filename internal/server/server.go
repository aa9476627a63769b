// Package server exposes the run's Prometheus metrics and a health check over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

const shutdownTimeout = 5 * time.Second

var ErrListenFailed = errors.New("metrics server failed to listen")

// ProgressFunc reports how many timesteps the run has applied.
type ProgressFunc func() int64

// Health is the /healthz response body.
type Health struct {
	Status    string `json:"status"`
	Timesteps int64  `json:"timesteps"`
}

// NewRouter builds the routes: GET /metrics and GET /healthz.
func NewRouter(progress ProgressFunc) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler(progress)).Methods(http.MethodGet)
	return r
}

func healthHandler(progress ProgressFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		h := Health{Status: "ok"}
		if progress != nil {
			h.Timesteps = progress()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(h)
	}
}

// Server serves a router with access logging routed through zap.
type Server struct {
	addr    string
	handler http.Handler
	logger  *zap.Logger
}

// New wraps router with a combined access log written at debug level.
func New(addr string, router http.Handler, logger *zap.Logger) *Server {
	access := &zapio.Writer{Log: logger.Named("access"), Level: zapcore.DebugLevel}
	return &Server{
		addr:    addr,
		handler: handlers.CombinedLoggingHandler(access, router),
		logger:  logger,
	}
}

// Handler returns the wrapped handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Run listens on the configured address until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListenFailed, err)
	}
	srv := &http.Server{Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	s.logger.Info("Metrics server listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("Metrics server shutdown incomplete", zap.Error(err))
		return err
	}
	<-serveErr
	s.logger.Info("Metrics server stopped")
	return nil
}
