package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Banumathkovinda/web-app-security-tester/internal/config"
	"github.com/Banumathkovinda/web-app-security-tester/internal/platform"
)

// shutdownTimeout bounds graceful shutdown. Running scans get this long
// to finish before the process exits.
const shutdownTimeout = 10 * time.Second

// Server is the webscan HTTP API.
// It wires the scan manager, report rendering, history, metrics, and
// the platform capability profile behind a net/http server.
type Server struct {
	cfg     *config.Config
	caps    platform.Capabilities
	logger  *slog.Logger
	manager *Manager
	metrics *Metrics
	httpSrv *http.Server

	// limiter bounds scan launches. Scans hold HTTP clients and possibly
	// Chrome processes, so unbounded launch rates would exhaust the host.
	limiter *rate.Limiter
}

// New creates the API server for the given configuration and platform.
// The scan manager is created internally so its activity feeds the
// server's metrics; manager options (such as WithDatabase) pass through.
func New(cfg *config.Config, caps platform.Capabilities, logger *slog.Logger, opts ...ManagerOption) *Server {
	s := &Server{
		cfg:     cfg,
		caps:    caps,
		logger:  logger,
		metrics: NewMetrics(),
		limiter: rate.NewLimiter(rate.Limit(2), 5),
	}

	opts = append(opts, WithMetrics(s.metrics))
	s.manager = NewManager(cfg, caps, logger, opts...)

	s.httpSrv = &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	return s
}

// Manager returns the scan manager behind the API.
func (s *Server) Manager() *Manager {
	return s.manager
}

// Handler builds the route table.
// Scan-launching routes carry authentication and rate limiting; the
// health and metrics endpoints stay open for probes and scrapers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	protected := func(h http.HandlerFunc) http.Handler {
		return requireAuth(s.cfg.SecretKey, rateLimit(s.limiter, h))
	}

	mux.Handle("POST /api/scan", protected(s.handleScan))
	mux.Handle("GET /api/scan/status/{id}", requireAuth(s.cfg.SecretKey, http.HandlerFunc(s.handleStatus)))
	mux.Handle("GET /api/report/{id}", requireAuth(s.cfg.SecretKey, http.HandlerFunc(s.handleReport)))
	mux.Handle("GET /api/history", requireAuth(s.cfg.SecretKey, http.HandlerFunc(s.handleHistory)))
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return mux
}

// ListenAndServe runs the server until the context is cancelled, then
// shuts down gracefully, waiting for running scans.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening",
			"address", s.httpSrv.Addr,
			"platform", s.caps.Platform,
		)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	s.manager.Wait()
	s.logger.Info("api server stopped")
	return nil
}
