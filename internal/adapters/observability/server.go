package observability

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/fleetward/fleetward/internal/domain"
	"github.com/fleetward/fleetward/internal/helpers/netutil"
	"github.com/fleetward/fleetward/internal/ports"
)

// Server serves /healthz, /statusz and /metrics for operators and probes.
type Server struct {
	cfg     domain.ObservabilityConfig
	status  ports.StatusReporter
	metrics *Metrics
	logger  *slog.Logger

	httpServer *http.Server
}

func NewServer(cfg domain.ObservabilityConfig, status ports.StatusReporter, metrics *Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		status:  status,
		metrics: metrics,
		logger:  logger.With("component", "observability-server"),
	}
}

func (s *Server) Start() error {
	listener, port, err := netutil.ListenTCP(s.cfg.Host, s.cfg.Port)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/statusz", s.handleStatusz)
	mux.Handle("/metrics", s.metrics.Handler())

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("observability server failed", "error", err)
		}
	}()

	s.logger.Info("observability server listening", "host", s.cfg.Host, "port", port)
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	st := s.status.Status()
	if st.ShutdownStarted {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatusz(w http.ResponseWriter, _ *http.Request) {
	st := s.status.Status()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		s.logger.Error("failed to encode status", "error", err)
	}
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
