package httpstatus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Probe is what the server reports on; implemented in cmd/bot from the
// router and the awaiter.
type Probe interface {
	Ready() bool
	PendingAwaits() int
}

type Server struct {
	probe Probe
	log   *slog.Logger
	mux   *http.ServeMux
}

func New(probe Probe, log *slog.Logger) *Server {
	s := &Server{probe: probe, log: log, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/readyz", s.handleReady)
}

func (s *Server) Handler() http.Handler { return s.mux }

type status struct {
	Ready         bool `json:"ready"`
	PendingAwaits int  `json:"pending_awaits"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	st := status{Ready: s.probe.Ready(), PendingAwaits: s.probe.PendingAwaits()}
	w.Header().Set("Content-Type", "application/json")
	if !st.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(st)
}

// Start serves until ctx ends.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.log.Info("ops http listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
