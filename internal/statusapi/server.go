package statusapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pedalvalet/netwatch/internal/monitor"
)

// Server is the loopback-only debug surface of the watchdog: current state
// machine snapshot plus prometheus counters. It only runs when debug is
// enabled; the watchdog is fully functional without it.
type Server struct {
	Logger *zap.Logger
	Loop   *monitor.Loop
}

func NewServer(l *zap.Logger, loop *monitor.Loop) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Loop: loop}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Loop.Status()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.Logger.Debug("status_encode_failed", zap.Error(err))
	}
}

// Serve runs the status API until ctx-independent shutdown; errors are
// logged, never fatal to the watchdog.
func (s *Server) Serve(addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Warn("status_api_failed", zap.Error(err))
		}
	}()
	return srv
}
