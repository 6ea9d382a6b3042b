package syncer

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server exposes the live run counters while a sync executes. Strictly
// read-only; it never influences the sequential run.
type Server struct {
	logger *zap.Logger
	syncer *Syncer
}

func NewServer(logger *zap.Logger, syncer *Syncer) *Server {
	return &Server{
		logger: logger,
		syncer: syncer,
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", s.health)
	r.Get("/api/v1/sync", s.getSync)

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) getSync(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.syncer.stats.Snapshot())
}

func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	s.logger.Info("starting status server", zap.String("addr", addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down status server")
		srv.Shutdown(context.Background())
	}()

	return srv.ListenAndServe()
}
