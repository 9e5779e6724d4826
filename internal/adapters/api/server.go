// Package api expone el motor por HTTP (chi + cors).
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/alejandrodnm/valuebot/internal/application/engine"
	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/ledger"
)

// Engine es lo que la API necesita de la capa de aplicación.
type Engine interface {
	Today(ctx context.Context, amount float64, force bool) (domain.Report, error)
	RegisterPick(ctx context.Context, amount float64, pick engine.Pick) (domain.Bet, error)
	Register(ctx context.Context, amount float64, req engine.BetRequest) (domain.Bet, error)
	Settle(ctx context.Context, amount float64, id string, result domain.BetStatus) (ledger.Settlement, error)
	Stats(ctx context.Context, phase *domain.Phase) (domain.BetStats, error)
	History(ctx context.Context, n int) ([]domain.Bet, error)
	Pending(ctx context.Context) ([]domain.Bet, error)
}

// Config del servidor HTTP.
type Config struct {
	Addr           string
	AllowedOrigins []string
	Timeout        time.Duration
}

// Server sirve la API REST.
type Server struct {
	cfg     Config
	handler *Handler
	metrics http.Handler
}

// NewServer crea el servidor. metrics puede ser nil (sin /metrics).
func NewServer(cfg Config, eng Engine, metrics http.Handler) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}
	return &Server{cfg: cfg, handler: NewHandler(eng), metrics: metrics}
}

// Router construye el árbol de rutas.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h := s.handler
	r.Get("/health", h.Health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/opportunities", h.Opportunities)
		r.Get("/stats", h.Stats)
		r.Route("/bets", func(r chi.Router) {
			r.Get("/", h.ListBets)
			r.Post("/", h.RegisterBet)
			r.Get("/pending", h.PendingBets)
			r.Post("/{id}/settle", h.SettleBet)
		})
	})
	return r
}

// ListenAndServe arranca el servidor y lo apaga ordenadamente al cancelar ctx.
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.cfg.Timeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api listening", "addr", s.cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api.ListenAndServe: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("api shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api.ListenAndServe: shutdown: %w", err)
	}
	return nil
}
