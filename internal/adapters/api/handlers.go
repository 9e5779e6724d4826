package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alejandrodnm/valuebot/internal/application/engine"
	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/risk"
)

// Handler agrupa los handlers HTTP.
type Handler struct {
	engine Engine
}

// NewHandler crea los handlers sobre el engine.
func NewHandler(eng Engine) *Handler {
	return &Handler{engine: eng}
}

// Health responde el estado del servicio.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Opportunities devuelve el reporte del día (?bankroll=&force=).
func (h *Handler) Opportunities(w http.ResponseWriter, r *http.Request) {
	amount, err := bankrollParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	report, err := h.engine.Today(r.Context(), amount, force)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// ListBets devuelve las últimas apuestas (?limit=, 10 por defecto).
func (h *Handler) ListBets(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	bets, err := h.engine.History(r.Context(), limit)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"bets": nonNil(bets), "count": len(bets)})
}

// PendingBets devuelve las apuestas abiertas.
func (h *Handler) PendingBets(w http.ResponseWriter, r *http.Request) {
	bets, err := h.engine.Pending(r.Context())
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"bets": nonNil(bets), "count": len(bets)})
}

// RegisterBetRequest registra una apuesta: por índice del reporte de hoy
// (opportunity o multiple, 1-based) o manual con los campos de BetRequest.
type RegisterBetRequest struct {
	Bankroll    float64 `json:"bankroll,omitempty"`
	Opportunity int     `json:"opportunity,omitempty"`
	Multiple    int     `json:"multiple,omitempty"`
	engine.BetRequest
}

// RegisterBet registra una apuesta pending.
func (h *Handler) RegisterBet(w http.ResponseWriter, r *http.Request) {
	var req RegisterBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		bet domain.Bet
		err error
	)
	if req.Opportunity > 0 || req.Multiple > 0 {
		bet, err = h.engine.RegisterPick(r.Context(), req.Bankroll, engine.Pick{
			Opportunity: req.Opportunity,
			Multiple:    req.Multiple,
		})
	} else {
		bet, err = h.engine.Register(r.Context(), req.Bankroll, req.BetRequest)
	}
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, bet)
}

type settleRequest struct {
	Result   string  `json:"result"`
	Bankroll float64 `json:"bankroll,omitempty"`
}

// SettleBet liquida una apuesta como won, lost o void.
func (h *Handler) SettleBet(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := domain.ParseResult(req.Result)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.engine.Settle(r.Context(), req.Bankroll, chi.URLParam(r, "id"), result)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// Stats devuelve el agregado del historial (?phase=1..4|consolidation).
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	var phase *domain.Phase
	if raw := r.URL.Query().Get("phase"); raw != "" {
		p, ok := domain.ParsePhase(raw)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid phase")
			return
		}
		phase = &p
	}
	st, err := h.engine.Stats(r.Context(), phase)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func bankrollParam(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("bankroll")
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, errors.New("bankroll must be a positive number")
	}
	return v, nil
}

func nonNil(bets []domain.Bet) []domain.Bet {
	if bets == nil {
		return []domain.Bet{}
	}
	return bets
}

// respondEngineError traduce los errores del dominio a códigos HTTP.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBetNotFound), errors.Is(err, engine.ErrNoSuchPick):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrBetSettled),
		errors.Is(err, risk.ErrDailyLimit),
		errors.Is(err, risk.ErrMaxSimultaneous),
		errors.Is(err, risk.ErrLosingStreak):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidResult), errors.Is(err, engine.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("api request failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("api encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
