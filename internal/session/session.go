// Package session agrupa el estado mutable de un apostador: bankroll y riesgo.
// Cada caller construye la suya; no hay singletons de proceso.
package session

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alejandrodnm/valuebot/internal/bankroll"
	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/ports"
	"github.com/alejandrodnm/valuebot/internal/risk"
)

// streakWindow es cuánto historial se relee para reconstruir la racha.
const streakWindow = 30 * 24 * time.Hour

// Session es el contexto explícito que se pasa a cada llamada del motor.
type Session struct {
	Bankroll *bankroll.Manager
	Risk     *risk.Manager
}

// New crea una sesión para el bankroll dado.
func New(cfg bankroll.Config, limits risk.Limits, amount float64, opts ...risk.Option) *Session {
	bm := bankroll.New(cfg, amount)
	return &Session{
		Bankroll: bm,
		Risk:     risk.New(amount, bm.Phase(), limits, opts...),
	}
}

// Restore reconstruye el estado de riesgo desde el historial persistido:
// stakes de hoy y la racha de resultados liquidados en orden de cierre.
func (s *Session) Restore(ctx context.Context, store ports.BetStore, now time.Time) error {
	bets, err := store.ListSince(ctx, now.Add(-streakWindow))
	if err != nil {
		return fmt.Errorf("session.Restore: list bets: %w", err)
	}

	startOfDay := domain.StartOfDay(now)

	var stakes []risk.Stake
	var settled []domain.Bet
	for _, b := range bets {
		if !b.CreatedAt.Before(startOfDay) {
			stakes = append(stakes, risk.Stake{Amount: b.Stake, At: b.CreatedAt})
		}
		if b.Status.Terminal() && b.ClosedAt != nil {
			settled = append(settled, b)
		}
	}
	sort.SliceStable(settled, func(i, j int) bool {
		return settled[i].ClosedAt.Before(*settled[j].ClosedAt)
	})

	results := make([]domain.BetStatus, 0, len(settled))
	for _, b := range settled {
		results = append(results, b.Status)
	}
	s.Risk.Restore(stakes, results)
	return nil
}

// ApplyProfit suma el profit al bankroll, recalcula la fase y propaga ambos
// al gestor de riesgo. Devuelve el evento de fase completada si lo hubo.
func (s *Session) ApplyProfit(profit float64) (domain.PhaseCompletion, bool) {
	next := domain.Round(s.Bankroll.Bankroll()+profit, 2)
	done, ok := s.Bankroll.Update(next)
	s.Risk.SetBankroll(next, s.Bankroll.Phase())
	return done, ok
}
