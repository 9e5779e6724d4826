// Package ledger registra y liquida apuestas, manteniendo sincronizados el
// historial persistido, el estado de riesgo y el bankroll de la sesión.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/ports"
	"github.com/alejandrodnm/valuebot/internal/session"
)

// Ledger opera sobre un BetStore en nombre de una sesión.
type Ledger struct {
	store    ports.BetStore
	observer ports.Observer
	now      func() time.Time
}

// New crea un Ledger. observer puede ser nil.
func New(store ports.BetStore, observer ports.Observer) *Ledger {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &Ledger{store: store, observer: observer, now: time.Now}
}

// Settlement es el resultado de liquidar una apuesta.
type Settlement struct {
	Bet        domain.Bet              `json:"bet"`
	Bankroll   float64                 `json:"bankroll"`
	Phase      domain.Phase            `json:"phase"`
	Completion *domain.PhaseCompletion `json:"phase_completion,omitempty"`
}

// Register convierte una oportunidad en una apuesta pending tras pasar los
// chequeos de racha, simultáneas y límite diario.
func (l *Ledger) Register(ctx context.Context, sess *session.Session, opp domain.Opportunity) (domain.Bet, error) {
	bet := domain.Bet{
		Match:       opp.Match,
		Competition: opp.Competition,
		Market:      opp.MarketLabel(),
		Odds:        opp.Odds,
		Stake:       opp.Stake,
		Probability: opp.Probability,
		EV:          opp.EV,
		Legs:        1,
	}
	return l.register(ctx, sess, bet)
}

// RegisterMultiple guarda una combinada como una sola apuesta con la cuota combinada.
func (l *Ledger) RegisterMultiple(ctx context.Context, sess *session.Session, m domain.MultipleCandidate) (domain.Bet, error) {
	markets := make([]string, 0, len(m.Legs))
	comps := make([]string, 0, len(m.Legs))
	for _, leg := range m.Legs {
		markets = append(markets, leg.MarketLabel())
		comps = append(comps, leg.Competition)
	}
	bet := domain.Bet{
		Match:       m.Label(),
		Competition: strings.Join(comps, " + "),
		Market:      strings.Join(markets, " + "),
		Odds:        m.Odds,
		Stake:       m.Stake,
		Probability: m.Probability,
		EV:          m.EV,
		Legs:        len(m.Legs),
	}
	return l.register(ctx, sess, bet)
}

func (l *Ledger) register(ctx context.Context, sess *session.Session, bet domain.Bet) (domain.Bet, error) {
	if bet.Stake <= 0 {
		return domain.Bet{}, fmt.Errorf("ledger.Register: stake must be positive, got %.2f", bet.Stake)
	}
	if err := sess.Risk.CheckLosingSequence(); err != nil {
		return domain.Bet{}, fmt.Errorf("ledger.Register: %w", err)
	}
	pending, err := l.store.ListPending(ctx)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("ledger.Register: list pending: %w", err)
	}
	if err := sess.Risk.CheckMaxSimultaneous(len(pending)); err != nil {
		return domain.Bet{}, fmt.Errorf("ledger.Register: %w", err)
	}
	if err := sess.Risk.CheckDailyLimit(bet.Stake); err != nil {
		return domain.Bet{}, fmt.Errorf("ledger.Register: %w", err)
	}

	bet.ID = uuid.NewString()
	bet.Phase = sess.Bankroll.Phase()
	bet.Status = domain.BetPending
	bet.CreatedAt = l.now().UTC()

	if err := l.store.Insert(ctx, bet); err != nil {
		return domain.Bet{}, fmt.Errorf("ledger.Register: insert: %w", err)
	}
	sess.Risk.AddStake(bet.Stake)
	l.observer.BetRegistered(bet)

	slog.Info("bet registered",
		"id", bet.ID,
		"match", bet.Match,
		"market", bet.Market,
		"odds", bet.Odds,
		"stake", bet.Stake,
	)
	return bet, nil
}

// Settle liquida una apuesta pending. Los estados terminales son finales.
func (l *Ledger) Settle(ctx context.Context, sess *session.Session, id string, result domain.BetStatus) (Settlement, error) {
	bet, err := l.store.Get(ctx, id)
	if err != nil {
		return Settlement{}, fmt.Errorf("ledger.Settle: %w", err)
	}
	if err := bet.Settle(result, l.now()); err != nil {
		return Settlement{}, fmt.Errorf("ledger.Settle: %w", err)
	}
	if err := l.store.Settle(ctx, bet.ID, bet.Status, bet.Profit, *bet.ClosedAt); err != nil {
		return Settlement{}, fmt.Errorf("ledger.Settle: update: %w", err)
	}

	sess.Risk.UpdateSequence(bet.Status)
	out := Settlement{Bet: bet}
	if done, ok := sess.ApplyProfit(bet.Profit); ok {
		out.Completion = &done
		slog.Info("phase target reached",
			"phase", done.Phase.String(),
			"bankroll", done.Bankroll,
			"withdraw", done.Withdraw,
		)
	}
	out.Bankroll = sess.Bankroll.Bankroll()
	out.Phase = sess.Bankroll.Phase()
	l.observer.BetSettled(bet)

	slog.Info("bet settled", "id", bet.ID, "status", bet.Status, "profit", bet.Profit)
	return out, nil
}

// Stats devuelve el agregado del historial; phase nil = todas las fases.
func (l *Ledger) Stats(ctx context.Context, phase *domain.Phase) (domain.BetStats, error) {
	s, err := l.store.Stats(ctx, phase)
	if err != nil {
		return domain.BetStats{}, fmt.Errorf("ledger.Stats: %w", err)
	}
	return s, nil
}

// Recent devuelve las últimas n apuestas.
func (l *Ledger) Recent(ctx context.Context, n int) ([]domain.Bet, error) {
	bets, err := l.store.ListRecent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("ledger.Recent: %w", err)
	}
	return bets, nil
}

// Pending devuelve las apuestas sin liquidar.
func (l *Ledger) Pending(ctx context.Context) ([]domain.Bet, error) {
	bets, err := l.store.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger.Pending: %w", err)
	}
	return bets, nil
}
