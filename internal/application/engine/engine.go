// Package engine es la capa de aplicación: construye la sesión de cada
// llamada y coordina pipeline y ledger. CLI y API hablan solo con Engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alejandrodnm/valuebot/internal/bankroll"
	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/ledger"
	"github.com/alejandrodnm/valuebot/internal/ports"
	"github.com/alejandrodnm/valuebot/internal/risk"
	"github.com/alejandrodnm/valuebot/internal/session"
)

var (
	// ErrNoSuchPick se devuelve cuando el índice pedido no existe en el reporte.
	ErrNoSuchPick = errors.New("no such opportunity in today's report")
	// ErrInvalidRequest marca una apuesta manual mal formada.
	ErrInvalidRequest = errors.New("invalid bet request")
)

// ScannerService es la interfaz mínima que el engine necesita del pipeline.
// Desacopla Engine de *scanner.Scanner concreto.
type ScannerService interface {
	RunOnce(ctx context.Context, sess *session.Session, force bool) (domain.Report, error)
	Run(ctx context.Context, sess *session.Session, force bool) (domain.Report, error)
}

// Config agrupa lo necesario para construir sesiones.
type Config struct {
	Bankroll        bankroll.Config
	Limits          risk.Limits
	DefaultBankroll float64
}

// Engine es la fachada de casos de uso.
type Engine struct {
	cfg     Config
	scanner ScannerService
	ledger  *ledger.Ledger
	store   ports.BetStore
	now     func() time.Time

	// mu serializa las escrituras: restaurar la sesión, chequear riesgo e
	// insertar/liquidar es una sola sección crítica.
	mu sync.Mutex
}

// Option configura el Engine.
type Option func(*Engine)

// WithClock inyecta el reloj usado para sesiones (tests).
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// New crea el Engine.
func New(cfg Config, scanner ScannerService, store ports.BetStore, observer ports.Observer, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		scanner: scanner,
		ledger:  ledger.New(store, observer),
		store:   store,
		now:     time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Session crea una sesión nueva para el bankroll dado (<= 0 usa el de config)
// y reconstruye su estado de riesgo desde el historial.
func (e *Engine) Session(ctx context.Context, amount float64) (*session.Session, error) {
	if amount <= 0 {
		amount = e.cfg.DefaultBankroll
	}
	if amount <= 0 {
		return nil, fmt.Errorf("engine.Session: bankroll must be positive")
	}
	sess := session.New(e.cfg.Bankroll, e.cfg.Limits, amount, risk.WithClock(e.now))
	if err := sess.Restore(ctx, e.store, e.now()); err != nil {
		return nil, fmt.Errorf("engine.Session: %w", err)
	}
	return sess, nil
}

// Today ejecuta (o lee de cache) el pipeline del día sin notificar.
func (e *Engine) Today(ctx context.Context, amount float64, force bool) (domain.Report, error) {
	sess, err := e.Session(ctx, amount)
	if err != nil {
		return domain.Report{}, err
	}
	return e.scanner.RunOnce(ctx, sess, force)
}

// Report ejecuta el pipeline y lo presenta con el notifier del scanner.
func (e *Engine) Report(ctx context.Context, amount float64, force bool) (domain.Report, error) {
	sess, err := e.Session(ctx, amount)
	if err != nil {
		return domain.Report{}, err
	}
	return e.scanner.Run(ctx, sess, force)
}

// Pick elige qué registrar del reporte del día: una oportunidad o una
// combinada, ambas 1-based.
type Pick struct {
	Opportunity int
	Multiple    int
}

// RegisterPick registra la oportunidad o combinada elegida del reporte de hoy.
func (e *Engine) RegisterPick(ctx context.Context, amount float64, pick Pick) (domain.Bet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.Session(ctx, amount)
	if err != nil {
		return domain.Bet{}, err
	}
	report, err := e.scanner.RunOnce(ctx, sess, false)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("engine.RegisterPick: %w", err)
	}

	switch {
	case pick.Multiple > 0:
		if pick.Multiple > len(report.Multiples) {
			return domain.Bet{}, fmt.Errorf("engine.RegisterPick: multiple %d: %w", pick.Multiple, ErrNoSuchPick)
		}
		return e.ledger.RegisterMultiple(ctx, sess, report.Multiples[pick.Multiple-1])
	case pick.Opportunity > 0:
		if pick.Opportunity > len(report.Opportunities) {
			return domain.Bet{}, fmt.Errorf("engine.RegisterPick: opportunity %d: %w", pick.Opportunity, ErrNoSuchPick)
		}
		return e.ledger.Register(ctx, sess, report.Opportunities[pick.Opportunity-1])
	default:
		return domain.Bet{}, fmt.Errorf("engine.RegisterPick: %w", ErrNoSuchPick)
	}
}

// BetRequest es una apuesta manual: mercado por key y cuota tomada por el usuario.
type BetRequest struct {
	Match       string  `json:"match"`
	Competition string  `json:"competition"`
	Market      string  `json:"market"` // key: over_2.5, spread_-0.5, btts_yes
	Odds        float64 `json:"odds"`
	Probability float64 `json:"probability"`
	Stake       float64 `json:"stake,omitempty"` // 0 = stake de Kelly de la fase
}

// Register registra una apuesta manual. Sin stake explícito se usa el de Kelly
// con el ajuste por racha.
func (e *Engine) Register(ctx context.Context, amount float64, req BetRequest) (domain.Bet, error) {
	market, ok := domain.ParseMarketKey(req.Market)
	if !ok {
		return domain.Bet{}, fmt.Errorf("engine.Register: %w: unknown market %q", ErrInvalidRequest, req.Market)
	}
	if req.Match == "" || req.Odds <= 1 {
		return domain.Bet{}, fmt.Errorf("engine.Register: %w: match and odds > 1 are required", ErrInvalidRequest)
	}
	if req.Probability < 0 || req.Probability > 1 {
		return domain.Bet{}, fmt.Errorf("engine.Register: %w: probability must be in [0,1]", ErrInvalidRequest)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.Session(ctx, amount)
	if err != nil {
		return domain.Bet{}, err
	}

	stake := req.Stake
	if stake <= 0 {
		stake = domain.FloorCents(sess.Bankroll.Stake(req.Probability, req.Odds) * sess.Risk.StakeAdjustment())
	}
	if stake <= 0 {
		return domain.Bet{}, fmt.Errorf("engine.Register: %w: no positive edge at odds %.2f", ErrInvalidRequest, req.Odds)
	}
	return e.ledger.Register(ctx, sess, domain.Opportunity{
		Match:       req.Match,
		Competition: req.Competition,
		Market:      market,
		Odds:        req.Odds,
		Probability: req.Probability,
		EV:          domain.ExpectedValue(req.Probability, req.Odds),
		Stake:       stake,
		Phase:       sess.Bankroll.Phase(),
		ScannedAt:   e.now(),
	})
}

// Settle liquida una apuesta y devuelve el bankroll resultante.
func (e *Engine) Settle(ctx context.Context, amount float64, id string, result domain.BetStatus) (ledger.Settlement, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.Session(ctx, amount)
	if err != nil {
		return ledger.Settlement{}, err
	}
	return e.ledger.Settle(ctx, sess, id, result)
}

// Stats devuelve el agregado del historial; phase nil = todas.
func (e *Engine) Stats(ctx context.Context, phase *domain.Phase) (domain.BetStats, error) {
	return e.ledger.Stats(ctx, phase)
}

// History devuelve las últimas n apuestas.
func (e *Engine) History(ctx context.Context, n int) ([]domain.Bet, error) {
	return e.ledger.Recent(ctx, n)
}

// Pending devuelve las apuestas abiertas.
func (e *Engine) Pending(ctx context.Context) ([]domain.Bet, error) {
	return e.ledger.Pending(ctx)
}
