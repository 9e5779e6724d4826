// Package risk limita la exposición diaria y frena las rachas de derrotas.
package risk

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alejandrodnm/valuebot/internal/domain"
)

var (
	ErrDailyLimit      = errors.New("daily exposure limit reached")
	ErrMaxSimultaneous = errors.New("max simultaneous bets reached")
	ErrLosingStreak    = errors.New("losing streak limit reached")
)

// Limits son los límites por fase, indexados con Phase.Index().
type Limits struct {
	DailyPct        [5]float64 // fracción del bankroll (0.5 = 50%)
	MaxSimultaneous [5]int
	MaxLosses       [5]int
	ReduceAfter     int     // derrotas seguidas a partir de las que se reduce el stake
	Reduction       float64 // multiplicador aplicado al reducir
}

// DefaultLimits devuelve los límites de referencia.
func DefaultLimits() Limits {
	return Limits{
		DailyPct:        [5]float64{0.50, 0.40, 0.25, 0.15, 0.10},
		MaxSimultaneous: [5]int{5, 4, 3, 2, 2},
		MaxLosses:       [5]int{4, 3, 3, 2, 2},
		ReduceAfter:     2,
		Reduction:       0.5,
	}
}

// Stake es un stake comprometido en un instante.
type Stake struct {
	Amount float64
	At     time.Time
}

// Manager es el estado de riesgo de una sesión (stakes de hoy y racha actual).
// Es seguro para uso concurrente.
type Manager struct {
	limits Limits
	now    func() time.Time

	mu       sync.Mutex
	bankroll float64
	phase    domain.Phase
	stakes   []Stake
	wins     int
	losses   int
	last     domain.BetStatus
}

// Option configura un Manager.
type Option func(*Manager)

// WithClock inyecta el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New crea un Manager para el bankroll y fase dados.
func New(bankroll float64, phase domain.Phase, limits Limits, opts ...Option) *Manager {
	m := &Manager{limits: limits, now: time.Now, bankroll: bankroll, phase: phase}
	for _, o := range opts {
		o(m)
	}
	return m
}

// SetBankroll actualiza bankroll y fase tras una liquidación.
func (m *Manager) SetBankroll(bankroll float64, phase domain.Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bankroll = bankroll
	m.phase = phase
}

// CheckDailyLimit rechaza si lo apostado hoy más newStake supera el tope diario.
func (m *Manager) CheckDailyLimit(newStake float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.pruneLocked()
	limit := m.bankroll * m.limits.DailyPct[m.phase.Index()]
	if total+newStake > limit {
		return fmt.Errorf("%w (%.2f / %.2f)", ErrDailyLimit, total, limit)
	}
	return nil
}

// CheckMaxSimultaneous rechaza si ya hay demasiadas apuestas pendientes.
func (m *Manager) CheckMaxSimultaneous(pending int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit := m.limits.MaxSimultaneous[m.phase.Index()]
	if pending >= limit {
		return fmt.Errorf("%w (%d/%d)", ErrMaxSimultaneous, pending, limit)
	}
	return nil
}

// CheckLosingSequence rechaza nuevas apuestas cuando la racha de derrotas
// llega al tope de la fase.
func (m *Manager) CheckLosingSequence() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit := m.limits.MaxLosses[m.phase.Index()]
	if m.losses >= limit {
		return fmt.Errorf("%w: %d in a row, pause until tomorrow", ErrLosingStreak, m.losses)
	}
	return nil
}

// StakeAdjustment devuelve el multiplicador de stake según la racha.
func (m *Manager) StakeAdjustment() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adjustmentLocked()
}

func (m *Manager) adjustmentLocked() float64 {
	if m.limits.ReduceAfter > 0 && m.losses >= m.limits.ReduceAfter {
		return m.limits.Reduction
	}
	return 1.0
}

// AddStake registra un stake comprometido ahora.
func (m *Manager) AddStake(stake float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stakes = append(m.stakes, Stake{Amount: stake, At: m.now()})
}

// UpdateSequence actualiza la racha. Un cambio de tipo de resultado reinicia
// el contador contrario; void solo rompe la continuidad.
func (m *Manager) UpdateSequence(result domain.BetStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateLocked(result)
}

func (m *Manager) updateLocked(result domain.BetStatus) {
	switch result {
	case domain.BetWon:
		if m.last == domain.BetWon {
			m.wins++
		} else {
			m.wins, m.losses = 1, 0
		}
	case domain.BetLost:
		if m.last == domain.BetLost {
			m.losses++
		} else {
			m.losses, m.wins = 1, 0
		}
	}
	m.last = result
}

// Restore reconstruye el estado desde el historial: stakes comprometidos y
// resultados liquidados en orden cronológico.
func (m *Manager) Restore(stakes []Stake, results []domain.BetStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stakes = append(m.stakes[:0], stakes...)
	m.wins, m.losses, m.last = 0, 0, ""
	for _, r := range results {
		m.updateLocked(r)
	}
}

// Summary devuelve el resumen de riesgo de hoy.
func (m *Manager) Summary() domain.RiskSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.pruneLocked()
	s := domain.RiskSummary{
		DailyExposure:   domain.Round(total, 2),
		DailyLimit:      domain.Round(m.bankroll*m.limits.DailyPct[m.phase.Index()], 2),
		BetsToday:       len(m.stakes),
		Wins:            m.wins,
		Losses:          m.losses,
		StakeAdjustment: m.adjustmentLocked(),
	}
	if m.bankroll > 0 {
		s.DailyExposurePct = domain.Round(total/m.bankroll*100, 2)
	}
	return s
}

// pruneLocked descarta stakes de días UTC anteriores y devuelve el total de hoy.
func (m *Manager) pruneLocked() float64 {
	today := domain.DayKey(m.now())
	kept := m.stakes[:0]
	total := 0.0
	for _, s := range m.stakes {
		if domain.DayKey(s.At) == today {
			kept = append(kept, s)
			total += s.Amount
		}
	}
	m.stakes = kept
	return total
}
