// Package bankroll mapea el bankroll a una fase y calcula el stake con Kelly
// fraccionado acotado por el máximo de la fase.
package bankroll

import (
	"math"
	"sync"

	"github.com/alejandrodnm/valuebot/internal/domain"
)

const (
	kellyFraction              = 0.5
	kellyFractionConsolidation = 0.25
	withdrawShare              = 0.5 // política fija: se retira la mitad al completar fase
)

// Config son los parámetros por fase. Los arrays por fase se indexan con
// Phase.Index(): 0..3 para las fases 1..4 y 4 para consolidación.
type Config struct {
	Targets                [4]float64
	MinEV                  [5]float64
	MaxStakePct            [5]float64
	ConsolidationThreshold float64
}

// DefaultConfig devuelve los valores de referencia.
func DefaultConfig() Config {
	return Config{
		Targets:                [4]float64{1000, 5000, 25000, 100000},
		MinEV:                  [5]float64{8, 9, 10, 12, 12},
		MaxStakePct:            [5]float64{15, 10, 6, 4, 1.5},
		ConsolidationThreshold: 50000,
	}
}

// DeterminePhase es función pura del bankroll. El umbral es cota inferior
// inclusiva: un bankroll exactamente en el umbral pertenece a la fase superior.
// Superar ConsolidationThreshold fuerza la fase terminal.
func DeterminePhase(cfg Config, bankroll float64) domain.Phase {
	if bankroll >= cfg.ConsolidationThreshold {
		return domain.PhaseConsolidation
	}
	for p := domain.Phase4; p > domain.Phase1; p-- {
		if bankroll >= cfg.Targets[p.Index()-1] {
			return p
		}
	}
	return domain.Phase1
}

// Manager mantiene el bankroll de una sesión. Es seguro para uso concurrente.
type Manager struct {
	cfg      Config
	mu       sync.RWMutex
	bankroll float64
	phase    domain.Phase
}

// New crea un Manager con el bankroll inicial.
func New(cfg Config, bankroll float64) *Manager {
	return &Manager{cfg: cfg, bankroll: bankroll, phase: DeterminePhase(cfg, bankroll)}
}

// Bankroll devuelve el bankroll actual.
func (m *Manager) Bankroll() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bankroll
}

// Phase devuelve la fase actual.
func (m *Manager) Phase() domain.Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// MinEV devuelve el EV mínimo de la fase actual.
func (m *Manager) MinEV() float64 {
	return m.cfg.MinEV[m.Phase().Index()]
}

// MaxStakePct devuelve el stake máximo (% del bankroll) de la fase actual.
func (m *Manager) MaxStakePct() float64 {
	return m.cfg.MaxStakePct[m.Phase().Index()]
}

// Info devuelve la foto de la fase actual.
func (m *Manager) Info() domain.PhaseInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.phase.Index()
	info := domain.PhaseInfo{
		Phase:       m.phase,
		Bankroll:    m.bankroll,
		MinEV:       m.cfg.MinEV[i],
		MaxStakePct: m.cfg.MaxStakePct[i],
	}
	if m.phase == domain.PhaseConsolidation {
		info.ProgressPct = 100
		return info
	}
	target := m.cfg.Targets[i]
	info.Target = target
	if target > 0 {
		info.ProgressPct = domain.Round(m.bankroll/target*100, 2)
	}
	info.Remaining = domain.Round(target-m.bankroll, 2)
	return info
}

// Stake calcula el stake con Kelly fraccionado:
//
//	edge      = prob × odds − 1            (≤ 0 → stake 0)
//	kelly_pct = edge / (odds − 1) × f × 100 (f = 0.25 en consolidación, 0.5 si no)
//	stake     = min(kelly_pct, max_stake_pct) / 100 × bankroll
func (m *Manager) Stake(prob, odds float64) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	edge := prob*odds - 1
	if edge <= 0 || odds <= 1 {
		return 0
	}
	fraction := kellyFraction
	if m.phase == domain.PhaseConsolidation {
		fraction = kellyFractionConsolidation
	}
	kellyPct := edge / (odds - 1) * fraction * 100
	pct := math.Min(kellyPct, m.cfg.MaxStakePct[m.phase.Index()])
	return domain.FloorCents(pct / 100 * m.bankroll)
}

// CheckPhaseCompletion indica si el bankroll alcanzó el objetivo de la fase
// actual y cuánto retirar (50% del bankroll). Nunca completa en consolidación.
func (m *Manager) CheckPhaseCompletion() (domain.PhaseCompletion, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return completion(m.cfg, m.phase, m.bankroll)
}

// Update fija el nuevo bankroll y recalcula la fase. Si el nuevo bankroll
// alcanza el objetivo de la fase anterior devuelve el evento de completado.
func (m *Manager) Update(bankroll float64) (domain.PhaseCompletion, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.phase
	m.bankroll = bankroll
	m.phase = DeterminePhase(m.cfg, bankroll)
	return completion(m.cfg, prev, bankroll)
}

func completion(cfg Config, phase domain.Phase, bankroll float64) (domain.PhaseCompletion, bool) {
	if phase == domain.PhaseConsolidation {
		return domain.PhaseCompletion{}, false
	}
	target := cfg.Targets[phase.Index()]
	if bankroll < target {
		return domain.PhaseCompletion{}, false
	}
	withdraw := domain.Round(bankroll*withdrawShare, 2)
	return domain.PhaseCompletion{
		Phase:    phase,
		Bankroll: bankroll,
		Target:   target,
		Withdraw: withdraw,
		Remain:   domain.Round(bankroll-withdraw, 2),
	}, true
}
