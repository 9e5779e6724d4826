package scanner

import (
	"fmt"

	"github.com/alejandrodnm/valuebot/internal/domain"
)

// ValidatorConfig contiene los límites duros de una oportunidad.
type ValidatorConfig struct {
	MinOdds        float64
	MaxOdds        float64
	MinProbability float64
	MinStake       float64
}

// DefaultValidatorConfig devuelve cuotas 1.5–3.0, probabilidad ≥ 0.45 y stake ≥ 1.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		MinOdds:        1.5,
		MaxOdds:        3.0,
		MinProbability: 0.45,
		MinStake:       1,
	}
}

// Validator es un filtro puro y sin estado.
type Validator struct {
	cfg ValidatorConfig
}

// NewValidator crea un Validator con la configuración dada.
func NewValidator(cfg ValidatorConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate aplica todos los chequeos sin cortocircuito y devuelve los motivos
// de rechazo. Una lista vacía significa aceptada.
func (v *Validator) Validate(opp domain.Opportunity, info domain.PhaseInfo) []string {
	var reasons []string

	if opp.Odds < v.cfg.MinOdds {
		reasons = append(reasons, fmt.Sprintf("odds too low (%.2f < %.2f)", opp.Odds, v.cfg.MinOdds))
	}
	if opp.Odds > v.cfg.MaxOdds {
		reasons = append(reasons, fmt.Sprintf("odds too high (%.2f > %.2f)", opp.Odds, v.cfg.MaxOdds))
	}
	if opp.Probability < v.cfg.MinProbability {
		reasons = append(reasons, fmt.Sprintf("probability too low (%.1f%%)", opp.Probability*100))
	}
	if opp.EV < info.MinEV {
		reasons = append(reasons, fmt.Sprintf("insufficient EV (%.1f%% < %.1f%%)", opp.EV, info.MinEV))
	}
	if info.Bankroll > 0 {
		// mismo cálculo que bankroll.Manager.Stake para el tope
		limit := domain.FloorCents(info.MaxStakePct / 100 * info.Bankroll)
		if pct := opp.Stake / info.Bankroll * 100; opp.Stake > limit {
			reasons = append(reasons, fmt.Sprintf("stake exceeds phase limit (%.1f%% > %.1f%%)", pct, info.MaxStakePct))
		}
	}
	if opp.Stake < v.cfg.MinStake {
		reasons = append(reasons, fmt.Sprintf("stake too small (%.2f < %.2f)", opp.Stake, v.cfg.MinStake))
	}
	return reasons
}
