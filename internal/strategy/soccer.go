package strategy

import (
	"math"

	"github.com/alejandrodnm/valuebot/internal/domain"
)

// HandicapStep es un escalón de la función margen → probabilidad de cubrir:
// si margin > Above, la probabilidad es Prob.
type HandicapStep struct {
	Above float64 `yaml:"above"`
	Prob  float64 `yaml:"prob"`
}

// SoccerConfig configura el modelo Poisson.
type SoccerConfig struct {
	// HandicapSteps ordenados de mayor a menor Above.
	HandicapSteps []HandicapStep
	// HandicapFloor es la probabilidad si ningún escalón aplica.
	HandicapFloor float64
}

// DefaultHandicapSteps son los escalones de referencia.
func DefaultHandicapSteps() []HandicapStep {
	return []HandicapStep{
		{Above: 1.5, Prob: 0.75},
		{Above: 0.5, Prob: 0.65},
		{Above: -0.5, Prob: 0.55},
		{Above: -1.5, Prob: 0.45},
	}
}

// DefaultSoccerConfig devuelve la configuración por defecto.
func DefaultSoccerConfig() SoccerConfig {
	return SoccerConfig{
		HandicapSteps: DefaultHandicapSteps(),
		HandicapFloor: 0.35,
	}
}

// Soccer modela deportes de marcador bajo con una Poisson por lado.
type Soccer struct {
	cfg SoccerConfig
}

// NewSoccer crea el modelo. Si no hay escalones usa los de referencia.
func NewSoccer(cfg SoccerConfig) *Soccer {
	if len(cfg.HandicapSteps) == 0 {
		cfg.HandicapSteps = DefaultHandicapSteps()
		if cfg.HandicapFloor == 0 {
			cfg.HandicapFloor = 0.35
		}
	}
	return &Soccer{cfg: cfg}
}

// Sport implementa Strategy.
func (s *Soccer) Sport() domain.Sport { return domain.SportSoccer }

// Totals implementa Strategy. El total de goles es Poisson(home+away):
// P(under) = CDF(floor(line)).
func (s *Soccer) Totals(home, away, line float64) (over, under, expected float64) {
	mean := home + away
	under = domain.Round(domain.PoissonCDF(int(math.Floor(line)), mean), 4)
	over = domain.Round(1-under, 4)
	return over, under, domain.Round(mean, 2)
}

// Cover implementa Strategy. El margen (diferencia esperada menos la línea)
// pasa por la función escalonada configurada.
func (s *Soccer) Cover(home, away, line float64) (prob, margin float64) {
	diff := home - away
	m := diff - line
	for _, step := range s.cfg.HandicapSteps {
		if m > step.Above {
			return step.Prob, domain.Round(diff, 2)
		}
	}
	return s.cfg.HandicapFloor, domain.Round(diff, 2)
}

// BTTS implementa Strategy: (1 − P(home=0)) × (1 − P(away=0)).
func (s *Soccer) BTTS(home, away float64) (float64, bool) {
	p := (1 - domain.PoissonPMF(0, home)) * (1 - domain.PoissonPMF(0, away))
	return domain.Round(p, 4), true
}
