package strategy

import (
	"github.com/alejandrodnm/valuebot/internal/domain"
)

// GridironConfig configura el modelo Normal para deportes de marcador alto.
type GridironConfig struct {
	HomeAdvantage float64 // puntos sumados a la expectativa del local
	TotalSD       float64
	MarginSD      float64
}

// DefaultGridironConfig devuelve los valores de referencia (NFL).
func DefaultGridironConfig() GridironConfig {
	return GridironConfig{HomeAdvantage: 2.5, TotalSD: 14, MarginSD: 13.5}
}

// Gridiron modela totales y margen con distribuciones normales.
type Gridiron struct {
	cfg GridironConfig
}

// NewGridiron crea el modelo, completando con defaults los campos vacíos.
func NewGridiron(cfg GridironConfig) *Gridiron {
	def := DefaultGridironConfig()
	if cfg.TotalSD <= 0 {
		cfg.TotalSD = def.TotalSD
	}
	if cfg.MarginSD <= 0 {
		cfg.MarginSD = def.MarginSD
	}
	return &Gridiron{cfg: cfg}
}

// Sport implementa Strategy.
func (g *Gridiron) Sport() domain.Sport { return domain.SportGridiron }

// Totals implementa Strategy con total ~ N(home + ventaja + away, TotalSD).
func (g *Gridiron) Totals(home, away, line float64) (over, under, expected float64) {
	mean := home + g.cfg.HomeAdvantage + away
	under = domain.Round(domain.NormalCDF(line, mean, g.cfg.TotalSD), 4)
	over = domain.Round(1-under, 4)
	return over, under, domain.Round(mean, 2)
}

// Cover implementa Strategy. El local cubre la línea firmada si
// margen + line > 0, con margen ~ N(home + ventaja − away, MarginSD).
func (g *Gridiron) Cover(home, away, line float64) (prob, margin float64) {
	diff := home + g.cfg.HomeAdvantage - away
	p := 1 - domain.NormalCDF(-line, diff, g.cfg.MarginSD)
	return domain.Round(p, 4), domain.Round(diff, 2)
}

// BTTS implementa Strategy. El mercado no existe en gridiron.
func (g *Gridiron) BTTS(_, _ float64) (float64, bool) {
	return 0, false
}

