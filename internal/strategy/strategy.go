package strategy

import (
	"github.com/alejandrodnm/valuebot/internal/domain"
)

// Strategy define el modelo de probabilidad de un deporte. Recibe las lambdas
// ya mezcladas (ataque propio con defensa rival) de cada lado.
type Strategy interface {
	// Sport devuelve el deporte que modela la estrategia.
	Sport() domain.Sport

	// Totals devuelve P(over), P(under) para la línea y el total esperado.
	// over + under == 1 tras redondear a 4 decimales.
	Totals(home, away, line float64) (over, under, expected float64)

	// Cover devuelve la probabilidad de que el local cubra el handicap y el
	// margen esperado usado para calcularla.
	Cover(home, away, line float64) (prob, margin float64)

	// BTTS devuelve P(ambos marcan). ok=false si el deporte no tiene el mercado.
	BTTS(home, away float64) (prob float64, ok bool)
}

// Registry mantiene las estrategias disponibles indexadas por deporte.
type Registry map[domain.Sport]Strategy

// NewRegistry crea un registry vacío.
func NewRegistry() Registry {
	return make(Registry)
}

// DefaultRegistry registra fútbol (Poisson) y gridiron (Normal) con sus valores por defecto.
func DefaultRegistry() Registry {
	r := NewRegistry()
	r.Register(NewSoccer(DefaultSoccerConfig()))
	r.Register(NewGridiron(DefaultGridironConfig()))
	return r
}

// Register añade una estrategia al registry.
func (r Registry) Register(s Strategy) {
	r[s.Sport()] = s
}

// Get devuelve la estrategia del deporte. Los deportes desconocidos (o vacíos)
// usan el modelo de fútbol si está registrado.
func (r Registry) Get(sport domain.Sport) (Strategy, bool) {
	if s, ok := r[sport]; ok {
		return s, true
	}
	s, ok := r[domain.SportSoccer]
	return s, ok
}
