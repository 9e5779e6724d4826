package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/valuebot/internal/domain"
)

// OddsProvider obtiene los partidos con cuotas de una competición (Feed A).
type OddsProvider interface {
	// FetchOdds devuelve los eventos con sus mercados ya parseados.
	// Un error significa "sin datos" para el motor, nunca un fallo fatal.
	FetchOdds(ctx context.Context, competition string) ([]domain.OddsEvent, error)
}

// FixtureProvider obtiene el calendario del día con identificadores de equipo (Feed B).
type FixtureProvider interface {
	FetchFixtures(ctx context.Context, day time.Time) ([]domain.Fixture, error)
}

// StatsProvider obtiene las medias de un equipo en una condición.
type StatsProvider interface {
	// FetchTeamStats devuelve domain.ErrNoStats si el equipo no tiene datos usables.
	FetchTeamStats(ctx context.Context, team domain.TeamRef) (domain.TeamStats, error)
}
