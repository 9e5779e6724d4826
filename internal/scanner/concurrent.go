package scanner

// concurrent.go: worker pool para pedir estadísticas de varios partidos en paralelo.
// El rate limiting lo aplica el cliente del feed; aquí solo se acota la concurrencia.

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/ports"
)

// matchStats son las estadísticas de ambos lados de un partido.
type matchStats struct {
	home domain.TeamStats
	away domain.TeamStats
	ok   bool
}

// fetchStatsConcurrent pide las stats de local y visitante de cada registro.
// El resultado i corresponde a records[i]; ok=false si falta cualquiera de los lados.
//
// Si workers <= 0 usa runtime.NumCPU().
func fetchStatsConcurrent(
	ctx context.Context,
	provider ports.StatsProvider,
	observer ports.Observer,
	records []domain.MatchRecord,
	workers int,
) []matchStats {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]matchStats, len(records))
	workCh := make(chan int, len(records))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				results[idx] = fetchPair(ctx, provider, observer, records[idx])
			}
		}()
	}

	for i := range records {
		workCh <- i
	}
	close(workCh)
	wg.Wait()

	return results
}

func fetchPair(ctx context.Context, provider ports.StatsProvider, observer ports.Observer, rec domain.MatchRecord) matchStats {
	home, err := provider.FetchTeamStats(ctx, domain.TeamRef{
		ID: rec.HomeTeamID, Name: rec.Home, Competition: rec.Competition, Venue: domain.VenueHome,
	})
	if err != nil {
		logStatsError(observer, rec, rec.Home, err)
		return matchStats{}
	}
	away, err := provider.FetchTeamStats(ctx, domain.TeamRef{
		ID: rec.AwayTeamID, Name: rec.Away, Competition: rec.Competition, Venue: domain.VenueAway,
	})
	if err != nil {
		logStatsError(observer, rec, rec.Away, err)
		return matchStats{}
	}
	return matchStats{home: home, away: away, ok: true}
}

func logStatsError(observer ports.Observer, rec domain.MatchRecord, team string, err error) {
	if errors.Is(err, domain.ErrNoStats) {
		slog.Debug("missing stats, skipping match", "match", rec.Label(), "team", team)
		observer.StatsMissing()
		return
	}
	slog.Warn("stats fetch failed, skipping match", "match", rec.Label(), "team", team, "err", err)
	observer.FeedError("stats")
}
