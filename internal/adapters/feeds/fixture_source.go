package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/matcher"
)

// fixtureAnchor es el instante de referencia de los ficheros locales: los
// kickoffs se desplazan para que fixtureAnchor coincida con la hora actual.
var fixtureAnchor = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// FixtureSource sirve los tres feeds desde ficheros JSON locales (modo
// -dry-run). Usa el mismo mapeo que los clientes HTTP.
//
//	odds.json      {"<competition>": [<evento del feed de cuotas>]}
//	fixtures.json  respuesta de api-sports /fixtures
//	stats.json     [{"team", "competition", "home": {...}, "away": {...}}]
type FixtureSource struct {
	dir   string
	shift time.Duration
	form  int
}

type fixtureStats struct {
	Team        string      `json:"team"`
	Competition string      `json:"competition"`
	Home        cachedStats `json:"home"`
	Away        cachedStats `json:"away"`
}

// NewFixtureSource crea la fuente local. now fija el desplazamiento de kickoffs.
func NewFixtureSource(dir string, now time.Time) *FixtureSource {
	return &FixtureSource{
		dir:   dir,
		shift: now.UTC().Truncate(time.Hour).Sub(fixtureAnchor),
		form:  5,
	}
}

// FetchOdds implementa ports.OddsProvider.
func (f *FixtureSource) FetchOdds(_ context.Context, competition string) ([]domain.OddsEvent, error) {
	var byComp map[string][]oddsEvent
	if err := f.load("odds.json", &byComp); err != nil {
		return nil, err
	}
	events := make([]domain.OddsEvent, 0, len(byComp[competition]))
	for _, ev := range byComp[competition] {
		mapped := mapOddsEvent(ev, competition)
		mapped.Kickoff = f.rebase(mapped.Kickoff)
		events = append(events, mapped)
	}
	return events, nil
}

// FetchFixtures implementa ports.FixtureProvider. Ignora day: el fichero es el día.
func (f *FixtureSource) FetchFixtures(_ context.Context, _ time.Time) ([]domain.Fixture, error) {
	var resp fixturesResponse
	if err := f.load("fixtures.json", &resp); err != nil {
		return nil, err
	}
	fixtures := mapFixtures(resp.Response)
	for i := range fixtures {
		fixtures[i].Kickoff = f.rebase(fixtures[i].Kickoff)
	}
	return fixtures, nil
}

// FetchTeamStats implementa ports.StatsProvider con búsqueda por nombre normalizado.
func (f *FixtureSource) FetchTeamStats(_ context.Context, team domain.TeamRef) (domain.TeamStats, error) {
	var all []fixtureStats
	if err := f.load("stats.json", &all); err != nil {
		return domain.TeamStats{}, err
	}
	want := matcher.Normalize(team.Name)
	for _, s := range all {
		if matcher.Normalize(s.Team) != want {
			continue
		}
		if s.Competition != "" && team.Competition != "" && s.Competition != team.Competition {
			continue
		}
		cs := s.Home
		if team.Venue == domain.VenueAway {
			cs = s.Away
		}
		if cs.TeamID == "" {
			cs.TeamID = team.ID
		}
		if len(cs.Form) > f.form {
			cs.Form = cs.Form[len(cs.Form)-f.form:]
		}
		return cs.toDomain(team.Venue), nil
	}
	return domain.TeamStats{}, fmt.Errorf("feeds.FixtureSource: %s: %w", team.Name, domain.ErrNoStats)
}

func (f *FixtureSource) load(name string, out any) error {
	b, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return fmt.Errorf("feeds.FixtureSource: read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("feeds.FixtureSource: decode %s: %w", name, err)
	}
	return nil
}

func (f *FixtureSource) rebase(kickoff string) string {
	t, ok := matcher.ParseTime(strings.TrimSpace(kickoff))
	if !ok {
		return kickoff
	}
	return t.Add(f.shift).UTC().Format(time.RFC3339)
}
