package feeds_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alejandrodnm/valuebot/internal/adapters/cache"
	"github.com/alejandrodnm/valuebot/internal/adapters/feeds"
	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const teamsFixture = `{"teams": [
	{"id": 57, "name": "Arsenal FC", "shortName": "Arsenal"},
	{"id": 61, "name": "Chelsea FC", "shortName": "Chelsea"},
	{"id": 66, "name": "Manchester United FC", "shortName": "Man United"}
]}`

// Partidos en casa de Arsenal, desordenados: 3-1, 0-0, 2-1, 1-2
const arsenalHomeFixture = `{"matches": [
	{"utcDate": "2026-02-01T15:00:00Z", "score": {"fullTime": {"home": 3, "away": 1}}},
	{"utcDate": "2026-01-10T15:00:00Z", "score": {"fullTime": {"home": 0, "away": 0}}},
	{"utcDate": "2026-02-20T15:00:00Z", "score": {"fullTime": {"home": 2, "away": 1}}},
	{"utcDate": "2025-12-20T15:00:00Z", "score": {"fullTime": {"home": 1, "away": 2}}},
	{"utcDate": "2026-02-25T15:00:00Z", "score": {"fullTime": {"home": null, "away": null}}}
]}`

func newStatsServer(t *testing.T, calls map[string]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls[r.URL.Path]++
		assert.Equal(t, "k", r.Header.Get("X-Auth-Token"))
		switch r.URL.Path {
		case "/competitions/PL/teams":
			w.Write([]byte(teamsFixture))
		case "/teams/57/matches":
			assert.Equal(t, "HOME", r.URL.Query().Get("venue"))
			assert.Equal(t, "FINISHED", r.URL.Query().Get("status"))
			w.Write([]byte(arsenalHomeFixture))
		case "/teams/61/matches":
			w.Write([]byte(`{"matches": []}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newStatsClient(t *testing.T, base string) *feeds.StatsClient {
	t.Helper()
	client, err := feeds.NewStatsClient(feeds.StatsConfig{
		BaseURL:          base,
		APIKey:           "k",
		CompetitionCodes: map[string]string{"premier_league": "PL"},
		FormWindow:       3,
	}, cache.NewMemoryStore(), fastOpts()...)
	require.NoError(t, err)
	return client
}

func TestStatsClient_FetchTeamStats(t *testing.T) {
	calls := map[string]int{}
	srv := newStatsServer(t, calls)
	defer srv.Close()
	client := newStatsClient(t, srv.URL)

	ref := domain.TeamRef{Name: "Arsenal", Competition: "premier_league", Venue: domain.VenueHome}
	st, err := client.FetchTeamStats(context.Background(), ref)
	require.NoError(t, err)

	assert.Equal(t, "57", st.TeamID)
	assert.Equal(t, domain.VenueHome, st.Venue)
	assert.InDelta(t, 1.5, st.AvgScored, 0.001)   // 6 / 4
	assert.InDelta(t, 1.0, st.AvgConceded, 0.001) // 4 / 4
	// Últimos 3, del más antiguo al más reciente: 0-0, 3-1, 2-1
	assert.Equal(t, []domain.Outcome{domain.Draw, domain.Win, domain.Win}, st.Form)

	// Segunda llamada: id y stats salen del cache
	_, err = client.FetchTeamStats(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 1, calls["/competitions/PL/teams"])
	assert.Equal(t, 1, calls["/teams/57/matches"])
}

func TestStatsClient_NoStats(t *testing.T) {
	calls := map[string]int{}
	srv := newStatsServer(t, calls)
	defer srv.Close()
	client := newStatsClient(t, srv.URL)
	ctx := context.Background()

	// Sin partidos jugados
	_, err := client.FetchTeamStats(ctx, domain.TeamRef{Name: "Chelsea", Competition: "premier_league", Venue: domain.VenueAway})
	assert.ErrorIs(t, err, domain.ErrNoStats)

	// Equipo que no está en la competición
	_, err = client.FetchTeamStats(ctx, domain.TeamRef{Name: "Real Madrid", Competition: "premier_league", Venue: domain.VenueHome})
	assert.ErrorIs(t, err, domain.ErrNoStats)

	// Competición desconocida para el proveedor
	_, err = client.FetchTeamStats(ctx, domain.TeamRef{Name: "Arsenal", Competition: "serie_z", Venue: domain.VenueHome})
	assert.ErrorIs(t, err, domain.ErrNoStats)
}
