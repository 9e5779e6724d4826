package feeds_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alejandrodnm/valuebot/internal/adapters/cache"
	"github.com/alejandrodnm/valuebot/internal/adapters/feeds"
	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapping_OddsMarketsAndPrices(t *testing.T) {
	fixture := `[{
		"id": 77,
		"sport": "soccer",
		"home_team": " Arsenal ",
		"away_team": "Chelsea",
		"commence_time": "2026-03-01T15:00:00Z",
		"markets": {
			"over_2.5":    {"odd": 2.10, "bookmaker": "pinnacle"},
			"under_2.5":   1.80,
			"spread_-0.5": {"price": 2.05, "bookmaker": "bet365"},
			"btts_yes":    1.95,
			"btts_no":     1.90,
			"corners_9.5": 1.85,
			"over_3.5":    1.0
		}
	}]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/odds", r.URL.Path)
		assert.Equal(t, "premier_league", r.URL.Query().Get("competition"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	client, err := feeds.NewOddsClient(srv.URL, "k", fastOpts()...)
	require.NoError(t, err)

	events, err := client.FetchOdds(context.Background(), "premier_league")
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "77", ev.ID)
	assert.Equal(t, "Arsenal", ev.Home)
	assert.Equal(t, "premier_league", ev.Competition, "hereda la competición pedida")
	assert.Equal(t, domain.SportSoccer, ev.Sport)

	// btts_no, corners y cuotas <= 1 se descartan; orden por key
	require.Len(t, ev.Prices, 4)
	assert.Equal(t, domain.BTTS(), ev.Prices[0].Market)
	assert.Equal(t, domain.Over(2.5), ev.Prices[1].Market)
	assert.Equal(t, "pinnacle", ev.Prices[1].Bookmaker)
	assert.Equal(t, domain.Handicap(-0.5), ev.Prices[2].Market)
	assert.InDelta(t, 2.05, ev.Prices[2].Odds, 0.0001)
	assert.Equal(t, domain.Under(2.5), ev.Prices[3].Market)
	assert.Empty(t, ev.Prices[3].Bookmaker)
}

func TestMapping_FixturesFilterFinishedAndCache(t *testing.T) {
	fixture := `{"response": [
		{"fixture": {"id": 1, "date": "2026-03-01T15:00:00+00:00", "status": {"short": "NS"}},
		 "league": {"id": 39, "name": "Premier League"},
		 "teams": {"home": {"id": 42, "name": "Arsenal"}, "away": {"id": 49, "name": "Chelsea"}}},
		{"fixture": {"id": 2, "date": "2026-03-01T12:00:00+00:00", "status": {"short": "FT"}},
		 "league": {"id": 39, "name": "Premier League"},
		 "teams": {"home": {"id": 40, "name": "Liverpool"}, "away": {"id": 50, "name": "Everton"}}}
	]}`

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "2026-03-01", r.URL.Query().Get("date"))
		assert.Equal(t, "k", r.Header.Get("x-apisports-key"))
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	kv := cache.NewMemoryStore()
	client, err := feeds.NewFixturesClient(srv.URL, "k", kv, fastOpts()...)
	require.NoError(t, err)

	day := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fixtures, err := client.FetchFixtures(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, "1", fixtures[0].ID)
	assert.Equal(t, "42", fixtures[0].HomeTeamID)
	assert.Equal(t, "49", fixtures[0].AwayTeamID)

	// Segunda llamada sale del cache
	again, err := client.FetchFixtures(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, fixtures, again)
	assert.Equal(t, 1, calls)
}
