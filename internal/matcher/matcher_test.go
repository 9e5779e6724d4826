package matcher_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/matcher"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Manchester United FC": "manchester united",
		"Man Utd":              "manchester united",
		"Man City":             "manchester city",
		"Leicester City":       "leicester",
		"Atlético Madrid":      "atletico madrid",
		"Tottenham Hotspur":    "tottenham",
		"Spurs":                "tottenham",
		"Paris Saint-Germain":  "paris saint germain",
		"  A.F.C. Bournemouth ": "bournemouth",
		"FC":                   "fc",
	}
	for in, want := range tests {
		assert.Equal(t, want, matcher.Normalize(in), in)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, matcher.Similarity("Arsenal FC", "arsenal"))
	assert.Equal(t, 1.0, matcher.Similarity("Man Utd", "Manchester United"))
	assert.Less(t, matcher.Similarity("Manchester United", "Manchester City"), 1.0)

	assert.Equal(t, 0.75, matcher.Ratio("abcd", "abce"))
	assert.Equal(t, 1.0, matcher.Ratio("", ""))
	assert.Equal(t, 0.0, matcher.Ratio("abc", "xyz"))
	assert.InDelta(t, 12.0/13.0, matcher.Ratio("chelsea", "chelse"), 1e-9)
}

func event() domain.OddsEvent {
	return domain.OddsEvent{
		ID: "o1", Home: "Arsenal", Away: "Chelsea",
		Competition: "premier_league", Kickoff: "2026-03-01T15:00:00Z",
	}
}

func TestMatch_Policy(t *testing.T) {
	candidates := []domain.Fixture{
		{ID: "f1", Home: "Arsenal", Away: "Chelse", Kickoff: "2026-03-01T15:30:00Z"},
		{ID: "f2", Home: "Arsenal FC", Away: "Chelsea FC", Kickoff: "2026-03-01 15:00:00"},
	}

	best := matcher.New(matcher.DefaultConfig())
	fx, score, ok := best.Match(event(), candidates)
	require.True(t, ok)
	assert.Equal(t, "f2", fx.ID)
	assert.Equal(t, 1.0, score.Combined)

	cfg := matcher.DefaultConfig()
	cfg.Policy = matcher.PolicyFirst
	fx, _, ok = matcher.New(cfg).Match(event(), candidates)
	require.True(t, ok)
	assert.Equal(t, "f1", fx.ID)
}

func TestMatch_TimeTolerance(t *testing.T) {
	m := matcher.New(matcher.DefaultConfig())

	_, _, ok := m.Match(event(), []domain.Fixture{
		{ID: "late", Home: "Arsenal", Away: "Chelsea", Kickoff: "2026-03-01T19:30:00Z"},
	})
	assert.False(t, ok, "identical names 4.5h apart must not match")

	_, _, ok = m.Match(event(), []domain.Fixture{
		{ID: "edge", Home: "Arsenal", Away: "Chelsea", Kickoff: "2026-03-01T18:00:00Z"},
	})
	assert.True(t, ok)

	_, _, ok = m.Match(event(), []domain.Fixture{
		{ID: "tbd", Home: "Arsenal", Away: "Chelsea", Kickoff: "TBD"},
	})
	assert.True(t, ok, "unparseable kickoff skips the time check")
}

func TestMatch_NameThreshold(t *testing.T) {
	m := matcher.New(matcher.DefaultConfig())
	_, _, ok := m.Match(event(), []domain.Fixture{
		{ID: "f", Home: "Arsenal", Away: "Brentford", Kickoff: "2026-03-01T15:00:00Z"},
	})
	assert.False(t, ok, "both sides must clear the threshold")
}

func TestReconcile(t *testing.T) {
	events := []domain.OddsEvent{
		event(),
		{ID: "o2", Home: "Leeds", Away: "Burnley", Kickoff: "2026-03-01T17:30:00Z",
			Prices: []domain.Price{{Market: domain.Over(2.5), Odds: 2.0}}},
	}
	events[0].Competition = ""
	fixtures := []domain.Fixture{{
		ID: "f1", Home: "Arsenal FC", Away: "Chelsea FC", HomeTeamID: "57", AwayTeamID: "61",
		Competition: "premier_league", Kickoff: "2026-03-01T15:00:00Z",
	}}

	recs := matcher.New(matcher.DefaultConfig()).Reconcile(events, fixtures)
	require.Len(t, recs, 2)
	assert.True(t, recs[0].Matched())
	assert.Equal(t, "57", recs[0].HomeTeamID)
	assert.Equal(t, "61", recs[0].AwayTeamID)
	assert.Equal(t, "premier_league", recs[0].Competition)
	assert.False(t, recs[1].Matched())
	assert.Len(t, recs[1].Prices, 1)
	assert.Equal(t, "Leeds vs Burnley", recs[1].Label())

	cfg := matcher.DefaultConfig()
	cfg.DropUnmatched = true
	recs = matcher.New(cfg).Reconcile(events, fixtures)
	require.Len(t, recs, 1)
	assert.Equal(t, "o1", recs[0].OddsID)
}

func TestParseTime(t *testing.T) {
	got, ok := matcher.ParseTime("2026-03-01T15:00:00+01:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC), got)

	for _, s := range []string{"2026-03-01T15:04:05", "2026-03-01 15:04:05", "2026-03-01T15:04", "2026-03-01T15:04:05.123456Z"} {
		_, ok := matcher.ParseTime(s)
		assert.True(t, ok, s)
	}
	for _, s := range []string{"", "tomorrow", "01/03/2026"} {
		_, ok := matcher.ParseTime(s)
		assert.False(t, ok, s)
	}
}
