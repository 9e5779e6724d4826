package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/valuebot/internal/adapters/storage"
	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *storage.Storage {
	t.Helper()
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func makeBet(id string, odds, stake float64, phase domain.Phase, created time.Time) domain.Bet {
	return domain.Bet{
		ID:          id,
		Match:       "Arsenal vs Chelsea",
		Competition: "premier_league",
		Market:      "Over 2.5",
		Odds:        odds,
		Stake:       stake,
		Probability: 0.6,
		EV:          8,
		Phase:       phase,
		Status:      domain.BetPending,
		Legs:        1,
		CreatedAt:   created,
	}
}

func TestSQLiteStorage_InsertAndGet(t *testing.T) {
	db := newStore(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.Insert(ctx, makeBet("b1", 1.9, 10, domain.Phase1, created)))

	got, err := db.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Arsenal vs Chelsea", got.Match)
	assert.Equal(t, domain.BetPending, got.Status)
	assert.Equal(t, domain.Phase1, got.Phase)
	assert.InDelta(t, 1.9, got.Odds, 0.0001)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Nil(t, got.ClosedAt)
}

func TestSQLiteStorage_Get_NotFound(t *testing.T) {
	db := newStore(t)
	_, err := db.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrBetNotFound)
}

func TestSQLiteStorage_Settle(t *testing.T) {
	db := newStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.Insert(ctx, makeBet("b1", 2.0, 10, domain.Phase1, now)))

	require.NoError(t, db.Settle(ctx, "b1", domain.BetWon, 10, now.Add(2*time.Hour)))

	got, err := db.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, domain.BetWon, got.Status)
	assert.InDelta(t, 10.0, got.Profit, 0.001)
	require.NotNil(t, got.ClosedAt)

	// Una apuesta liquidada no se reabre
	err = db.Settle(ctx, "b1", domain.BetLost, -10, now)
	assert.ErrorIs(t, err, domain.ErrBetSettled)

	err = db.Settle(ctx, "nope", domain.BetLost, -10, now)
	assert.ErrorIs(t, err, domain.ErrBetNotFound)
}

func TestSQLiteStorage_ListPendingAndRecent(t *testing.T) {
	db := newStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, db.Insert(ctx, makeBet("b1", 1.8, 10, domain.Phase1, base)))
	require.NoError(t, db.Insert(ctx, makeBet("b2", 1.9, 10, domain.Phase1, base.Add(time.Hour))))
	require.NoError(t, db.Insert(ctx, makeBet("b3", 2.0, 10, domain.Phase1, base.Add(2*time.Hour))))
	require.NoError(t, db.Settle(ctx, "b2", domain.BetLost, -10, base.Add(3*time.Hour)))

	pending, err := db.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "b3", pending[0].ID)

	recent, err := db.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b3", recent[0].ID)
	assert.Equal(t, "b2", recent[1].ID)

	since, err := db.ListSince(ctx, base.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, "b2", since[0].ID, "orden cronológico")
}

func TestSQLiteStorage_Stats(t *testing.T) {
	db := newStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.Insert(ctx, makeBet("w", 2.0, 10, domain.Phase1, now)))
	require.NoError(t, db.Insert(ctx, makeBet("l", 1.8, 20, domain.Phase1, now)))
	require.NoError(t, db.Insert(ctx, makeBet("v", 1.9, 5, domain.Phase2, now)))
	require.NoError(t, db.Insert(ctx, makeBet("p", 1.7, 50, domain.Phase2, now)))
	require.NoError(t, db.Settle(ctx, "w", domain.BetWon, 10, now))
	require.NoError(t, db.Settle(ctx, "l", domain.BetLost, -20, now))
	require.NoError(t, db.Settle(ctx, "v", domain.BetVoid, 0, now))

	st, err := db.Stats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total, "pending no cuenta")
	assert.Equal(t, 1, st.Won)
	assert.Equal(t, 1, st.Lost)
	assert.Equal(t, 1, st.Void)
	assert.InDelta(t, 33.33, st.WinRate, 0.001)
	assert.InDelta(t, 35.0, st.TotalStaked, 0.001)
	assert.InDelta(t, -10.0, st.TotalProfit, 0.001)
	assert.InDelta(t, -28.57, st.ROI, 0.001)
	assert.InDelta(t, 1.9, st.AvgOdds, 0.001)
	assert.InDelta(t, 11.67, st.AvgStake, 0.001)

	p1 := domain.Phase1
	st, err = db.Stats(ctx, &p1)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Total)
	assert.InDelta(t, 50.0, st.WinRate, 0.001)
}

func TestSQLiteStorage_Stats_Empty(t *testing.T) {
	db := newStore(t)
	st, err := db.Stats(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.BetStats{}, st)
}

func TestSQLiteStorage_SaveAndLoadRun(t *testing.T) {
	db := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	_, ok, err := db.LoadRun(ctx, domain.DayKey(now))
	require.NoError(t, err)
	assert.False(t, ok)

	run := domain.DailyRun{
		Day: domain.DayKey(now),
		Opportunities: []domain.Opportunity{{
			Match:  "Arsenal vs Chelsea",
			Market: domain.Over(2.5),
			Odds:   1.95,
			EV:     7.25,
		}},
		Rejections: []domain.Rejection{{Match: "A vs B", Reasons: []string{"odds too low"}}},
		CreatedAt:  now,
	}
	require.NoError(t, db.SaveRun(ctx, run))

	// Upsert: la segunda escritura del día sustituye a la primera
	run.Opportunities[0].Odds = 2.05
	require.NoError(t, db.SaveRun(ctx, run))

	got, ok, err := db.LoadRun(ctx, run.Day)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Opportunities, 1)
	assert.Equal(t, domain.Over(2.5), got.Opportunities[0].Market)
	assert.InDelta(t, 2.05, got.Opportunities[0].Odds, 0.0001)
	assert.Equal(t, []string{"odds too low"}, got.Rejections[0].Reasons)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := storage.Open("mysql", "x")
	assert.Error(t, err)
}

func TestSQLiteStorage_PruneOld(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)

	require.NoError(t, storage.PruneOld(db, context.Background()))

	require.NoError(t, db.Close())
	err = storage.PruneOld(db, context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.pruneOld")
}
