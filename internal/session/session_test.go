package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/valuebot/internal/bankroll"
	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/ports"
	"github.com/alejandrodnm/valuebot/internal/risk"
	"github.com/alejandrodnm/valuebot/internal/session"
)

// historyStore solo implementa ListSince; el resto no se usa en Restore.
type historyStore struct {
	ports.BetStore
	bets  []domain.Bet
	err   error
	since time.Time
}

func (h *historyStore) ListSince(_ context.Context, t time.Time) ([]domain.Bet, error) {
	h.since = t
	return h.bets, h.err
}

func closedAt(t time.Time) *time.Time { return &t }

func TestRestore(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)

	store := &historyStore{bets: []domain.Bet{
		// cerradas fuera de orden: la racha se reconstruye por fecha de cierre
		{Stake: 10, Status: domain.BetLost, CreatedAt: yesterday, ClosedAt: closedAt(now.Add(-2 * time.Hour))},
		{Stake: 10, Status: domain.BetWon, CreatedAt: yesterday, ClosedAt: closedAt(yesterday.Add(time.Hour))},
		{Stake: 12, Status: domain.BetLost, CreatedAt: now.Add(-5 * time.Hour), ClosedAt: closedAt(now.Add(-time.Hour))},
		{Stake: 8, Status: domain.BetPending, CreatedAt: now.Add(-3 * time.Hour)},
	}}

	sess := session.New(bankroll.DefaultConfig(), risk.DefaultLimits(), 200, risk.WithClock(func() time.Time { return now }))
	require.NoError(t, sess.Restore(context.Background(), store, now))

	assert.Equal(t, now.Add(-30*24*time.Hour), store.since)
	s := sess.Risk.Summary()
	assert.Equal(t, 2, s.BetsToday)
	assert.Equal(t, 20.0, s.DailyExposure)
	assert.Equal(t, 2, s.Losses)
	assert.Equal(t, 0.5, s.StakeAdjustment)
}

func TestRestore_StoreError(t *testing.T) {
	sess := session.New(bankroll.DefaultConfig(), risk.DefaultLimits(), 100)
	err := sess.Restore(context.Background(), &historyStore{err: errors.New("boom")}, time.Now())
	assert.Error(t, err)
}

func TestApplyProfit(t *testing.T) {
	sess := session.New(bankroll.DefaultConfig(), risk.DefaultLimits(), 950)

	_, ok := sess.ApplyProfit(-20.55)
	assert.False(t, ok)
	assert.Equal(t, 929.45, sess.Bankroll.Bankroll())

	done, ok := sess.ApplyProfit(100)
	require.True(t, ok)
	assert.Equal(t, domain.Phase1, done.Phase)
	assert.Equal(t, domain.Phase2, sess.Bankroll.Phase())
	// el riesgo usa ya los límites de la fase 2 (40% de 1029.45)
	assert.Equal(t, 411.78, sess.Risk.Summary().DailyLimit)
}

func TestRestore_TodayIsTheUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2026, 10, 15, 20, 0, 0, 0, loc) // 01:00 UTC del 16

	store := &historyStore{bets: []domain.Bet{
		{Stake: 10, Status: domain.BetPending, CreatedAt: time.Date(2026, 10, 15, 18, 0, 0, 0, loc)},
		{Stake: 7, Status: domain.BetPending, CreatedAt: time.Date(2026, 10, 15, 19, 30, 0, 0, loc)},
	}}

	sess := session.New(bankroll.DefaultConfig(), risk.DefaultLimits(), 100, risk.WithClock(func() time.Time { return now }))
	require.NoError(t, sess.Restore(context.Background(), store, now))

	s := sess.Risk.Summary()
	assert.Equal(t, 1, s.BetsToday)
	assert.Equal(t, 7.0, s.DailyExposure)
}
