package risk_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/risk"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newManager(bankroll float64, phase domain.Phase) (*risk.Manager, *clock) {
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return risk.New(bankroll, phase, risk.DefaultLimits(), risk.WithClock(c.now)), c
}

func TestCheckDailyLimit(t *testing.T) {
	m, _ := newManager(100, domain.Phase1)

	require.NoError(t, m.CheckDailyLimit(50))
	m.AddStake(30)
	require.NoError(t, m.CheckDailyLimit(20))

	err := m.CheckDailyLimit(20.01)
	assert.ErrorIs(t, err, risk.ErrDailyLimit)
	assert.Contains(t, err.Error(), "daily exposure limit reached")
}

func TestCheckDailyLimit_ResetsNextDay(t *testing.T) {
	m, c := newManager(100, domain.Phase1)
	m.AddStake(45)
	assert.Error(t, m.CheckDailyLimit(10))

	c.t = c.t.Add(24 * time.Hour)
	assert.NoError(t, m.CheckDailyLimit(10))
	assert.Equal(t, 0, m.Summary().BetsToday)
}

func TestCheckMaxSimultaneous(t *testing.T) {
	m, _ := newManager(2000, domain.Phase2)
	assert.NoError(t, m.CheckMaxSimultaneous(3))
	assert.ErrorIs(t, m.CheckMaxSimultaneous(4), risk.ErrMaxSimultaneous)
}

func TestLosingSequence(t *testing.T) {
	m, _ := newManager(100, domain.Phase1)

	m.UpdateSequence(domain.BetLost)
	assert.Equal(t, 1.0, m.StakeAdjustment())
	m.UpdateSequence(domain.BetLost)
	assert.Equal(t, 0.5, m.StakeAdjustment())
	m.UpdateSequence(domain.BetLost)
	assert.NoError(t, m.CheckLosingSequence())
	m.UpdateSequence(domain.BetLost)
	assert.ErrorIs(t, m.CheckLosingSequence(), risk.ErrLosingStreak)

	// una victoria reinicia la racha
	m.UpdateSequence(domain.BetWon)
	assert.NoError(t, m.CheckLosingSequence())
	assert.Equal(t, 1.0, m.StakeAdjustment())
	s := m.Summary()
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 0, s.Losses)
}

func TestUpdateSequence_VoidBreaksContinuity(t *testing.T) {
	m, _ := newManager(100, domain.Phase1)
	m.UpdateSequence(domain.BetLost)
	m.UpdateSequence(domain.BetLost)
	m.UpdateSequence(domain.BetVoid)
	assert.Equal(t, 2, m.Summary().Losses)

	m.UpdateSequence(domain.BetLost)
	assert.Equal(t, 1, m.Summary().Losses)
}

func TestRestore(t *testing.T) {
	m, c := newManager(1000, domain.Phase2)
	m.Restore(
		[]risk.Stake{{Amount: 40, At: c.t.Add(-time.Hour)}, {Amount: 60, At: c.t.Add(-2 * time.Hour)}},
		[]domain.BetStatus{domain.BetWon, domain.BetLost, domain.BetLost},
	)

	s := m.Summary()
	assert.Equal(t, 100.0, s.DailyExposure)
	assert.Equal(t, 10.0, s.DailyExposurePct)
	assert.Equal(t, 400.0, s.DailyLimit)
	assert.Equal(t, 2, s.BetsToday)
	assert.Equal(t, 2, s.Losses)
	assert.Equal(t, 0.5, s.StakeAdjustment)
}

func TestSetBankroll_ChangesLimits(t *testing.T) {
	m, _ := newManager(100, domain.Phase1)
	m.AddStake(40)
	assert.Error(t, m.CheckDailyLimit(15))

	m.SetBankroll(200, domain.Phase1)
	assert.NoError(t, m.CheckDailyLimit(15))
}

func TestDailyWindowFollowsUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	c := &clock{t: time.Date(2026, 10, 15, 18, 0, 0, 0, loc)} // 23:00 UTC
	m := risk.New(100, domain.Phase1, risk.DefaultLimits(), risk.WithClock(c.now))

	m.AddStake(40)
	assert.Equal(t, 40.0, m.Summary().DailyExposure)

	// mismo día local, pero ya 01:00 UTC del 16: la cache diaria cambia de clave
	c.t = time.Date(2026, 10, 15, 20, 0, 0, 0, loc)
	assert.Equal(t, "2026-10-16", domain.DayKey(c.t))
	assert.NoError(t, m.CheckDailyLimit(40))
	assert.Equal(t, 0.0, m.Summary().DailyExposure)
}
