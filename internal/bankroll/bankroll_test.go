package bankroll_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/valuebot/internal/bankroll"
	"github.com/alejandrodnm/valuebot/internal/domain"
)

func TestDeterminePhase(t *testing.T) {
	cfg := bankroll.DefaultConfig()
	tests := []struct {
		bankroll float64
		want     domain.Phase
	}{
		{50, domain.Phase1},
		{999.99, domain.Phase1},
		{1000, domain.Phase2},
		{4999, domain.Phase2},
		{5000, domain.Phase3},
		{25000, domain.Phase4},
		{49999.99, domain.Phase4},
		{50000, domain.PhaseConsolidation},
		{250000, domain.PhaseConsolidation},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bankroll.DeterminePhase(cfg, tt.bankroll), "bankroll %.2f", tt.bankroll)
	}
}

func TestStake(t *testing.T) {
	// edge 0.155, kelly 7.05% < 10% de la fase 2
	m := bankroll.New(bankroll.DefaultConfig(), 1000)
	assert.Equal(t, domain.Phase2, m.Phase())
	assert.Equal(t, 70.45, m.Stake(0.55, 2.10))

	// sin edge no hay stake
	assert.Equal(t, 0.0, m.Stake(0.45, 2.0))
	assert.Equal(t, 0.0, m.Stake(0.5, 2.0))
	assert.Equal(t, 0.0, m.Stake(0.99, 1.0))

	// kelly 40% se recorta al 15% de la fase 1
	p1 := bankroll.New(bankroll.DefaultConfig(), 100)
	assert.Equal(t, 15.0, p1.Stake(0.9, 2.0))

	// consolidación: cuarto de Kelly (3.52%) recortado a 1.5%
	c := bankroll.New(bankroll.DefaultConfig(), 60000)
	assert.Equal(t, 900.0, c.Stake(0.55, 2.10))
}

func TestStake_NeverExceedsPhaseCap(t *testing.T) {
	cfg := bankroll.DefaultConfig()
	// barrido céntimo a céntimo en cada fase; edges que siempre llegan al tope
	for _, from := range []int64{10000, 100000, 500000, 2500000, 5000000} {
		for c := from; c <= from+100; c++ {
			br := float64(c) / 100
			m := bankroll.New(cfg, br)
			capCents := int64(math.Floor(float64(c)*m.MaxStakePct()/100 + 1e-9))
			for _, prob := range []float64{0.7, 0.9} {
				stake := m.Stake(prob, 2.0)
				got := int64(math.Round(stake * 100))
				require.Equal(t, capCents, got, "bankroll %.2f phase %s prob %.2f: stake %.2f", br, m.Phase(), prob, stake)
			}
		}
	}

	// ninguna otra combinación supera el tope
	for _, br := range []float64{100, 1500, 7000, 30000, 80000} {
		m := bankroll.New(cfg, br)
		for _, prob := range []float64{0.5, 0.6, 0.75, 0.95} {
			for _, odds := range []float64{1.5, 2.0, 2.8, 5.0} {
				got := int64(math.Round(m.Stake(prob, odds) * 100))
				assert.LessOrEqual(t, got, int64(math.Floor(br*m.MaxStakePct()+1e-9)))
			}
		}
	}
}

func TestInfo(t *testing.T) {
	m := bankroll.New(bankroll.DefaultConfig(), 250)
	info := m.Info()
	assert.Equal(t, domain.Phase1, info.Phase)
	assert.Equal(t, 1000.0, info.Target)
	assert.Equal(t, 25.0, info.ProgressPct)
	assert.Equal(t, 750.0, info.Remaining)
	assert.Equal(t, 8.0, info.MinEV)
	assert.Equal(t, 15.0, info.MaxStakePct)

	c := bankroll.New(bankroll.DefaultConfig(), 60000).Info()
	assert.Equal(t, domain.PhaseConsolidation, c.Phase)
	assert.Equal(t, 0.0, c.Target)
	assert.Equal(t, 100.0, c.ProgressPct)
	assert.Equal(t, 12.0, c.MinEV)
}

func TestUpdate_PhaseCompletion(t *testing.T) {
	m := bankroll.New(bankroll.DefaultConfig(), 960)

	_, ok := m.Update(990)
	assert.False(t, ok)

	done, ok := m.Update(1040)
	assert.True(t, ok)
	assert.Equal(t, domain.Phase1, done.Phase)
	assert.Equal(t, 1000.0, done.Target)
	assert.Equal(t, 520.0, done.Withdraw)
	assert.Equal(t, 520.0, done.Remain)
	assert.Equal(t, domain.Phase2, m.Phase())

	// ya en fase 2, 1040 no completa
	_, ok = m.CheckPhaseCompletion()
	assert.False(t, ok)

	// la consolidación nunca completa
	c := bankroll.New(bankroll.DefaultConfig(), 60000)
	_, ok = c.Update(200000)
	assert.False(t, ok)
}
