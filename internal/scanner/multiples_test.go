package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/scanner"
)

func leg(match, comp string, prob, odds float64) domain.Opportunity {
	return domain.Opportunity{Match: match, Competition: comp, Probability: prob, Odds: odds}
}

func TestDetectMultiples_Pair(t *testing.T) {
	opps := []domain.Opportunity{
		leg("Arsenal vs Chelsea", "premier_league", 0.55, 1.9),
		leg("Milan vs Inter", "serie_a", 0.60, 1.8),
	}

	got := scanner.DetectMultiples(opps, 0.30, 3)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.33, got[0].Probability, 1e-9)
	assert.InDelta(t, 3.42, got[0].Odds, 1e-9)
	assert.InDelta(t, 12.86, got[0].EV, 1e-9)
}

func TestDetectMultiples_CorrelationGuard(t *testing.T) {
	opps := []domain.Opportunity{
		leg("Arsenal vs Chelsea", "premier_league", 0.6, 2.0),
		leg("Arsenal vs Chelsea", "premier_league", 0.6, 2.0),
		leg("Leeds vs Everton", "premier_league", 0.6, 2.0),
		leg("Milan vs Inter", "serie_a", 0.6, 2.0),
	}

	got := scanner.DetectMultiples(opps, 0.1, 3)
	require.NotEmpty(t, got)
	for _, m := range got {
		seenMatch := map[string]bool{}
		seenComp := map[string]bool{}
		for _, l := range m.Legs {
			assert.False(t, seenMatch[l.Match], "repeated match in %s", m.Label())
			assert.False(t, seenComp[l.Competition], "repeated competition in %s", m.Label())
			seenMatch[l.Match], seenComp[l.Competition] = true, true
		}
	}
	// solo pares premier_league × serie_a
	assert.Len(t, got, 3)
}

func TestDetectMultiples_ThresholdsAndOrder(t *testing.T) {
	opps := []domain.Opportunity{
		leg("A vs B", "c1", 0.6, 2.0),
		leg("C vs D", "c2", 0.5, 2.2),
		leg("E vs F", "c3", 0.3, 2.5),
	}

	got := scanner.DetectMultiples(opps, 0.25, 3)
	require.NotEmpty(t, got)
	for i, m := range got {
		assert.GreaterOrEqual(t, m.Probability, 0.25)
		assert.Greater(t, m.EV, 0.0)

		prob, odds := 1.0, 1.0
		for _, l := range m.Legs {
			prob *= l.Probability
			odds *= l.Odds
		}
		assert.InDelta(t, (prob*domain.Round(odds, 2)-1)*100, m.EV, 0.01)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].EV, m.EV)
		}
	}

	// 0.6 × 0.5 × 0.3 = 0.09 nunca supera el mínimo
	for _, m := range got {
		assert.Len(t, m.Legs, 2)
	}
	assert.Empty(t, scanner.DetectMultiples(opps[:1], 0.1, 3))
}

func TestFormatMultiple(t *testing.T) {
	m := scanner.FormatMultiple(domain.MultipleCandidate{Odds: 3.42}, 8)
	assert.Equal(t, 8.0, m.Stake)
	assert.Equal(t, 27.36, m.Return)
	assert.Equal(t, 19.36, m.Profit)
}
