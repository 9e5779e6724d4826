package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alejandrodnm/valuebot/internal/domain"
)

func TestPoisson(t *testing.T) {
	assert.InDelta(t, 0.0550, domain.PoissonPMF(0, 2.9), 0.0001)
	assert.InDelta(t, 0.4460, domain.PoissonCDF(2, 2.9), 0.0001)
	assert.Equal(t, 1.0, domain.PoissonPMF(0, 0))
	assert.Equal(t, 0.0, domain.PoissonPMF(3, 0))
	assert.Equal(t, 0.0, domain.PoissonCDF(-1, 2))
	// k grande no desborda
	assert.InDelta(t, 0.0, domain.PoissonPMF(400, 2.9), 1e-12)
}

func TestNormalCDF(t *testing.T) {
	assert.InDelta(t, 0.5, domain.NormalCDF(10, 10, 3), 1e-9)
	assert.InDelta(t, 0.8413, domain.NormalCDF(1, 0, 1), 0.0001)
	assert.Equal(t, 0.0, domain.NormalCDF(-1, 0, 0))
	assert.Equal(t, 1.0, domain.NormalCDF(0, 0, 0))
}

func TestExpectedValue(t *testing.T) {
	assert.Equal(t, 15.5, domain.ExpectedValue(0.55, 2.10))
	assert.Equal(t, -10.0, domain.ExpectedValue(0.45, 2.0))
	assert.Equal(t, 0.0, domain.ExpectedValue(0.5, 2.0))
}

func TestIsValue(t *testing.T) {
	tests := []struct {
		name  string
		prob  float64
		odds  float64
		minEV float64
		want  bool
	}{
		{"clears threshold", 0.55, 2.10, 8, true},
		{"exactly at threshold", 0.54, 2.0, 8, true},
		{"below threshold", 0.52, 2.0, 8, false},
		{"negative edge", 0.40, 2.0, 0, false},
		{"zero odds", 0.9, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := domain.IsValue(tt.prob, tt.odds, tt.minEV)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 70.45, domain.Round(70.4545, 2))
	assert.Equal(t, -2.5, domain.Round(-2.5, 2))
	assert.Equal(t, 12.86, domain.Round(12.8600000001, 2))
	assert.Equal(t, 0.446, domain.Round(0.44596, 4))
}
