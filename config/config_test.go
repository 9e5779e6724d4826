package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/valuebot/config"
	"github.com/alejandrodnm/valuebot/internal/bankroll"
	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/matcher"
	"github.com/alejandrodnm/valuebot/internal/risk"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_ReferenceFile(t *testing.T) {
	cfg, err := config.Load("config.yaml")
	require.NoError(t, err)

	assert.Equal(t, bankroll.DefaultConfig(), cfg.BankrollConfig())
	assert.Equal(t, risk.DefaultLimits(), cfg.RiskLimits())

	sc := cfg.ScannerConfig()
	assert.Equal(t, 12*time.Hour, sc.Horizon)
	assert.Equal(t, 3*time.Hour, sc.Matcher.Tolerance)
	assert.Equal(t, matcher.PolicyBest, sc.Matcher.Policy)
	assert.Equal(t, 0.08, sc.Multiples.StakePct[domain.Phase1])
	assert.Equal(t, 0.05, sc.Multiples.StakePct[domain.Phase2])
	assert.Len(t, cfg.Model.HandicapSteps, 4)
}

func TestLoad_DefaultsForEmptyFile(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 100.0, cfg.Bankroll.Amount)
	assert.Equal(t, bankroll.DefaultConfig(), cfg.BankrollConfig())
	assert.Equal(t, risk.DefaultLimits(), cfg.RiskLimits())
	assert.Equal(t, 1.5, cfg.Validator.MinOdds)
	assert.Equal(t, 3.0, cfg.Validator.MaxOdds)
	assert.Equal(t, 0.45, cfg.Validator.MinProbability)
	assert.Equal(t, 0.6, cfg.Matcher.NameThreshold)
	assert.Equal(t, 0.7, cfg.Analysis.OverMinExcess)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "PL", cfg.Feeds.CompetitionCodes["premier_league"])
}

func TestLoad_PartialPhaseListKeepsConsolidation(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "bankroll:\n  min_ev: [5, 6, 7, 8]\n"))
	require.NoError(t, err)
	assert.Equal(t, [5]float64{5, 6, 7, 8, 12}, cfg.BankrollConfig().MinEV)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BANKROLL", "640")
	t.Setenv("MIN_EV_PHASE_2", "11")
	t.Setenv("MAX_STAKE_CONSOLIDATION", "2")
	t.Setenv("TARGET_BANKROLL_PHASE_1", "800")
	t.Setenv("STATS_API_KEY", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/valuebot")
	t.Setenv("STORAGE_DRIVER", "postgres")

	cfg, err := config.Load(writeConfig(t, "log:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 640.0, cfg.Bankroll.Amount)
	br := cfg.BankrollConfig()
	assert.Equal(t, [5]float64{8, 11, 10, 12, 12}, br.MinEV)
	assert.Equal(t, [5]float64{15, 10, 6, 4, 2}, br.MaxStakePct)
	assert.Equal(t, [4]float64{800, 5000, 25000, 100000}, br.Targets)
	assert.Equal(t, "secret", cfg.StatsConfig().APIKey)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/valuebot", cfg.Storage.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"odds range":      "validator:\n  min_odds: 3\n  max_odds: 2\n",
		"targets order":   "bankroll:\n  targets: [1000, 900, 25000, 100000]\n",
		"matcher policy":  "matcher:\n  policy: random\n",
		"multiples phase": "multiples:\n  stake_pct:\n    7: 0.1\n",
		"handicap order":  "model:\n  handicap_steps:\n    - {above: -0.5, prob: 0.55}\n    - {above: 1.5, prob: 0.75}\n",
		"handicap prob":   "model:\n  handicap_steps:\n    - {above: 0.5, prob: 1.2}\n",
		"bad yaml":        "bankroll: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStrategies_UsesModelSection(t *testing.T) {
	cfg := config.Default()
	reg := cfg.Strategies()

	soccer, ok := reg.Get(domain.SportSoccer)
	require.True(t, ok)
	// margen esperado 0 con línea -0.5 → 0 - (-0.5) = 0.5 → escalón >-0.5
	prob, _ := soccer.Cover(1.2, 1.2, -0.5)
	assert.Equal(t, 0.55, prob)

	_, ok = reg.Get(domain.SportGridiron)
	assert.True(t, ok)
}

func TestStrategies_GridironHomeAdvantage(t *testing.T) {
	gridiron := func(t *testing.T, body string) (expected float64) {
		t.Helper()
		cfg, err := config.Load(writeConfig(t, body))
		require.NoError(t, err)
		s, ok := cfg.Strategies().Get(domain.SportGridiron)
		require.True(t, ok)
		_, _, expected = s.Totals(24, 20, 44.5)
		return expected
	}

	assert.Equal(t, 46.5, gridiron(t, "{}\n"))
	assert.Equal(t, 44.0, gridiron(t, "model:\n  gridiron:\n    home_advantage: 0\n"))
	assert.Equal(t, 47.0, gridiron(t, "model:\n  gridiron:\n    home_advantage: 3\n"))
}
