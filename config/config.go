package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/valuebot/internal/adapters/feeds"
	"github.com/alejandrodnm/valuebot/internal/bankroll"
	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/matcher"
	"github.com/alejandrodnm/valuebot/internal/risk"
	"github.com/alejandrodnm/valuebot/internal/scanner"
	"github.com/alejandrodnm/valuebot/internal/strategy"
)

// Config es la configuración completa del bot.
type Config struct {
	Bankroll  BankrollConfig  `yaml:"bankroll"`
	Limits    LimitsConfig    `yaml:"limits"`
	Validator ValidatorConfig `yaml:"validator"`
	Matcher   MatcherConfig   `yaml:"matcher"`
	Multiples MultiplesConfig `yaml:"multiples"`
	Model     ModelConfig     `yaml:"model"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Scan      ScanConfig      `yaml:"scan"`
	Feeds     FeedsConfig     `yaml:"feeds"`
	Cache     CacheConfig     `yaml:"cache"`
	Storage   StorageConfig   `yaml:"storage"`
	API       APIConfig       `yaml:"api"`
	Log       LogConfig       `yaml:"log"`
	Report    ReportConfig    `yaml:"report"`
}

// BankrollConfig son el bankroll inicial y los parámetros por fase. Las listas
// por fase llevan 4 valores (fases 1..4) o 5 (más consolidación).
type BankrollConfig struct {
	Amount                 float64   `yaml:"amount"`
	Targets                []float64 `yaml:"targets"`
	MinEV                  []float64 `yaml:"min_ev"`
	MaxStakePct            []float64 `yaml:"max_stake_pct"`
	ConsolidationThreshold float64   `yaml:"consolidation_threshold"`
}

// LimitsConfig son los límites de riesgo por fase.
type LimitsConfig struct {
	DailyPct        []float64 `yaml:"daily_pct"` // fracción del bankroll
	MaxSimultaneous []int     `yaml:"max_simultaneous"`
	MaxLosses       []int     `yaml:"max_losses"`
	ReduceAfter     int       `yaml:"reduce_after"`
	Reduction       float64   `yaml:"reduction"`
}

// ValidatorConfig son los filtros de aceptación.
type ValidatorConfig struct {
	MinOdds        float64 `yaml:"min_odds"`
	MaxOdds        float64 `yaml:"max_odds"`
	MinProbability float64 `yaml:"min_probability"`
	MinStake       float64 `yaml:"min_stake"`
}

// MatcherConfig controla la reconciliación entre feeds.
type MatcherConfig struct {
	NameThreshold  float64 `yaml:"name_threshold"`
	ToleranceHours float64 `yaml:"tolerance_hours"`
	Policy         string  `yaml:"policy"` // best | first
	DropUnmatched  bool    `yaml:"drop_unmatched"`
}

// MultiplesConfig controla la detección de combinadas.
type MultiplesConfig struct {
	MinProbability float64 `yaml:"min_probability"`
	MaxLegs        int     `yaml:"max_legs"`
	TopN           int     `yaml:"top_n"`
	// StakePct: fase → fracción del bankroll. Solo esas fases reciben combinadas.
	StakePct map[int]float64 `yaml:"stake_pct"`
}

// ModelConfig son los parámetros de los modelos de probabilidad.
type ModelConfig struct {
	HandicapSteps []strategy.HandicapStep `yaml:"handicap_steps"`
	HandicapFloor float64                 `yaml:"handicap_floor"`
	Gridiron      GridironConfig          `yaml:"gridiron"`
}

// GridironConfig parametriza el modelo normal.
type GridironConfig struct {
	HomeAdvantage *float64 `yaml:"home_advantage"` // nil = por defecto; 0 = campo neutral
	TotalSD       float64  `yaml:"total_sd"`
	MarginSD      float64  `yaml:"margin_sd"`
}

// AnalysisConfig son los ajustes de forma y condición.
type AnalysisConfig struct {
	FormWindow    int     `yaml:"form_window"`
	FormStreak    int     `yaml:"form_streak"`
	FormBoost     float64 `yaml:"form_boost"`
	FormPenalty   float64 `yaml:"form_penalty"`
	HomeVenue     float64 `yaml:"home_venue"`
	AwayVenue     float64 `yaml:"away_venue"`
	OverMinExcess float64 `yaml:"over_min_excess"`
}

// ScanConfig controla el pipeline diario.
type ScanConfig struct {
	Competitions []string `yaml:"competitions"`
	HorizonHours float64  `yaml:"horizon_hours"`
	StatsWorkers int      `yaml:"stats_workers"`
	Schedule     string   `yaml:"schedule"` // expresión cron para el modo daemon
}

// FeedsConfig contiene URLs y credenciales de los tres feeds.
type FeedsConfig struct {
	OddsURL          string            `yaml:"odds_url"`
	OddsKey          string            `yaml:"odds_key"`
	FixturesURL      string            `yaml:"fixtures_url"`
	FixturesKey      string            `yaml:"fixtures_key"`
	StatsURL         string            `yaml:"stats_url"`
	StatsKey         string            `yaml:"stats_key"`
	CompetitionCodes map[string]string `yaml:"competition_codes"`
	Season           int               `yaml:"season"`
	RatePerSec       float64           `yaml:"rate_per_sec"`
	DryRunDir        string            `yaml:"dry_run_dir"`
}

// CacheConfig apunta al Redis opcional.
type CacheConfig struct {
	RedisAddr string `yaml:"redis_addr"` // vacío = cache en memoria
	Password  string `yaml:"password"`
	Prefix    string `yaml:"prefix"`
}

// StorageConfig controla dónde se persisten las apuestas.
type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite | postgres
	DSN    string `yaml:"dsn"`    // ruta SQLite, ":memory:" o DSN de Postgres
}

// APIConfig configura el servidor HTTP.
type APIConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// ReportConfig controla la salida por consola y el log de rechazos.
type ReportConfig struct {
	Format       string `yaml:"format"` // table | compact | json
	RejectionLog string `yaml:"rejection_log"`
}

// envOverrides son las variables de entorno reconocidas. Un cero significa
// "no definida".
type envOverrides struct {
	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`

	Bankroll float64 `env:"BANKROLL"`

	TargetPhase1           float64 `env:"TARGET_BANKROLL_PHASE_1"`
	TargetPhase2           float64 `env:"TARGET_BANKROLL_PHASE_2"`
	TargetPhase3           float64 `env:"TARGET_BANKROLL_PHASE_3"`
	TargetPhase4           float64 `env:"TARGET_BANKROLL_PHASE_4"`
	MinEVPhase1            float64 `env:"MIN_EV_PHASE_1"`
	MinEVPhase2            float64 `env:"MIN_EV_PHASE_2"`
	MinEVPhase3            float64 `env:"MIN_EV_PHASE_3"`
	MinEVPhase4            float64 `env:"MIN_EV_PHASE_4"`
	MinEVConsolidation     float64 `env:"MIN_EV_CONSOLIDATION"`
	MaxStakePhase1         float64 `env:"MAX_STAKE_PHASE_1"`
	MaxStakePhase2         float64 `env:"MAX_STAKE_PHASE_2"`
	MaxStakePhase3         float64 `env:"MAX_STAKE_PHASE_3"`
	MaxStakePhase4         float64 `env:"MAX_STAKE_PHASE_4"`
	MaxStakeConsolidation  float64 `env:"MAX_STAKE_CONSOLIDATION"`
	ConsolidationThreshold float64 `env:"CONSOLIDATION_THRESHOLD"`

	OddsKey     string `env:"ODDS_API_KEY"`
	FixturesKey string `env:"FIXTURES_API_KEY"`
	StatsKey    string `env:"STATS_API_KEY"`

	StorageDriver string `env:"STORAGE_DRIVER"`
	StorageDSN    string `env:"DATABASE_URL"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	APIAddr       string `env:"API_ADDR"`
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default devuelve la configuración de referencia sin leer archivos.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("config.Load: parse env: %w", err)
	}

	setStr(&cfg.Log.Level, o.LogLevel)
	setStr(&cfg.Log.Format, o.LogFormat)
	setFloat(&cfg.Bankroll.Amount, o.Bankroll)

	cfg.Bankroll.Targets = overrideAt(cfg.Bankroll.Targets, defaultTargets[:],
		o.TargetPhase1, o.TargetPhase2, o.TargetPhase3, o.TargetPhase4)
	cfg.Bankroll.MinEV = overrideAt(cfg.Bankroll.MinEV, defaultMinEV[:],
		o.MinEVPhase1, o.MinEVPhase2, o.MinEVPhase3, o.MinEVPhase4, o.MinEVConsolidation)
	cfg.Bankroll.MaxStakePct = overrideAt(cfg.Bankroll.MaxStakePct, defaultMaxStake[:],
		o.MaxStakePhase1, o.MaxStakePhase2, o.MaxStakePhase3, o.MaxStakePhase4, o.MaxStakeConsolidation)
	setFloat(&cfg.Bankroll.ConsolidationThreshold, o.ConsolidationThreshold)

	setStr(&cfg.Feeds.OddsKey, o.OddsKey)
	setStr(&cfg.Feeds.FixturesKey, o.FixturesKey)
	setStr(&cfg.Feeds.StatsKey, o.StatsKey)
	setStr(&cfg.Storage.Driver, o.StorageDriver)
	setStr(&cfg.Storage.DSN, o.StorageDSN)
	setStr(&cfg.Cache.RedisAddr, o.RedisAddr)
	setStr(&cfg.Cache.Password, o.RedisPassword)
	setStr(&cfg.API.Addr, o.APIAddr)
	return nil
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

// overrideAt completa cur con base y pisa las posiciones con valor > 0.
func overrideAt(cur, base []float64, vals ...float64) []float64 {
	set := false
	for _, v := range vals {
		if v > 0 {
			set = true
		}
	}
	if !set {
		return cur
	}
	out := fill(cur, base)
	for i, v := range vals {
		if v > 0 {
			out[i] = v
		}
	}
	return out
}

var (
	defaultTargets  = [4]float64{1000, 5000, 25000, 100000}
	defaultMinEV    = [5]float64{8, 9, 10, 12, 12}
	defaultMaxStake = [5]float64{15, 10, 6, 4, 1.5}
	defaultDaily    = [5]float64{0.50, 0.40, 0.25, 0.15, 0.10}
	defaultMaxSim   = [5]int{5, 4, 3, 2, 2}
	defaultMaxLoss  = [5]int{4, 3, 3, 2, 2}
)

// fill devuelve una copia de base con los valores de cur por encima.
// Una lista de 4 valores deja la quinta posición (consolidación) en base[4].
func fill[T int | float64](cur, base []T) []T {
	out := append([]T(nil), base...)
	copy(out, cur)
	return out
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	b := &cfg.Bankroll
	if b.Amount <= 0 {
		b.Amount = 100
	}
	b.Targets = fill(b.Targets, defaultTargets[:])
	b.MinEV = fill(b.MinEV, defaultMinEV[:])
	b.MaxStakePct = fill(b.MaxStakePct, defaultMaxStake[:])
	if b.ConsolidationThreshold <= 0 {
		b.ConsolidationThreshold = 50000
	}

	l := &cfg.Limits
	l.DailyPct = fill(l.DailyPct, defaultDaily[:])
	l.MaxSimultaneous = fill(l.MaxSimultaneous, defaultMaxSim[:])
	l.MaxLosses = fill(l.MaxLosses, defaultMaxLoss[:])
	if l.ReduceAfter <= 0 {
		l.ReduceAfter = 2
	}
	if l.Reduction <= 0 {
		l.Reduction = 0.5
	}

	v := &cfg.Validator
	if v.MinOdds <= 0 {
		v.MinOdds = 1.5
	}
	if v.MaxOdds <= 0 {
		v.MaxOdds = 3.0
	}
	if v.MinProbability <= 0 {
		v.MinProbability = 0.45
	}
	if v.MinStake <= 0 {
		v.MinStake = 1
	}

	m := &cfg.Matcher
	if m.NameThreshold <= 0 {
		m.NameThreshold = 0.6
	}
	if m.ToleranceHours <= 0 {
		m.ToleranceHours = 3
	}
	if m.Policy == "" {
		m.Policy = string(matcher.PolicyBest)
	}

	mu := &cfg.Multiples
	if mu.MinProbability <= 0 {
		mu.MinProbability = 0.30
	}
	if mu.MaxLegs <= 0 {
		mu.MaxLegs = 3
	}
	if mu.TopN <= 0 {
		mu.TopN = 3
	}
	if len(mu.StakePct) == 0 {
		mu.StakePct = map[int]float64{1: 0.08, 2: 0.05}
	}

	md := &cfg.Model
	if len(md.HandicapSteps) == 0 {
		md.HandicapSteps = strategy.DefaultHandicapSteps()
	}
	if md.HandicapFloor <= 0 {
		md.HandicapFloor = 0.35
	}
	gd := strategy.DefaultGridironConfig()
	if md.Gridiron.HomeAdvantage == nil {
		adv := gd.HomeAdvantage
		md.Gridiron.HomeAdvantage = &adv
	}
	if md.Gridiron.TotalSD <= 0 {
		md.Gridiron.TotalSD = gd.TotalSD
	}
	if md.Gridiron.MarginSD <= 0 {
		md.Gridiron.MarginSD = gd.MarginSD
	}

	ad := scanner.DefaultAnalyzerConfig()
	a := &cfg.Analysis
	if a.FormWindow <= 0 {
		a.FormWindow = ad.FormWindow
	}
	if a.FormStreak <= 0 {
		a.FormStreak = ad.FormStreak
	}
	if a.FormBoost <= 0 {
		a.FormBoost = ad.FormBoost
	}
	if a.FormPenalty <= 0 {
		a.FormPenalty = ad.FormPenalty
	}
	if a.HomeVenue <= 0 {
		a.HomeVenue = ad.HomeVenue
	}
	if a.AwayVenue <= 0 {
		a.AwayVenue = ad.AwayVenue
	}
	if a.OverMinExcess <= 0 {
		a.OverMinExcess = ad.OverMinExcess
	}

	s := &cfg.Scan
	if len(s.Competitions) == 0 {
		s.Competitions = []string{"premier_league", "la_liga", "serie_a", "bundesliga", "nfl"}
	}
	if s.HorizonHours <= 0 {
		s.HorizonHours = 12
	}
	if s.StatsWorkers <= 0 {
		s.StatsWorkers = 4
	}

	f := &cfg.Feeds
	if len(f.CompetitionCodes) == 0 {
		f.CompetitionCodes = map[string]string{
			"premier_league": "PL",
			"la_liga":        "PD",
			"serie_a":        "SA",
			"bundesliga":     "BL1",
			"ligue_1":        "FL1",
		}
	}
	if f.DryRunDir == "" {
		f.DryRunDir = "testdata/fixtures"
	}

	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "valuebot:"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "valuebot.db"
	}
	if cfg.API.Addr == "" {
		cfg.API.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Report.Format == "" {
		cfg.Report.Format = "table"
	}
	if cfg.Report.RejectionLog == "" {
		cfg.Report.RejectionLog = "logs/rejections.jsonl"
	}
}

func (c *Config) validate() error {
	if c.Validator.MinOdds >= c.Validator.MaxOdds {
		return fmt.Errorf("config.Load: validator.min_odds (%.2f) must be below max_odds (%.2f)",
			c.Validator.MinOdds, c.Validator.MaxOdds)
	}
	for i := 1; i < len(c.Bankroll.Targets); i++ {
		if c.Bankroll.Targets[i] <= c.Bankroll.Targets[i-1] {
			return fmt.Errorf("config.Load: bankroll.targets must be ascending")
		}
	}
	switch matcher.Policy(c.Matcher.Policy) {
	case matcher.PolicyBest, matcher.PolicyFirst:
	default:
		return fmt.Errorf("config.Load: unknown matcher.policy %q", c.Matcher.Policy)
	}
	// la función escalonada se evalúa en orden: umbrales estrictamente descendentes
	steps := c.Model.HandicapSteps
	for i, st := range steps {
		if st.Prob < 0 || st.Prob > 1 {
			return fmt.Errorf("config.Load: model.handicap_steps[%d]: prob %.2f outside [0,1]", i, st.Prob)
		}
		if i > 0 && st.Above >= steps[i-1].Above {
			return fmt.Errorf("config.Load: model.handicap_steps must have descending thresholds (%.2f after %.2f)",
				st.Above, steps[i-1].Above)
		}
	}
	for phase := range c.Multiples.StakePct {
		if phase < int(domain.Phase1) || phase > int(domain.PhaseConsolidation) {
			return fmt.Errorf("config.Load: multiples.stake_pct: unknown phase %d", phase)
		}
	}
	return nil
}

// BankrollConfig traduce la sección bankroll al paquete bankroll.
func (c *Config) BankrollConfig() bankroll.Config {
	var out bankroll.Config
	copy(out.Targets[:], c.Bankroll.Targets)
	copy(out.MinEV[:], c.Bankroll.MinEV)
	copy(out.MaxStakePct[:], c.Bankroll.MaxStakePct)
	out.ConsolidationThreshold = c.Bankroll.ConsolidationThreshold
	return out
}

// RiskLimits traduce la sección limits al paquete risk.
func (c *Config) RiskLimits() risk.Limits {
	var out risk.Limits
	copy(out.DailyPct[:], c.Limits.DailyPct)
	copy(out.MaxSimultaneous[:], c.Limits.MaxSimultaneous)
	copy(out.MaxLosses[:], c.Limits.MaxLosses)
	out.ReduceAfter = c.Limits.ReduceAfter
	out.Reduction = c.Limits.Reduction
	return out
}

// ScannerConfig construye la configuración del pipeline.
func (c *Config) ScannerConfig() scanner.Config {
	stake := make(map[domain.Phase]float64, len(c.Multiples.StakePct))
	for p, pct := range c.Multiples.StakePct {
		stake[domain.Phase(p)] = pct
	}
	return scanner.Config{
		Competitions: c.Scan.Competitions,
		Horizon:      hours(c.Scan.HorizonHours),
		StatsWorkers: c.Scan.StatsWorkers,
		Validator: scanner.ValidatorConfig{
			MinOdds:        c.Validator.MinOdds,
			MaxOdds:        c.Validator.MaxOdds,
			MinProbability: c.Validator.MinProbability,
			MinStake:       c.Validator.MinStake,
		},
		Analyzer: scanner.AnalyzerConfig{
			FormWindow:    c.Analysis.FormWindow,
			FormStreak:    c.Analysis.FormStreak,
			FormBoost:     c.Analysis.FormBoost,
			FormPenalty:   c.Analysis.FormPenalty,
			HomeVenue:     c.Analysis.HomeVenue,
			AwayVenue:     c.Analysis.AwayVenue,
			OverMinExcess: c.Analysis.OverMinExcess,
		},
		Multiples: scanner.MultiplesConfig{
			MinProbability: c.Multiples.MinProbability,
			MaxLegs:        c.Multiples.MaxLegs,
			TopN:           c.Multiples.TopN,
			StakePct:       stake,
		},
		Matcher: matcher.Config{
			NameThreshold: c.Matcher.NameThreshold,
			Tolerance:     hours(c.Matcher.ToleranceHours),
			Policy:        matcher.Policy(c.Matcher.Policy),
			DropUnmatched: c.Matcher.DropUnmatched,
		},
	}
}

// Strategies construye el registry de modelos con los parámetros de model.
func (c *Config) Strategies() strategy.Registry {
	r := strategy.NewRegistry()
	r.Register(strategy.NewSoccer(strategy.SoccerConfig{
		HandicapSteps: c.Model.HandicapSteps,
		HandicapFloor: c.Model.HandicapFloor,
	}))
	r.Register(strategy.NewGridiron(strategy.GridironConfig{
		HomeAdvantage: *c.Model.Gridiron.HomeAdvantage,
		TotalSD:       c.Model.Gridiron.TotalSD,
		MarginSD:      c.Model.Gridiron.MarginSD,
	}))
	return r
}

// StatsConfig construye la configuración del cliente de estadísticas.
func (c *Config) StatsConfig() feeds.StatsConfig {
	return feeds.StatsConfig{
		BaseURL:          c.Feeds.StatsURL,
		APIKey:           c.Feeds.StatsKey,
		CompetitionCodes: c.Feeds.CompetitionCodes,
		FormWindow:       c.Analysis.FormWindow,
		Season:           c.Feeds.Season,
	}
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
