// Package metrics implementa ports.Observer sobre Prometheus.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics recoge las métricas del motor en un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	Opportunities   prometheus.Gauge
	Multiples       prometheus.Gauge
	MatchesMatched  prometheus.Gauge
	FeedErrors      *prometheus.CounterVec
	MissingStats    prometheus.Counter
	Rejections      *prometheus.CounterVec
	OpportunityEV   prometheus.Histogram
	BetsRegistered  *prometheus.CounterVec
	BetsSettled     *prometheus.CounterVec
	StakeAmount     prometheus.Histogram
	SettledProfit   prometheus.Gauge
	Bankroll        prometheus.Gauge
	Phase           prometheus.Gauge
	DailyExposure   prometheus.Gauge
	StakeAdjustment prometheus.Gauge
}

// New crea las métricas y las registra.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "valuebot_runs_total", Help: "Pipeline runs by source"},
			[]string{"source"},
		),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "valuebot_run_duration_seconds",
			Help:    "Pipeline run duration",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms a ~100s
		}),
		Opportunities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "valuebot_opportunities", Help: "Accepted opportunities in the last run",
		}),
		Multiples: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "valuebot_multiples", Help: "Suggested multiples in the last run",
		}),
		MatchesMatched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "valuebot_matches_matched", Help: "Odds events reconciled with fixtures in the last run",
		}),
		FeedErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "valuebot_feed_errors_total", Help: "Feed failures by feed"},
			[]string{"feed"},
		),
		MissingStats: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "valuebot_stats_missing_total", Help: "Matches skipped for missing team stats",
		}),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "valuebot_rejections_total", Help: "Rejected candidates by reason"},
			[]string{"reason"},
		),
		OpportunityEV: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "valuebot_opportunity_ev_pct",
			Help:    "Expected value of accepted opportunities (percent)",
			Buckets: []float64{2, 4, 6, 8, 10, 15, 20, 30, 50},
		}),
		BetsRegistered: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "valuebot_bets_registered_total", Help: "Registered bets by kind"},
			[]string{"kind"},
		),
		BetsSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "valuebot_bets_settled_total", Help: "Settled bets by result"},
			[]string{"result"},
		),
		StakeAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "valuebot_stake_amount",
			Help:    "Stake of registered bets",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		SettledProfit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "valuebot_settled_profit", Help: "Net profit of bets settled since start",
		}),
		Bankroll: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "valuebot_bankroll", Help: "Bankroll at the last run",
		}),
		Phase: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "valuebot_phase", Help: "Bankroll phase at the last run (5 = consolidation)",
		}),
		DailyExposure: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "valuebot_daily_exposure", Help: "Stake committed today",
		}),
		StakeAdjustment: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "valuebot_stake_adjustment", Help: "Stake multiplier from the loss sequence",
		}),
	}

	m.registry.MustRegister(
		m.RunsTotal, m.RunDuration, m.Opportunities, m.Multiples, m.MatchesMatched,
		m.FeedErrors, m.MissingStats, m.Rejections, m.OpportunityEV,
		m.BetsRegistered, m.BetsSettled, m.StakeAmount, m.SettledProfit,
		m.Bankroll, m.Phase, m.DailyExposure, m.StakeAdjustment,
	)
	return m
}

// Registry devuelve el registry para tests o para exponerlo.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler sirve las métricas en formato de exposición.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RunCompleted implementa ports.Observer.
func (m *Metrics) RunCompleted(d time.Duration, r domain.Report) {
	source := "live"
	if r.FromCache {
		source = "cache"
	}
	m.RunsTotal.WithLabelValues(source).Inc()
	m.RunDuration.Observe(d.Seconds())
	m.Opportunities.Set(float64(len(r.Opportunities)))
	m.Multiples.Set(float64(len(r.Multiples)))
	m.MatchesMatched.Set(float64(r.MatchesMatched))
	m.Bankroll.Set(r.Phase.Bankroll)
	m.Phase.Set(float64(r.Phase.Phase))
	m.DailyExposure.Set(r.Risk.DailyExposure)
	m.StakeAdjustment.Set(r.Risk.StakeAdjustment)
	if !r.FromCache {
		for _, o := range r.Opportunities {
			m.OpportunityEV.Observe(o.EV)
		}
	}
}

// FeedError implementa ports.Observer.
func (m *Metrics) FeedError(feed string) {
	m.FeedErrors.WithLabelValues(feed).Inc()
}

// StatsMissing implementa ports.Observer.
func (m *Metrics) StatsMissing() {
	m.MissingStats.Inc()
}

// Rejected implementa ports.Observer. El motivo se reduce a una categoría
// fija para acotar la cardinalidad.
func (m *Metrics) Rejected(reason string) {
	m.Rejections.WithLabelValues(ReasonCategory(reason)).Inc()
}

// BetRegistered implementa ports.Observer.
func (m *Metrics) BetRegistered(b domain.Bet) {
	kind := "single"
	if b.Legs > 1 {
		kind = "multiple"
	}
	m.BetsRegistered.WithLabelValues(kind).Inc()
	m.StakeAmount.Observe(b.Stake)
}

// BetSettled implementa ports.Observer.
func (m *Metrics) BetSettled(b domain.Bet) {
	m.BetsSettled.WithLabelValues(string(b.Status)).Inc()
	m.SettledProfit.Add(b.Profit)
}

// ReasonCategory agrupa los motivos de rechazo en categorías estables.
func ReasonCategory(reason string) string {
	switch r := strings.ToLower(reason); {
	case strings.HasPrefix(r, "odds too low"):
		return "odds_low"
	case strings.HasPrefix(r, "odds too high"):
		return "odds_high"
	case strings.HasPrefix(r, "probability too low"):
		return "probability_low"
	case strings.HasPrefix(r, "insufficient ev"), strings.HasPrefix(r, "no value"):
		return "no_value"
	case strings.HasPrefix(r, "stake exceeds"):
		return "stake_limit"
	case strings.HasPrefix(r, "stake too small"):
		return "stake_small"
	case strings.HasPrefix(r, "expected total"):
		return "expected_total"
	case strings.HasPrefix(r, "daily exposure"):
		return "daily_limit"
	default:
		return "other"
	}
}
