package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/matcher"
	"github.com/alejandrodnm/valuebot/internal/ports"
	"github.com/alejandrodnm/valuebot/internal/session"
	"github.com/alejandrodnm/valuebot/internal/strategy"
)

// Config contiene la configuración del pipeline diario.
type Config struct {
	Competitions []string
	Horizon      time.Duration
	StatsWorkers int
	Validator    ValidatorConfig
	Analyzer     AnalyzerConfig
	Multiples    MultiplesConfig
	Matcher      matcher.Config
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		Horizon:      12 * time.Hour,
		StatsWorkers: 4,
		Validator:    DefaultValidatorConfig(),
		Analyzer:     DefaultAnalyzerConfig(),
		Multiples:    DefaultMultiplesConfig(),
		Matcher:      matcher.DefaultConfig(),
	}
}

// Scanner es el orquestador del pipeline:
// fetch → match → score → filter → rank → combinadas → cache → reporte.
type Scanner struct {
	cfg        Config
	odds       ports.OddsProvider
	fixtures   ports.FixtureProvider
	stats      ports.StatsProvider
	runs       ports.RunCache
	rejections ports.RejectionSink
	notifier   ports.Notifier
	observer   ports.Observer
	strategies strategy.Registry
	now        func() time.Time

	matcher   *matcher.Matcher
	analyzer  *Analyzer
	validator *Validator
}

// Option configura colaboradores opcionales del Scanner.
type Option func(*Scanner)

// WithRunCache activa la cache diaria de resultados.
func WithRunCache(c ports.RunCache) Option { return func(s *Scanner) { s.runs = c } }

// WithRejectionSink registra cada rechazo (p. ej. en un JSONL).
func WithRejectionSink(r ports.RejectionSink) Option { return func(s *Scanner) { s.rejections = r } }

// WithNotifier fija dónde se presenta el reporte en Run.
func WithNotifier(n ports.Notifier) Option { return func(s *Scanner) { s.notifier = n } }

// WithObserver fija el hook de métricas.
func WithObserver(o ports.Observer) Option { return func(s *Scanner) { s.observer = o } }

// WithStrategies reemplaza los modelos por deporte.
func WithStrategies(r strategy.Registry) Option { return func(s *Scanner) { s.strategies = r } }

// WithClock inyecta el reloj (tests).
func WithClock(now func() time.Time) Option { return func(s *Scanner) { s.now = now } }

// New crea un Scanner con los feeds inyectados.
func New(cfg Config, odds ports.OddsProvider, fixtures ports.FixtureProvider, stats ports.StatsProvider, opts ...Option) *Scanner {
	s := &Scanner{
		cfg:        cfg,
		odds:       odds,
		fixtures:   fixtures,
		stats:      stats,
		observer:   ports.NopObserver{},
		strategies: strategy.DefaultRegistry(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.observer == nil {
		s.observer = ports.NopObserver{}
	}
	s.matcher = matcher.New(cfg.Matcher)
	s.analyzer = NewAnalyzer(cfg.Analyzer, s.strategies)
	s.validator = NewValidator(cfg.Validator)
	return s
}

// Run ejecuta una pasada completa y notifica el reporte.
func (s *Scanner) Run(ctx context.Context, sess *session.Session, force bool) (domain.Report, error) {
	start := time.Now()

	report, err := s.RunOnce(ctx, sess, force)
	if err != nil {
		return report, err
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, report); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	slog.Info("daily run complete",
		"opportunities", len(report.Opportunities),
		"multiples", len(report.Multiples),
		"rejections", len(report.Rejections),
		"from_cache", report.FromCache,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return report, nil
}

// RunOnce ejecuta el pipeline sin notificar. Si hay un resultado guardado
// para hoy y force es false, lo reutiliza. Solo devuelve error si el contexto
// se cancela: cualquier fallo de un feed se reduce a "sin datos".
func (s *Scanner) RunOnce(ctx context.Context, sess *session.Session, force bool) (domain.Report, error) {
	start := time.Now()
	now := s.now()
	day := domain.DayKey(now)

	report := domain.Report{Day: day, GeneratedAt: now}

	if !force {
		if run, ok := s.loadRun(ctx, day); ok {
			report.Opportunities = run.Opportunities
			report.Multiples = run.Multiples
			report.Rejections = run.Rejections
			report.FromCache = true
			s.finish(&report, sess)
			return report, nil
		}
	}

	fixtures, err := s.fixtures.FetchFixtures(ctx, now)
	if err != nil {
		slog.Warn("fixtures feed failed, matching disabled", "err", err)
		s.observer.FeedError("fixtures")
	}

	events := s.fetchOdds(ctx)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("scanner.RunOnce: %w", err)
	}
	events = s.withinHorizon(events, now)
	records := s.matcher.Reconcile(events, fixtures)

	report.MatchesProcessed = len(events)
	for _, r := range records {
		if r.Matched() {
			report.MatchesMatched++
		}
	}

	stats := fetchStatsConcurrent(ctx, s.stats, s.observer, records, s.cfg.StatsWorkers)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("scanner.RunOnce: %w", err)
	}

	var candidates []domain.Opportunity
	for i, rec := range records {
		if !stats[i].ok {
			continue
		}
		opps, rejected := s.analyzer.Analyze(rec, stats[i].home, stats[i].away, sess, now)
		candidates = append(candidates, opps...)
		report.Rejections = append(report.Rejections, rejected...)
	}

	accepted, rejected := s.filter(candidates, sess, now)
	report.Rejections = append(report.Rejections, rejected...)
	report.Opportunities = rankByEV(accepted)
	report.Multiples = s.detectMultiples(report.Opportunities, sess)

	s.recordRejections(ctx, report.Rejections)
	s.saveRun(ctx, report)
	s.finish(&report, sess)
	s.observer.RunCompleted(time.Since(start), report)
	return report, nil
}

// fetchOdds recorre las competiciones configuradas. Una competición que
// falla se salta.
func (s *Scanner) fetchOdds(ctx context.Context) []domain.OddsEvent {
	var events []domain.OddsEvent
	for _, comp := range s.cfg.Competitions {
		if ctx.Err() != nil {
			break
		}
		evs, err := s.odds.FetchOdds(ctx, comp)
		if err != nil {
			slog.Warn("odds feed failed", "competition", comp, "err", err)
			s.observer.FeedError("odds")
			continue
		}
		events = append(events, evs...)
	}
	return events
}

// withinHorizon descarta eventos sin kickoff parseable o más allá del horizonte.
func (s *Scanner) withinHorizon(events []domain.OddsEvent, now time.Time) []domain.OddsEvent {
	if s.cfg.Horizon <= 0 {
		return events
	}
	limit := now.Add(s.cfg.Horizon)
	kept := events[:0:0]
	for _, ev := range events {
		t, ok := matcher.ParseTime(ev.Kickoff)
		if !ok || t.After(limit) {
			continue
		}
		kept = append(kept, ev)
	}
	return kept
}

// filter aplica el validador y el límite diario de riesgo.
func (s *Scanner) filter(opps []domain.Opportunity, sess *session.Session, now time.Time) ([]domain.Opportunity, []domain.Rejection) {
	info := sess.Bankroll.Info()
	accepted := make([]domain.Opportunity, 0, len(opps))
	var rejected []domain.Rejection

	for _, opp := range opps {
		reasons := s.validator.Validate(opp, info)
		if len(reasons) == 0 {
			if err := sess.Risk.CheckDailyLimit(opp.Stake); err != nil {
				reasons = append(reasons, err.Error())
			}
		}
		if len(reasons) > 0 {
			slog.Debug("opportunity rejected", "match", opp.Match, "market", opp.MarketLabel(), "reason", reasons[0])
			rejected = append(rejected, domain.Rejection{
				Match:       opp.Match,
				Competition: opp.Competition,
				Market:      opp.MarketLabel(),
				Reasons:     reasons,
				At:          now,
			})
			continue
		}
		accepted = append(accepted, opp)
	}
	return accepted, rejected
}

// detectMultiples solo sugiere combinadas en las fases con stake configurado.
func (s *Scanner) detectMultiples(opps []domain.Opportunity, sess *session.Session) []domain.MultipleCandidate {
	pct, ok := s.cfg.Multiples.StakePct[sess.Bankroll.Phase()]
	if !ok || pct <= 0 {
		return nil
	}

	all := DetectMultiples(opps, s.cfg.Multiples.MinProbability, s.cfg.Multiples.MaxLegs)
	if s.cfg.Multiples.TopN > 0 && len(all) > s.cfg.Multiples.TopN {
		all = all[:s.cfg.Multiples.TopN]
	}

	stake := sess.Bankroll.Bankroll() * pct
	out := make([]domain.MultipleCandidate, 0, len(all))
	for _, m := range all {
		out = append(out, FormatMultiple(m, stake))
	}
	return out
}

// finish completa los datos de sesión del reporte: fase, riesgo y completado.
func (s *Scanner) finish(report *domain.Report, sess *session.Session) {
	report.Phase = sess.Bankroll.Info()
	report.Risk = sess.Risk.Summary()
	if done, ok := sess.Bankroll.CheckPhaseCompletion(); ok {
		report.Completion = &done
	}
}

func (s *Scanner) loadRun(ctx context.Context, day string) (domain.DailyRun, bool) {
	if s.runs == nil {
		return domain.DailyRun{}, false
	}
	run, ok, err := s.runs.LoadRun(ctx, day)
	if err != nil {
		slog.Warn("daily cache read failed", "day", day, "err", err)
		return domain.DailyRun{}, false
	}
	if ok {
		slog.Info("using daily cache", "day", day, "opportunities", len(run.Opportunities))
	}
	return run, ok
}

func (s *Scanner) saveRun(ctx context.Context, report domain.Report) {
	if s.runs == nil {
		return
	}
	run := domain.DailyRun{
		Day:           report.Day,
		Opportunities: report.Opportunities,
		Multiples:     report.Multiples,
		Rejections:    report.Rejections,
		CreatedAt:     report.GeneratedAt,
	}
	if err := s.runs.SaveRun(ctx, run); err != nil {
		slog.Warn("daily cache write failed", "day", report.Day, "err", err)
	}
}

func (s *Scanner) recordRejections(ctx context.Context, rejections []domain.Rejection) {
	for _, r := range rejections {
		if len(r.Reasons) > 0 {
			s.observer.Rejected(r.Reasons[0])
		}
		if s.rejections == nil {
			continue
		}
		if err := s.rejections.Record(ctx, r); err != nil {
			slog.Warn("rejection log write failed", "err", err)
			return
		}
	}
}

// rankByEV ordena por EV descendente, estable respecto al orden de análisis.
func rankByEV(opps []domain.Opportunity) []domain.Opportunity {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].EV > opps[j].EV
	})
	return opps
}
