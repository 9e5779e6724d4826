// Package matcher reconcilia los partidos del feed de cuotas con los del feed
// de calendario por similitud de nombres y cercanía del kickoff.
package matcher

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/alejandrodnm/valuebot/internal/domain"
)

// Policy decide qué candidato gana cuando varios superan los umbrales.
type Policy string

const (
	// PolicyBest devuelve el candidato con mayor score combinado.
	PolicyBest Policy = "best"
	// PolicyFirst devuelve el primer candidato que supera los umbrales.
	PolicyFirst Policy = "first"
)

// Config configura el matcher.
type Config struct {
	NameThreshold float64
	Tolerance     time.Duration
	Policy        Policy
	// DropUnmatched descarta los eventos sin match en vez de dejarlos pasar
	// sin identificadores de Feed B.
	DropUnmatched bool
}

// DefaultConfig devuelve umbral 0.6, tolerancia 3h y política best.
func DefaultConfig() Config {
	return Config{NameThreshold: 0.6, Tolerance: 3 * time.Hour, Policy: PolicyBest}
}

// Score es el detalle de un match aceptado.
type Score struct {
	Home     float64
	Away     float64
	Combined float64
}

// Matcher empareja eventos entre feeds.
type Matcher struct {
	cfg Config
}

// New crea un Matcher. Valores vacíos se completan con DefaultConfig.
func New(cfg Config) *Matcher {
	def := DefaultConfig()
	if cfg.NameThreshold <= 0 {
		cfg.NameThreshold = def.NameThreshold
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.Policy == "" {
		cfg.Policy = def.Policy
	}
	return &Matcher{cfg: cfg}
}

// Match busca el fixture que corresponde a ev. Ambos nombres deben superar
// el umbral y el kickoff debe caer dentro de la tolerancia; si alguno de los
// dos timestamps no se puede parsear, el chequeo de hora se omite.
func (m *Matcher) Match(ev domain.OddsEvent, candidates []domain.Fixture) (domain.Fixture, Score, bool) {
	var (
		best      domain.Fixture
		bestScore Score
		found     bool
	)
	for _, c := range candidates {
		home := Similarity(ev.Home, c.Home)
		away := Similarity(ev.Away, c.Away)
		if home < m.cfg.NameThreshold || away < m.cfg.NameThreshold {
			continue
		}
		if !WithinTolerance(ev.Kickoff, c.Kickoff, m.cfg.Tolerance) {
			slog.Debug("kickoff mismatch, discarding candidate",
				"match", ev.Home+" vs "+ev.Away,
				"odds_kickoff", ev.Kickoff,
				"fixture_kickoff", c.Kickoff,
			)
			continue
		}

		s := Score{Home: home, Away: away, Combined: (home + away) / 2}
		if m.cfg.Policy == PolicyFirst {
			return c, s, true
		}
		if !found || s.Combined > bestScore.Combined {
			best, bestScore, found = c, s, true
		}
	}
	return best, bestScore, found
}

// Reconcile construye un MatchRecord por evento de cuotas. Los eventos sin
// match siguen sin identificadores de Feed B, salvo que DropUnmatched esté activo.
func (m *Matcher) Reconcile(events []domain.OddsEvent, fixtures []domain.Fixture) []domain.MatchRecord {
	records := make([]domain.MatchRecord, 0, len(events))
	for _, ev := range events {
		rec := domain.MatchRecord{
			Sport:       ev.Sport,
			Home:        ev.Home,
			Away:        ev.Away,
			Competition: ev.Competition,
			Kickoff:     ev.Kickoff,
			OddsID:      ev.ID,
			Prices:      ev.Prices,
		}

		fx, score, ok := m.Match(ev, fixtures)
		if !ok {
			slog.Debug("no fixture match", "match", rec.Label())
			if m.cfg.DropUnmatched {
				continue
			}
			records = append(records, rec)
			continue
		}

		rec.FixtureID = fx.ID
		rec.HomeTeamID = fx.HomeTeamID
		rec.AwayTeamID = fx.AwayTeamID
		if rec.Competition == "" {
			rec.Competition = fx.Competition
		}
		slog.Debug("fixture matched",
			"match", rec.Label(),
			"fixture", fx.Home+" vs "+fx.Away,
			"score", math.Round(score.Combined*100)/100,
		)
		records = append(records, rec)
	}
	return records
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999Z",
	"2006-01-02T15:04",
}

// ParseTime intenta los formatos conocidos de los feeds. Sin zona se asume UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// WithinTolerance devuelve true si ambos kickoffs distan como mucho tol.
// Si alguno no se puede parsear devuelve true (fallback permisivo).
func WithinTolerance(a, b string, tol time.Duration) bool {
	ta, okA := ParseTime(a)
	tb, okB := ParseTime(b)
	if !okA || !okB {
		return true
	}
	d := ta.Sub(tb)
	if d < 0 {
		d = -d
	}
	return d <= tol
}
