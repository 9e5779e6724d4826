package scanner

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/session"
	"github.com/alejandrodnm/valuebot/internal/strategy"
)

// AnalyzerConfig contiene los ajustes previos al modelo y la guarda de overs.
type AnalyzerConfig struct {
	// FormWindow es cuántos resultados recientes se miran.
	FormWindow int
	// FormStreak es cuántas victorias (o derrotas) en la ventana activan el ajuste.
	FormStreak  int
	FormBoost   float64
	FormPenalty float64
	HomeVenue   float64
	AwayVenue   float64
	// OverMinExcess exige total esperado ≥ línea + OverMinExcess en mercados over.
	OverMinExcess float64
}

// DefaultAnalyzerConfig devuelve los ajustes de referencia (3.2 goles para over 2.5).
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		FormWindow:    5,
		FormStreak:    3,
		FormBoost:     1.15,
		FormPenalty:   0.85,
		HomeVenue:     1.1,
		AwayVenue:     0.9,
		OverMinExcess: 0.7,
	}
}

// Analyzer convierte un partido con estadísticas y cuotas en oportunidades.
type Analyzer struct {
	cfg        AnalyzerConfig
	strategies strategy.Registry
}

// NewAnalyzer crea un Analyzer con las estrategias dadas.
func NewAnalyzer(cfg AnalyzerConfig, strategies strategy.Registry) *Analyzer {
	return &Analyzer{cfg: cfg, strategies: strategies}
}

// Adjust aplica forma reciente y condición de local/visitante a las medias.
// La forma multiplica lo marcado y divide lo encajado; la condición igual.
func (a *Analyzer) Adjust(s domain.TeamStats) (scored, conceded float64) {
	form := s.Form
	if a.cfg.FormWindow > 0 && len(form) > a.cfg.FormWindow {
		form = form[len(form)-a.cfg.FormWindow:]
	}
	recent := domain.TeamStats{Form: form}

	formAdj := 1.0
	switch {
	case recent.Count(domain.Win) >= a.cfg.FormStreak:
		formAdj = a.cfg.FormBoost
	case recent.Count(domain.Loss) >= a.cfg.FormStreak:
		formAdj = a.cfg.FormPenalty
	}

	venueAdj := a.cfg.AwayVenue
	if s.Venue == domain.VenueHome {
		venueAdj = a.cfg.HomeVenue
	}

	return s.AvgScored * formAdj * venueAdj, s.AvgConceded / formAdj / venueAdj
}

// Lambdas mezcla el ataque de cada lado con la defensa rival.
func (a *Analyzer) Lambdas(home, away domain.TeamStats) (float64, float64) {
	hs, hc := a.Adjust(home)
	as, ac := a.Adjust(away)
	return (hs + ac) / 2, (as + hc) / 2
}

// Analyze evalúa cada cuota del partido. Devuelve las oportunidades con valor
// y un rechazo por cada mercado que no lo tiene.
func (a *Analyzer) Analyze(rec domain.MatchRecord, home, away domain.TeamStats, sess *session.Session, now time.Time) ([]domain.Opportunity, []domain.Rejection) {
	strat, ok := a.strategies.Get(rec.Sport)
	if !ok {
		return nil, nil
	}

	hl, al := a.Lambdas(home, away)
	minEV := sess.Bankroll.MinEV()
	phase := sess.Bankroll.Phase()
	adjustment := sess.Risk.StakeAdjustment()

	var (
		opps       []domain.Opportunity
		rejections []domain.Rejection
	)
	reject := func(m domain.Market, reason string) {
		rejections = append(rejections, domain.Rejection{
			Match:       rec.Label(),
			Competition: rec.Competition,
			Market:      m.String(),
			Reasons:     []string{reason},
			At:          now,
		})
	}

	for _, price := range rec.Prices {
		m := price.Market
		var prob, expected float64

		switch m.Kind {
		case domain.KindTotal:
			over, under, exp := strat.Totals(hl, al, m.Line)
			expected = exp
			prob = under
			if m.Side == domain.SideOver {
				prob = over
				if exp < m.Line+a.cfg.OverMinExcess {
					reject(m, fmt.Sprintf("expected total %.2f below %.2f", exp, m.Line+a.cfg.OverMinExcess))
					continue
				}
			}
		case domain.KindHandicap:
			prob, expected = strat.Cover(hl, al, m.Line)
		case domain.KindBTTS:
			p, ok := strat.BTTS(hl, al)
			if !ok {
				continue
			}
			prob = p
		default:
			continue
		}

		valid, ev := domain.IsValue(prob, price.Odds, minEV)
		if !valid {
			reject(m, fmt.Sprintf("no value (ev %.2f%%, prob %.4f, implied %.4f)", ev, prob, 1/price.Odds))
			continue
		}

		stake := domain.FloorCents(sess.Bankroll.Stake(prob, price.Odds) * adjustment)
		opps = append(opps, domain.Opportunity{
			Match:       rec.Label(),
			Home:        rec.Home,
			Away:        rec.Away,
			Competition: rec.Competition,
			Kickoff:     rec.Kickoff,
			Sport:       rec.Sport,
			Market:      m,
			Odds:        price.Odds,
			Bookmaker:   price.Bookmaker,
			Probability: prob,
			EV:          ev,
			Stake:       stake,
			Return:      domain.Round(stake*price.Odds, 2),
			Phase:       phase,
			Expected:    expected,
			ScannedAt:   now,
		})
	}
	return opps, rejections
}
