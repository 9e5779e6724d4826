package feeds

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"

	"github.com/alejandrodnm/valuebot/internal/domain"
)

// liveStatuses son los estados de api-sports que aún admiten apuesta.
var liveStatuses = map[string]bool{
	"NS": true, "TBD": true, "1H": true, "2H": true, "HT": true, "LIVE": true,
}

// mapOddsEvent convierte un evento del feed de cuotas. Las keys de mercado
// desconocidas y las cuotas <= 1 se descartan.
func mapOddsEvent(ev oddsEvent, competition string) domain.OddsEvent {
	out := domain.OddsEvent{
		ID:          ev.ID.String(),
		Sport:       mapSport(ev.Sport),
		Home:        strings.TrimSpace(ev.HomeTeam),
		Away:        strings.TrimSpace(ev.AwayTeam),
		Competition: ev.Competition,
		Kickoff:     ev.CommenceTime,
	}
	if out.Competition == "" {
		out.Competition = competition
	}

	// Orden estable de mercados: los mapas JSON no lo garantizan
	keys := make([]string, 0, len(ev.Markets))
	for k := range ev.Markets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		market, ok := domain.ParseMarketKey(key)
		if !ok {
			continue
		}
		odds, bookmaker, ok := parsePrice(ev.Markets[key])
		if !ok || odds <= 1 {
			slog.Debug("skipping unusable price", "event", out.ID, "market", key)
			continue
		}
		out.Prices = append(out.Prices, domain.Price{Market: market, Odds: odds, Bookmaker: bookmaker})
	}
	return out
}

// parsePrice acepta 1.95 o {"odd"|"price": 1.95, "bookmaker": "..."}.
func parsePrice(raw json.RawMessage) (float64, string, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, "", true
	}
	var obj priceObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, "", false
	}
	switch {
	case obj.Odd != nil:
		return *obj.Odd, obj.Bookmaker, true
	case obj.Price != nil:
		return *obj.Price, obj.Bookmaker, true
	default:
		return 0, "", false
	}
}

func mapSport(s string) domain.Sport {
	switch strings.ToLower(s) {
	case "nfl", "americanfootball", "american_football", "gridiron":
		return domain.SportGridiron
	default:
		return domain.SportSoccer
	}
}

// mapFixtures filtra partidos ya terminados y convierte al formato interno.
func mapFixtures(items []fixtureItem) []domain.Fixture {
	out := make([]domain.Fixture, 0, len(items))
	for _, it := range items {
		if !liveStatuses[it.Fixture.Status.Short] {
			continue
		}
		out = append(out, domain.Fixture{
			ID:          it.Fixture.ID.String(),
			Home:        it.Teams.Home.Name,
			Away:        it.Teams.Away.Name,
			HomeTeamID:  it.Teams.Home.ID.String(),
			AwayTeamID:  it.Teams.Away.ID.String(),
			Competition: it.League.Name,
			Kickoff:     it.Fixture.Date,
		})
	}
	return out
}

// venueStats calcula medias y racha a partir de partidos terminados en una
// condición. La racha son los últimos formWindow resultados, del más antiguo
// al más reciente.
func venueStats(teamID string, venue domain.Venue, matches []finishedMatch, formWindow int) (cachedStats, bool) {
	played := make([]finishedMatch, 0, len(matches))
	for _, m := range matches {
		if m.Score.FullTime.Home != nil && m.Score.FullTime.Away != nil {
			played = append(played, m)
		}
	}
	if len(played) == 0 {
		return cachedStats{}, false
	}
	sort.SliceStable(played, func(i, j int) bool { return played[i].UTCDate > played[j].UTCDate })

	var scored, conceded int
	recent := make([]domain.Outcome, 0, formWindow)
	for i, m := range played {
		s, c := *m.Score.FullTime.Home, *m.Score.FullTime.Away
		if venue == domain.VenueAway {
			s, c = c, s
		}
		scored += s
		conceded += c
		if i < formWindow {
			switch {
			case s > c:
				recent = append(recent, domain.Win)
			case s < c:
				recent = append(recent, domain.Loss)
			default:
				recent = append(recent, domain.Draw)
			}
		}
	}
	form := make([]byte, len(recent))
	for i, o := range recent {
		form[len(recent)-1-i] = byte(o)
	}

	n := float64(len(played))
	return cachedStats{
		TeamID:      teamID,
		AvgScored:   domain.Round(float64(scored)/n, 2),
		AvgConceded: domain.Round(float64(conceded)/n, 2),
		Form:        string(form),
	}, true
}

func (c cachedStats) toDomain(venue domain.Venue) domain.TeamStats {
	return domain.TeamStats{
		TeamID:      c.TeamID,
		Venue:       venue,
		AvgScored:   c.AvgScored,
		AvgConceded: c.AvgConceded,
		Form:        domain.ParseForm(c.Form),
	}
}
