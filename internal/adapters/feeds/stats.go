package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/matcher"
	"github.com/alejandrodnm/valuebot/internal/ports"
)

const (
	defaultStatsBase = "https://api.football-data.org/v4"
	statsRatePerSec  = 0.15 // plan gratuito: 10 req/min
	teamIDTTL        = 7 * 24 * time.Hour
	teamStatsTTL     = 24 * time.Hour
)

// StatsConfig configura el cliente de estadísticas.
type StatsConfig struct {
	BaseURL string
	APIKey  string

	// CompetitionCodes traduce la competición del feed de cuotas al código
	// del proveedor de estadísticas (premier_league → PL).
	CompetitionCodes map[string]string

	// NameThreshold es la similitud mínima para resolver un equipo por nombre.
	NameThreshold float64
	FormWindow    int
	Season        int // 0 = temporada actual del proveedor
}

// StatsClient implementa ports.StatsProvider (formato football-data).
// Los equipos se resuelven por nombre dentro de la competición; los ids
// se cachean 7 días y las medias 24h.
type StatsClient struct {
	c     *client
	cfg   StatsConfig
	cache ports.KVCache

	mu    sync.Mutex
	teams map[string][]teamItem // código → plantilla, memo por proceso
}

// NewStatsClient crea el cliente de estadísticas. cache es obligatorio.
func NewStatsClient(cfg StatsConfig, cache ports.KVCache, opts ...Option) (*StatsClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("feeds.NewStatsClient: %w", ErrMissingAPIKey)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultStatsBase
	}
	if cfg.NameThreshold <= 0 {
		cfg.NameThreshold = 0.8
	}
	if cfg.FormWindow <= 0 {
		cfg.FormWindow = 5
	}
	c := newClient(cfg.BaseURL, "X-Auth-Token", cfg.APIKey, statsRatePerSec, 5)
	for _, o := range opts {
		o(c)
	}
	return &StatsClient{c: c, cfg: cfg, cache: cache, teams: make(map[string][]teamItem)}, nil
}

// FetchTeamStats implementa ports.StatsProvider.
func (s *StatsClient) FetchTeamStats(ctx context.Context, team domain.TeamRef) (domain.TeamStats, error) {
	code := s.competitionCode(team.Competition)

	id, err := s.resolveTeamID(ctx, code, team.Name)
	if err != nil {
		return domain.TeamStats{}, fmt.Errorf("feeds.FetchTeamStats: %s: %w", team.Name, err)
	}

	key := fmt.Sprintf("team_stats:%s:%s", id, team.Venue)
	if b, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var cs cachedStats
		if json.Unmarshal(b, &cs) == nil {
			return cs.toDomain(team.Venue), nil
		}
	}

	q := url.Values{"status": {"FINISHED"}, "venue": {venueParam(team.Venue)}}
	if s.cfg.Season > 0 {
		q.Set("season", strconv.Itoa(s.cfg.Season))
	}
	var resp matchesResponse
	if err := s.c.get(ctx, "/teams/"+url.PathEscape(id)+"/matches", q, &resp); err != nil {
		return domain.TeamStats{}, fmt.Errorf("feeds.FetchTeamStats: %s: %w", team.Name, err)
	}

	cs, ok := venueStats(id, team.Venue, resp.Matches, s.cfg.FormWindow)
	if !ok {
		return domain.TeamStats{}, fmt.Errorf("feeds.FetchTeamStats: %s %s: %w", team.Name, team.Venue, domain.ErrNoStats)
	}
	if b, err := json.Marshal(cs); err == nil {
		if err := s.cache.Set(ctx, key, b, teamStatsTTL); err != nil {
			slog.Debug("stats cache write failed", "err", err)
		}
	}
	return cs.toDomain(team.Venue), nil
}

// resolveTeamID busca el id del equipo por nombre en la competición.
func (s *StatsClient) resolveTeamID(ctx context.Context, code, name string) (string, error) {
	key := fmt.Sprintf("team_id:%s:%s", code, matcher.Normalize(name))
	if b, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		return string(b), nil
	}

	teams, err := s.competitionTeams(ctx, code)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return "", domain.ErrNoStats
		}
		return "", err
	}

	best, bestScore := "", 0.0
	for _, t := range teams {
		score := max(matcher.Similarity(name, t.Name), matcher.Similarity(name, t.ShortName))
		if score > bestScore {
			best, bestScore = t.ID.String(), score
		}
	}
	if best == "" || bestScore < s.cfg.NameThreshold {
		slog.Debug("team not found in competition", "team", name, "competition", code, "best_score", bestScore)
		return "", domain.ErrNoStats
	}

	if err := s.cache.Set(ctx, key, []byte(best), teamIDTTL); err != nil {
		slog.Debug("team id cache write failed", "err", err)
	}
	return best, nil
}

func (s *StatsClient) competitionTeams(ctx context.Context, code string) ([]teamItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if teams, ok := s.teams[code]; ok {
		return teams, nil
	}
	var resp teamsResponse
	if err := s.c.get(ctx, "/competitions/"+url.PathEscape(code)+"/teams", nil, &resp); err != nil {
		return nil, err
	}
	s.teams[code] = resp.Teams
	return resp.Teams, nil
}

func (s *StatsClient) competitionCode(competition string) string {
	if code, ok := s.cfg.CompetitionCodes[competition]; ok {
		return code
	}
	return competition
}

func venueParam(v domain.Venue) string {
	if v == domain.VenueAway {
		return "AWAY"
	}
	return "HOME"
}
