package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/alejandrodnm/valuebot/internal/domain"
	"github.com/alejandrodnm/valuebot/internal/ports"
)

const (
	defaultFixturesBase = "https://v3.football.api-sports.io"
	fixturesRatePerSec  = 1
	fixturesTTL         = 6 * time.Hour
)

// FixturesClient implementa ports.FixtureProvider (formato api-sports).
// Si cache no es nil, el calendario del día se cachea 6h.
type FixturesClient struct {
	c     *client
	cache ports.KVCache
}

// NewFixturesClient crea el cliente del calendario. apiKey es obligatoria.
func NewFixturesClient(base, apiKey string, cache ports.KVCache, opts ...Option) (*FixturesClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("feeds.NewFixturesClient: %w", ErrMissingAPIKey)
	}
	if base == "" {
		base = defaultFixturesBase
	}
	c := newClient(base, "x-apisports-key", apiKey, fixturesRatePerSec, 2)
	for _, o := range opts {
		o(c)
	}
	return &FixturesClient{c: c, cache: cache}, nil
}

// FetchFixtures implementa ports.FixtureProvider.
func (f *FixturesClient) FetchFixtures(ctx context.Context, day time.Time) ([]domain.Fixture, error) {
	date := day.UTC().Format("2006-01-02")
	key := "fixtures:" + date

	if f.cache != nil {
		if b, ok, err := f.cache.Get(ctx, key); err == nil && ok {
			var cached []domain.Fixture
			if json.Unmarshal(b, &cached) == nil {
				slog.Debug("fixtures from cache", "date", date, "fixtures", len(cached))
				return cached, nil
			}
		}
	}

	var resp fixturesResponse
	if err := f.c.get(ctx, "/fixtures", url.Values{"date": {date}}, &resp); err != nil {
		return nil, fmt.Errorf("feeds.FetchFixtures: %s: %w", date, err)
	}
	fixtures := mapFixtures(resp.Response)

	if f.cache != nil {
		if b, err := json.Marshal(fixtures); err == nil {
			if err := f.cache.Set(ctx, key, b, fixturesTTL); err != nil {
				slog.Debug("fixtures cache write failed", "err", err)
			}
		}
	}

	slog.Debug("fixtures fetched", "date", date, "fixtures", len(fixtures))
	return fixtures, nil
}
