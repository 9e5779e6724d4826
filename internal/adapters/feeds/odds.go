package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/alejandrodnm/valuebot/internal/domain"
)

const (
	defaultOddsBase = "https://api.odds-feed.example/v1"
	oddsRatePerSec  = 2
)

// OddsClient implementa ports.OddsProvider contra el feed de cuotas.
type OddsClient struct {
	c *client
}

// NewOddsClient crea el cliente del feed de cuotas. apiKey es obligatoria.
func NewOddsClient(base, apiKey string, opts ...Option) (*OddsClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("feeds.NewOddsClient: %w", ErrMissingAPIKey)
	}
	if base == "" {
		base = defaultOddsBase
	}
	c := newClient(base, "x-api-key", apiKey, oddsRatePerSec, 2)
	for _, o := range opts {
		o(c)
	}
	return &OddsClient{c: c}, nil
}

// FetchOdds implementa ports.OddsProvider.
func (o *OddsClient) FetchOdds(ctx context.Context, competition string) ([]domain.OddsEvent, error) {
	var raw []oddsEvent
	q := url.Values{"competition": {competition}}
	if err := o.c.get(ctx, "/odds", q, &raw); err != nil {
		return nil, fmt.Errorf("feeds.FetchOdds: %s: %w", competition, err)
	}

	events := make([]domain.OddsEvent, 0, len(raw))
	for _, ev := range raw {
		mapped := mapOddsEvent(ev, competition)
		if mapped.Home == "" || mapped.Away == "" {
			continue
		}
		events = append(events, mapped)
	}

	slog.Debug("odds fetched", "competition", competition, "events", len(events))
	return events, nil
}
