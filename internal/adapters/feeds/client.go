// Package feeds implementa los proveedores de datos remotos: cuotas (Feed A),
// calendario (Feed B) y estadísticas por equipo.
package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
	httpTimeout   = 15 * time.Second
)

// ErrMissingAPIKey se devuelve al construir un cliente sin credenciales.
var ErrMissingAPIKey = errors.New("feeds: missing api key")

// client es el HTTP client común con rate limiting y retries. Cada feed
// tiene el suyo porque los límites son por proveedor.
type client struct {
	http      *http.Client
	base      string
	authKey   string // nombre del header de autenticación
	apiKey    string
	limiter   *rate.Limiter
	retryWait time.Duration
}

func newClient(base, authHeader, apiKey string, ratePerSec float64, burst int) *client {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &client{
		http:      &http.Client{Timeout: httpTimeout},
		base:      base,
		authKey:   authHeader,
		apiKey:    apiKey,
		limiter:   rate.NewLimiter(rate.Limit(ratePerSec), burst),
		retryWait: baseRetryWait,
	}
}

// get hace un GET con rate limiting y retries. path se concatena al base URL.
func (c *client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.authKey != "" {
			req.Header.Set(c.authKey, c.apiKey)
		}
		return c.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la función con backoff exponencial.
func (c *client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries || ctx.Err() != nil {
				return fmt.Errorf("request failed after %d retries: %w", attempt, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by feed", "base", c.base, "attempt", attempt+1)
			if attempt == maxRetries {
				return &StatusError{Code: resp.StatusCode, Body: "rate limited"}
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return &StatusError{Code: resp.StatusCode, Body: string(body)}
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * c.retryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}

// StatusError es una respuesta 4xx (no se reintenta).
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("client error %d: %s", e.Code, e.Body)
}

// Option ajusta un cliente de feed.
type Option func(*client)

// WithHTTPClient sustituye el http.Client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *client) { c.http = h }
}

// WithRetryWait cambia la espera base del backoff (tests).
func WithRetryWait(d time.Duration) Option {
	return func(c *client) { c.retryWait = d }
}

// WithRate cambia el límite de peticiones por segundo.
func WithRate(perSec float64, burst int) Option {
	return func(c *client) { c.limiter = rate.NewLimiter(rate.Limit(perSec), burst) }
}
