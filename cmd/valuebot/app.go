package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/valuebot/config"
	"github.com/alejandrodnm/valuebot/internal/adapters/cache"
	"github.com/alejandrodnm/valuebot/internal/adapters/feeds"
	"github.com/alejandrodnm/valuebot/internal/adapters/metrics"
	"github.com/alejandrodnm/valuebot/internal/adapters/notify"
	"github.com/alejandrodnm/valuebot/internal/adapters/storage"
	"github.com/alejandrodnm/valuebot/internal/application/engine"
	"github.com/alejandrodnm/valuebot/internal/ports"
	"github.com/alejandrodnm/valuebot/internal/scanner"
)

// app es el grafo de dependencias de una ejecución del binario.
type app struct {
	cfg     *config.Config
	engine  *engine.Engine
	console *notify.Console
	metrics *metrics.Metrics
	store   *storage.Storage
	kv      ports.KVCache
}

func newApp(ctx context.Context, cfg *config.Config, opts options) (*app, error) {
	format, err := notify.ParseFormat(cfg.Report.Format)
	if err != nil {
		return nil, fmt.Errorf("report format: %w", err)
	}

	driver, dsn := cfg.Storage.Driver, cfg.Storage.DSN
	if opts.dryRun {
		driver, dsn = "sqlite", ":memory:"
	}
	store, err := storage.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	kv := cache.Open(ctx, cfg.Cache.RedisAddr, cfg.Cache.Password, cfg.Cache.Prefix)

	odds, fixtures, stats, err := buildFeeds(cfg, kv, opts.dryRun)
	if err != nil {
		store.Close()
		return nil, err
	}

	rejections, err := notify.NewRejectionLog(cfg.Report.RejectionLog)
	if err != nil {
		store.Close()
		return nil, err
	}

	m := metrics.New()
	console := notify.NewConsole(format)
	sc := scanner.New(cfg.ScannerConfig(), odds, fixtures, stats,
		scanner.WithRunCache(store),
		scanner.WithRejectionSink(rejections),
		scanner.WithNotifier(console),
		scanner.WithObserver(m),
		scanner.WithStrategies(cfg.Strategies()),
	)

	eng := engine.New(engine.Config{
		Bankroll:        cfg.BankrollConfig(),
		Limits:          cfg.RiskLimits(),
		DefaultBankroll: cfg.Bankroll.Amount,
	}, sc, store, m)

	return &app{cfg: cfg, engine: eng, console: console, metrics: m, store: store, kv: kv}, nil
}

// buildFeeds devuelve los tres colaboradores: ficheros locales en dry-run,
// clientes HTTP si no. Una credencial ausente falla aquí, no dentro del motor.
func buildFeeds(cfg *config.Config, kv ports.KVCache, dryRun bool) (ports.OddsProvider, ports.FixtureProvider, ports.StatsProvider, error) {
	if dryRun {
		src := feeds.NewFixtureSource(cfg.Feeds.DryRunDir, time.Now())
		slog.Info("dry-run: serving feeds from local fixtures", "dir", cfg.Feeds.DryRunDir)
		return src, src, src, nil
	}

	var opts []feeds.Option
	if cfg.Feeds.RatePerSec > 0 {
		opts = append(opts, feeds.WithRate(cfg.Feeds.RatePerSec, 5))
	}

	odds, err := feeds.NewOddsClient(cfg.Feeds.OddsURL, cfg.Feeds.OddsKey, opts...)
	if err != nil {
		return nil, nil, nil, err
	}
	fixtures, err := feeds.NewFixturesClient(cfg.Feeds.FixturesURL, cfg.Feeds.FixturesKey, kv, opts...)
	if err != nil {
		return nil, nil, nil, err
	}
	stats, err := feeds.NewStatsClient(cfg.StatsConfig(), kv, opts...)
	if err != nil {
		return nil, nil, nil, err
	}
	return odds, fixtures, stats, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("close store", "err", err)
	}
	if c, ok := a.kv.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			slog.Warn("close cache", "err", err)
		}
	}
}
