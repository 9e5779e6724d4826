package main

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/valuebot/internal/adapters/api"
	"github.com/alejandrodnm/valuebot/internal/schedule"
)

// runServe levanta la API REST. Con -schedule (o scan.schedule en config)
// también ejecuta el reporte diario en segundo plano.
func runServe(ctx context.Context, app *app, opts options) error {
	spec := opts.schedule
	if spec == "" {
		spec = app.cfg.Scan.Schedule
	}
	if spec != "" {
		runner := schedule.New(ctx)
		if _, err := runner.Add(spec, func(ctx context.Context) {
			if _, err := app.engine.Report(ctx, 0, true); err != nil {
				slog.Error("scheduled report failed", "err", err)
			}
		}); err != nil {
			return err
		}
		runner.Start()
		defer runner.Stop()
	}

	srv := api.NewServer(api.Config{
		Addr:           app.cfg.API.Addr,
		AllowedOrigins: app.cfg.API.AllowedOrigins,
	}, app.engine, app.metrics.Handler())
	return srv.ListenAndServe(ctx)
}
