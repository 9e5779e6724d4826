package main

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/valuebot/internal/schedule"
)

// runToday imprime el reporte del día. Con -schedule se queda corriendo y
// reporta en cada disparo del cron (siempre recalculando).
func runToday(ctx context.Context, app *app, opts options) error {
	if opts.schedule == "" {
		_, err := app.engine.Report(ctx, opts.bankroll, opts.force)
		return err
	}

	runner := schedule.New(ctx)
	if _, err := runner.Add(opts.schedule, func(ctx context.Context) {
		if _, err := app.engine.Report(ctx, opts.bankroll, true); err != nil {
			slog.Error("scheduled report failed", "err", err)
		}
	}); err != nil {
		return err
	}
	slog.Info("daemon mode: waiting for schedule", "schedule", opts.schedule)
	runner.Run(ctx)
	return nil
}
