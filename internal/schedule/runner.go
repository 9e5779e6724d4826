// Package schedule ejecuta el pipeline diario según una expresión cron.
package schedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Runner envuelve un cron con segundos y un contexto base para los jobs.
type Runner struct {
	cron    *cron.Cron
	baseCtx context.Context
}

// New crea un Runner. Los jobs reciben baseCtx.
func New(baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron:    cron.New(cron.WithSeconds()),
		baseCtx: baseCtx,
	}
}

// Add registra un job. spec lleva seis campos (con segundos).
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	id, err := r.cron.AddFunc(spec, func() {
		if r.baseCtx.Err() != nil {
			return
		}
		job(r.baseCtx)
	})
	if err != nil {
		return 0, fmt.Errorf("schedule.Add: %q: %w", spec, err)
	}
	return id, nil
}

// Start arranca el cron en segundo plano.
func (r *Runner) Start() {
	slog.Info("cron started", "jobs", len(r.cron.Entries()))
	r.cron.Start()
}

// Stop detiene el cron y espera a que terminen los jobs en curso.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	slog.Info("cron stopped")
}

// Run arranca el cron y bloquea hasta que ctx se cancele.
func (r *Runner) Run(ctx context.Context) {
	r.Start()
	<-ctx.Done()
	r.Stop()
}
