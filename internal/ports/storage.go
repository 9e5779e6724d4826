package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/valuebot/internal/domain"
)

// BetStore persiste el historial de apuestas.
type BetStore interface {
	// Insert guarda una apuesta nueva en estado pending.
	Insert(ctx context.Context, bet domain.Bet) error

	// Settle fija estado terminal, profit y fecha de cierre. Devuelve
	// domain.ErrBetNotFound o domain.ErrBetSettled según corresponda.
	Settle(ctx context.Context, id string, status domain.BetStatus, profit float64, closedAt time.Time) error

	Get(ctx context.Context, id string) (domain.Bet, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Bet, error)
	ListPending(ctx context.Context) ([]domain.Bet, error)

	// ListSince devuelve las apuestas creadas desde t en orden cronológico.
	ListSince(ctx context.Context, t time.Time) ([]domain.Bet, error)

	// Stats agrega las apuestas liquidadas; phase nil = todas las fases.
	Stats(ctx context.Context, phase *domain.Phase) (domain.BetStats, error)

	Close() error
}

// RunCache guarda el resultado de la ejecución diaria.
type RunCache interface {
	SaveRun(ctx context.Context, run domain.DailyRun) error
	// LoadRun devuelve ok=false si no hay ejecución guardada para el día.
	LoadRun(ctx context.Context, day string) (domain.DailyRun, bool, error)
}

// KVCache es la frontera clave-valor usada por los colaboradores remotos.
type KVCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
