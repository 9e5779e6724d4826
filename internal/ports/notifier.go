package ports

import (
	"context"

	"github.com/alejandrodnm/valuebot/internal/domain"
)

// Notifier presenta el reporte diario al usuario.
type Notifier interface {
	Notify(ctx context.Context, report domain.Report) error
}

// RejectionSink recibe cada oportunidad rechazada con sus motivos.
type RejectionSink interface {
	Record(ctx context.Context, r domain.Rejection) error
}
