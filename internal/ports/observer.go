package ports

import (
	"time"

	"github.com/alejandrodnm/valuebot/internal/domain"
)

// Observer recibe eventos del motor para métricas. Las implementaciones no
// deben bloquear.
type Observer interface {
	RunCompleted(d time.Duration, report domain.Report)
	FeedError(feed string)
	StatsMissing()
	Rejected(reason string)
	BetRegistered(bet domain.Bet)
	BetSettled(bet domain.Bet)
}

// NopObserver descarta todos los eventos. Es el observer por defecto.
type NopObserver struct{}

func (NopObserver) RunCompleted(time.Duration, domain.Report) {}
func (NopObserver) FeedError(string)                          {}
func (NopObserver) StatsMissing()                             {}
func (NopObserver) Rejected(string)                           {}
func (NopObserver) BetRegistered(domain.Bet)                  {}
func (NopObserver) BetSettled(domain.Bet)                     {}
