package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BetStatus es el estado de una apuesta registrada.
type BetStatus string

const (
	BetPending BetStatus = "pending"
	BetWon     BetStatus = "won"
	BetLost    BetStatus = "lost"
	BetVoid    BetStatus = "void"
)

// Terminal devuelve true para won/lost/void.
func (s BetStatus) Terminal() bool {
	return s == BetWon || s == BetLost || s == BetVoid
}

// ParseResult valida un resultado de liquidación.
func ParseResult(s string) (BetStatus, error) {
	switch st := BetStatus(s); st {
	case BetWon, BetLost, BetVoid:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidResult, s)
	}
}

// Bet es una apuesta persistida. Pasa de pending a un estado terminal una
// única vez; los estados terminales no se reabren.
type Bet struct {
	ID          string     `json:"id"`
	Match       string     `json:"match"`
	Competition string     `json:"competition"`
	Market      string     `json:"market"`
	Odds        float64    `json:"odds"`
	Stake       float64    `json:"stake"`
	Probability float64    `json:"probability"`
	EV          float64    `json:"ev"`
	Phase       Phase      `json:"phase"`
	Status      BetStatus  `json:"status"`
	Profit      float64    `json:"profit"`
	Legs        int        `json:"legs"` // 1 simple, 2-3 combinada
	CreatedAt   time.Time  `json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}

// Settle liquida la apuesta y calcula el profit:
//
//	won  → stake × (odds − 1)
//	lost → −stake
//	void → 0
func (b *Bet) Settle(result BetStatus, at time.Time) error {
	if b.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrBetSettled, b.ID, b.Status)
	}
	if !result.Terminal() {
		return fmt.Errorf("%w: %q", ErrInvalidResult, result)
	}
	b.Profit = SettleProfit(b.Stake, b.Odds, result)
	b.Status = result
	t := at.UTC()
	b.ClosedAt = &t
	return nil
}

// SettleProfit calcula el profit de una liquidación con aritmética decimal,
// redondeado a 2 decimales.
func SettleProfit(stake, odds float64, result BetStatus) float64 {
	s := decimal.NewFromFloat(stake)
	switch result {
	case BetWon:
		p := s.Mul(decimal.NewFromFloat(odds).Sub(decimal.NewFromInt(1))).Round(2)
		return p.InexactFloat64()
	case BetLost:
		return s.Neg().Round(2).InexactFloat64()
	default:
		return 0
	}
}

// BetStats es el agregado del historial de apuestas liquidadas.
type BetStats struct {
	Total       int     `json:"total"`
	Won         int     `json:"won"`
	Lost        int     `json:"lost"`
	Void        int     `json:"void"`
	WinRate     float64 `json:"win_rate"`
	TotalStaked float64 `json:"total_staked"`
	TotalProfit float64 `json:"total_profit"`
	ROI         float64 `json:"roi"`
	AvgOdds     float64 `json:"avg_odds"`
	AvgStake    float64 `json:"avg_stake"`
}
