package domain

import "time"

// RiskSummary es el resumen de riesgo de la sesión.
type RiskSummary struct {
	DailyExposure    float64 `json:"daily_exposure"`
	DailyExposurePct float64 `json:"daily_exposure_pct"`
	DailyLimit       float64 `json:"daily_limit"`
	BetsToday        int     `json:"bets_today"`
	Wins             int     `json:"current_wins"`
	Losses           int     `json:"current_losses"`
	StakeAdjustment  float64 `json:"stake_adjustment"`
}

// Report es la salida de una ejecución del pipeline: datos planos que cada
// superficie (consola, API) renderiza a su manera.
type Report struct {
	Day              string              `json:"day"`
	Opportunities    []Opportunity       `json:"opportunities"`
	Multiples        []MultipleCandidate `json:"multiples"`
	Rejections       []Rejection         `json:"rejections"`
	Phase            PhaseInfo           `json:"phase"`
	Risk             RiskSummary         `json:"risk"`
	Completion       *PhaseCompletion    `json:"phase_completion,omitempty"`
	MatchesProcessed int                 `json:"matches_processed"`
	MatchesMatched   int                 `json:"matches_matched"`
	FromCache        bool                `json:"from_cache"`
	GeneratedAt      time.Time           `json:"generated_at"`
}
