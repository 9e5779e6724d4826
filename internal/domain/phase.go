package domain

import "strconv"

// Phase es el tramo de bankroll que gobierna la agresividad del staking.
// Las fases 1..4 son de crecimiento; PhaseConsolidation es terminal.
type Phase int

const (
	Phase1 Phase = iota + 1
	Phase2
	Phase3
	Phase4
	PhaseConsolidation
)

// String devuelve "1".."4" o "consolidation".
func (p Phase) String() string {
	if p == PhaseConsolidation {
		return "consolidation"
	}
	return strconv.Itoa(int(p))
}

// Index devuelve la posición 0..4 de la fase en las tablas por fase.
func (p Phase) Index() int {
	if p < Phase1 {
		return 0
	}
	if p > PhaseConsolidation {
		return int(PhaseConsolidation) - 1
	}
	return int(p) - 1
}

// ParsePhase acepta "1".."4", "5" o "consolidation".
func ParsePhase(s string) (Phase, bool) {
	if s == "consolidation" {
		return PhaseConsolidation, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < int(Phase1) || n > int(PhaseConsolidation) {
		return 0, false
	}
	return Phase(n), true
}

// PhaseInfo es la foto de la fase actual para reportes.
type PhaseInfo struct {
	Phase       Phase   `json:"phase"`
	Bankroll    float64 `json:"bankroll"`
	Target      float64 `json:"target,omitempty"` // 0 en consolidación
	ProgressPct float64 `json:"progress_pct"`
	Remaining   float64 `json:"remaining"`
	MinEV       float64 `json:"min_ev"`
	MaxStakePct float64 `json:"max_stake_pct"`
}

// PhaseCompletion se emite cuando el bankroll alcanza el objetivo de la fase.
type PhaseCompletion struct {
	Phase    Phase   `json:"phase"`
	Bankroll float64 `json:"bankroll"`
	Target   float64 `json:"target"`
	Withdraw float64 `json:"withdraw"`
	Remain   float64 `json:"remain"`
}
