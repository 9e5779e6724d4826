package scanner

import (
	"sort"

	"github.com/alejandrodnm/valuebot/internal/domain"
)

// MultiplesConfig controla la búsqueda de combinadas.
type MultiplesConfig struct {
	MinProbability float64
	MaxLegs        int
	TopN           int
	// StakePct es la fracción del bankroll por combinada para cada fase en la
	// que se sugieren combinadas. Fases ausentes no reciben combinadas.
	StakePct map[domain.Phase]float64
}

// DefaultMultiplesConfig: prob ≥ 0.30, hasta 3 patas, top 3, solo fases 1 (8%) y 2 (5%).
func DefaultMultiplesConfig() MultiplesConfig {
	return MultiplesConfig{
		MinProbability: 0.30,
		MaxLegs:        3,
		TopN:           3,
		StakePct: map[domain.Phase]float64{
			domain.Phase1: 0.08,
			domain.Phase2: 0.05,
		},
	}
}

// CanCombine es la guarda de correlación: nunca el mismo partido ni la
// misma competición.
func CanCombine(a, b domain.Opportunity) bool {
	return a.Match != b.Match && a.Competition != b.Competition
}

// DetectMultiples enumera todas las combinaciones de 2..maxLegs patas
// independientes y devuelve las que tienen probabilidad combinada ≥ minProb y
// EV > 0, ordenadas por EV descendente.
func DetectMultiples(opps []domain.Opportunity, minProb float64, maxLegs int) []domain.MultipleCandidate {
	var out []domain.MultipleCandidate
	for n := 2; n <= maxLegs; n++ {
		combinations(len(opps), n, func(idx []int) {
			legs := make([]domain.Opportunity, len(idx))
			for i, k := range idx {
				legs[i] = opps[k]
			}
			for i := range legs {
				for j := i + 1; j < len(legs); j++ {
					if !CanCombine(legs[i], legs[j]) {
						return
					}
				}
			}

			prob, odds := 1.0, 1.0
			for _, l := range legs {
				prob *= l.Probability
				odds *= l.Odds
			}
			odds = domain.Round(odds, 2)
			if prob < minProb {
				return
			}
			ev := (prob*odds - 1) * 100
			if ev <= 0 {
				return
			}
			out = append(out, domain.MultipleCandidate{
				Legs:        legs,
				Probability: domain.Round(prob, 4),
				Odds:        odds,
				EV:          domain.Round(ev, 2),
			})
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].EV > out[j].EV })
	return out
}

// FormatMultiple fija stake, retorno potencial y beneficio de una combinada.
func FormatMultiple(m domain.MultipleCandidate, stake float64) domain.MultipleCandidate {
	ret := stake * m.Odds
	m.Stake = domain.Round(stake, 2)
	m.Return = domain.Round(ret, 2)
	m.Profit = domain.Round(ret-stake, 2)
	return m
}

// combinations llama fn con cada subconjunto de k índices de [0,n) en orden
// lexicográfico. fn no debe retener idx.
func combinations(n, k int, fn func(idx []int)) {
	if k > n || k <= 0 {
		return
	}
	idx := make([]int, k)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == k {
			fn(idx)
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			idx[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
}
