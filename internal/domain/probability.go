package domain

import "math"

// Round redondea x a n decimales (half away from zero).
func Round(x float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(x*p) / p
}

// FloorCents trunca x a céntimos. Un stake truncado nunca supera el tope
// del que sale; el epsilon absorbe el error de 0.15*100 y similares.
func FloorCents(x float64) float64 {
	return math.Floor(x*100+1e-9) / 100
}

// PoissonPMF devuelve P(X = k) para X ~ Poisson(lambda).
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 || lambda < 0 {
		return 0
	}
	if lambda == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	// log-space para evitar overflow con k grandes
	lg, _ := math.Lgamma(float64(k + 1))
	return math.Exp(float64(k)*math.Log(lambda) - lambda - lg)
}

// PoissonCDF devuelve P(X <= k) para X ~ Poisson(lambda).
func PoissonCDF(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i <= k; i++ {
		sum += PoissonPMF(i, lambda)
	}
	return math.Min(sum, 1)
}

// NormalCDF devuelve P(X <= x) para X ~ N(mean, sd).
func NormalCDF(x, mean, sd float64) float64 {
	if sd <= 0 {
		if x < mean {
			return 0
		}
		return 1
	}
	return 0.5 * (1 + math.Erf((x-mean)/(sd*math.Sqrt2)))
}

// ExpectedValue devuelve el EV en porcentaje redondeado a 2 decimales.
//
//	ev = round((prob × odds − 1) × 100, 2)
func ExpectedValue(prob, odds float64) float64 {
	return Round((prob*odds-1)*100, 2)
}

// IsValue aplica la doble condición de aceptación: el EV redondeado llega al
// mínimo y el modelo supera la probabilidad implícita del mercado.
func IsValue(prob, odds, minEV float64) (bool, float64) {
	ev := ExpectedValue(prob, odds)
	if odds <= 0 {
		return false, ev
	}
	return ev >= minEV && prob > 1/odds, ev
}
