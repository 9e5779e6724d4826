package domain

import "time"

// Opportunity es una recomendación de apuesta con valor esperado positivo.
// Se crea en el análisis de mercados y no se muta después: solo pasa a Bet
// mediante un registro explícito.
type Opportunity struct {
	Match       string    `json:"match"`
	Home        string    `json:"home"`
	Away        string    `json:"away"`
	Competition string    `json:"competition"`
	Kickoff     string    `json:"kickoff,omitempty"`
	Sport       Sport     `json:"sport"`
	Market      Market    `json:"market"`
	Odds        float64   `json:"odds"`
	Bookmaker   string    `json:"bookmaker,omitempty"`
	Probability float64   `json:"probability"`
	EV          float64   `json:"ev"`
	Stake       float64   `json:"stake"`
	Return      float64   `json:"potential_return"`
	Phase       Phase     `json:"phase"`
	Expected    float64   `json:"expected,omitempty"` // goles/puntos esperados o margen
	ScannedAt   time.Time `json:"scanned_at"`
}

// MarketLabel devuelve la etiqueta legible del mercado.
func (o Opportunity) MarketLabel() string {
	return o.Market.String()
}

// Implied devuelve la probabilidad implícita de la cuota.
func (o Opportunity) Implied() float64 {
	if o.Odds <= 0 {
		return 0
	}
	return 1 / o.Odds
}

// MultipleCandidate es una combinada de 2-3 oportunidades independientes.
// Es derivada y efímera: solo se persiste si el usuario la registra como Bet.
type MultipleCandidate struct {
	Legs        []Opportunity `json:"legs"`
	Probability float64       `json:"combined_probability"`
	Odds        float64       `json:"combined_odds"`
	EV          float64       `json:"combined_ev"`
	Stake       float64       `json:"stake,omitempty"`
	Return      float64       `json:"potential_return,omitempty"`
	Profit      float64       `json:"potential_profit,omitempty"`
}

// Label devuelve los partidos de la combinada separados por " + ".
func (m MultipleCandidate) Label() string {
	s := ""
	for i, l := range m.Legs {
		if i > 0 {
			s += " + "
		}
		s += l.Match
	}
	return s
}

// Rejection registra por qué una oportunidad candidata no se aceptó.
type Rejection struct {
	Match       string    `json:"match"`
	Competition string    `json:"competition"`
	Market      string    `json:"market"`
	Reasons     []string  `json:"reasons"`
	At          time.Time `json:"timestamp"`
}
