package domain

// Price es una cuota decimal ofrecida por una casa para un mercado.
type Price struct {
	Market    Market
	Odds      float64
	Bookmaker string
}

// OddsEvent es un partido tal como lo publica el feed de cuotas (Feed A).
// Kickoff se conserva como string: cada feed usa un formato distinto y el
// matcher lo parsea best-effort.
type OddsEvent struct {
	ID          string
	Sport       Sport
	Home        string
	Away        string
	Competition string
	Kickoff     string
	Prices      []Price
}

// Fixture es un partido del feed de calendario/estadísticas (Feed B).
type Fixture struct {
	ID          string
	Home        string
	Away        string
	HomeTeamID  string
	AwayTeamID  string
	Competition string
	Kickoff     string
}

// MatchRecord es la identidad reconciliada de un partido. Lo construye el
// matcher y solo vive en memoria durante una ejecución.
type MatchRecord struct {
	Sport       Sport
	Home        string
	Away        string
	Competition string
	Kickoff     string
	OddsID      string
	FixtureID   string // vacío si no hubo match en Feed B
	HomeTeamID  string
	AwayTeamID  string
	Prices      []Price
}

// Label devuelve "Home vs Away".
func (m MatchRecord) Label() string {
	return m.Home + " vs " + m.Away
}

// Matched devuelve true si el registro tiene identificadores de Feed B.
func (m MatchRecord) Matched() bool {
	return m.FixtureID != ""
}

// Venue indica si las estadísticas son de local o visitante.
type Venue string

const (
	VenueHome Venue = "home"
	VenueAway Venue = "away"
)

// Outcome es un resultado de la racha reciente.
type Outcome byte

const (
	Win  Outcome = 'W'
	Draw Outcome = 'D'
	Loss Outcome = 'L'
)

// ParseForm convierte "WWDLW" en una secuencia de Outcome. Ignora símbolos desconocidos.
func ParseForm(s string) []Outcome {
	form := make([]Outcome, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch o := Outcome(s[i]); o {
		case Win, Draw, Loss:
			form = append(form, o)
		}
	}
	return form
}

// TeamRef identifica un equipo para pedir sus estadísticas.
type TeamRef struct {
	ID          string
	Name        string
	Competition string
	Venue       Venue
}

// TeamStats son las medias de un equipo en una condición (local/visitante).
type TeamStats struct {
	TeamID      string
	Venue       Venue
	AvgScored   float64
	AvgConceded float64
	Form        []Outcome
}

// Count devuelve cuántas veces aparece o en la racha.
func (s TeamStats) Count(o Outcome) int {
	n := 0
	for _, f := range s.Form {
		if f == o {
			n++
		}
	}
	return n
}
