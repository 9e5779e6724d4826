package feeds

import "encoding/json"

// --- Feed A: cuotas ---

// oddsEvent es un partido del feed de cuotas. Los mercados llegan como mapa
// key → precio, donde el precio puede ser un número o un objeto.
type oddsEvent struct {
	ID           flexID                     `json:"id"`
	Sport        string                     `json:"sport"`
	HomeTeam     string                     `json:"home_team"`
	AwayTeam     string                     `json:"away_team"`
	Competition  string                     `json:"competition"`
	CommenceTime string                     `json:"commence_time"`
	Markets      map[string]json.RawMessage `json:"markets"`
}

// priceObject es la forma extendida de un precio: {"odd": 1.95, "bookmaker": "x"}.
// Algunos proveedores usan "price" en lugar de "odd".
type priceObject struct {
	Odd       *float64 `json:"odd"`
	Price     *float64 `json:"price"`
	Bookmaker string   `json:"bookmaker"`
}

// --- Feed B: calendario (formato api-sports) ---

type fixturesResponse struct {
	Response []fixtureItem `json:"response"`
}

type fixtureItem struct {
	Fixture struct {
		ID     flexID `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID   flexID `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Teams struct {
		Home fixtureTeam `json:"home"`
		Away fixtureTeam `json:"away"`
	} `json:"teams"`
}

type fixtureTeam struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

// --- Estadísticas (formato football-data) ---

type teamsResponse struct {
	Teams []teamItem `json:"teams"`
}

type teamItem struct {
	ID        flexID `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type matchesResponse struct {
	Matches []finishedMatch `json:"matches"`
}

type finishedMatch struct {
	UTCDate string `json:"utcDate"`
	Score   struct {
		FullTime struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"fullTime"`
	} `json:"score"`
}

// cachedStats es lo que se guarda en el KVCache por equipo y condición.
type cachedStats struct {
	TeamID      string  `json:"team_id"`
	AvgScored   float64 `json:"avg_scored"`
	AvgConceded float64 `json:"avg_conceded"`
	Form        string  `json:"form"`
}

// flexID acepta identificadores numéricos o string.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) String() string { return string(f) }
