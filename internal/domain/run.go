package domain

import "time"

// DailyRun es el resultado cacheado de una ejecución del pipeline para un día.
type DailyRun struct {
	Day           string              `json:"day"` // YYYY-MM-DD
	Opportunities []Opportunity       `json:"opportunities"`
	Multiples     []MultipleCandidate `json:"multiples"`
	Rejections    []Rejection         `json:"rejections"`
	CreatedAt     time.Time           `json:"created_at"`
}

// DayKey formatea t como clave de día en UTC. El día de la cache diaria y el
// del límite de exposición son el mismo.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// StartOfDay devuelve la medianoche UTC del día de t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
