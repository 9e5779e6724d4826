package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Sport identifica el modelo de probabilidad a usar para un evento.
type Sport string

const (
	SportSoccer   Sport = "soccer"
	SportGridiron Sport = "gridiron"
)

// MarketKind es la familia de mercado soportada por el motor.
type MarketKind int

const (
	KindTotal MarketKind = iota
	KindHandicap
	KindBTTS
)

// String devuelve el nombre corto del tipo de mercado.
func (k MarketKind) String() string {
	switch k {
	case KindTotal:
		return "total"
	case KindHandicap:
		return "handicap"
	case KindBTTS:
		return "btts"
	default:
		return "unknown"
	}
}

// Side distingue over/under en mercados de totales.
type Side int

const (
	SideNone Side = iota
	SideOver
	SideUnder
)

// Market es el descriptor tipado de un mercado. Se construye una sola vez en el
// borde del feed (ParseMarketKey) y el motor nunca vuelve a parsear strings.
type Market struct {
	Kind MarketKind
	Side Side    // solo KindTotal
	Line float64 // total o handicap; 0 para BTTS
}

// Over construye el mercado "Over <line>".
func Over(line float64) Market { return Market{Kind: KindTotal, Side: SideOver, Line: line} }

// Under construye el mercado "Under <line>".
func Under(line float64) Market { return Market{Kind: KindTotal, Side: SideUnder, Line: line} }

// Handicap construye un mercado de handicap del local con la línea firmada.
func Handicap(line float64) Market { return Market{Kind: KindHandicap, Line: line} }

// BTTS construye el mercado "ambos marcan".
func BTTS() Market { return Market{Kind: KindBTTS} }

// ParseMarketKey convierte una key del feed de cuotas (over_2.5, under_2.5,
// spread_-0.5, btts_yes) en un Market. ok=false para keys desconocidas.
func ParseMarketKey(key string) (Market, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "btts_yes" {
		return BTTS(), true
	}

	prefix, raw, found := strings.Cut(key, "_")
	if !found {
		return Market{}, false
	}
	line, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Market{}, false
	}

	switch prefix {
	case "over":
		return Over(line), true
	case "under":
		return Under(line), true
	case "spread":
		return Handicap(line), true
	default:
		return Market{}, false
	}
}

// Key devuelve la key canónica del feed para el mercado.
func (m Market) Key() string {
	switch m.Kind {
	case KindBTTS:
		return "btts_yes"
	case KindHandicap:
		return "spread_" + formatLine(m.Line)
	default:
		if m.Side == SideUnder {
			return "under_" + formatLine(m.Line)
		}
		return "over_" + formatLine(m.Line)
	}
}

// String devuelve la etiqueta legible del mercado ("Over 2.5", "Handicap -0.5", "BTTS").
func (m Market) String() string {
	switch m.Kind {
	case KindBTTS:
		return "BTTS"
	case KindHandicap:
		return fmt.Sprintf("Handicap %+.1f", m.Line)
	default:
		if m.Side == SideUnder {
			return "Under " + formatLine(m.Line)
		}
		return "Over " + formatLine(m.Line)
	}
}

func formatLine(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MarshalText serializa el mercado como su key canónica.
func (m Market) MarshalText() ([]byte, error) {
	return []byte(m.Key()), nil
}

// UnmarshalText acepta cualquier key reconocida por ParseMarketKey.
func (m *Market) UnmarshalText(b []byte) error {
	parsed, ok := ParseMarketKey(string(b))
	if !ok {
		return fmt.Errorf("domain.Market: unknown market key %q", string(b))
	}
	*m = parsed
	return nil
}
