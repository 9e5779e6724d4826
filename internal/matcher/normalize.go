package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Sufijos de club que se descartan siempre.
var clubTokens = map[string]bool{"fc": true, "cf": true, "sc": true, "afc": true, "bfc": true}

// Tokens que se descartan salvo que el nombre sea un alias canónico
// (así "manchester united" y "manchester city" no colapsan).
var weakTokens = map[string]bool{"united": true, "city": true}

// aliases mapea abreviaturas conocidas a un nombre canónico.
var aliases = map[string]string{
	"man utd":                    "manchester united",
	"man united":                 "manchester united",
	"man city":                   "manchester city",
	"spurs":                      "tottenham",
	"tottenham hotspur":          "tottenham",
	"athletic bilbao":            "athletic club",
	"ac milan":                   "milan",
	"inter milan":                "inter",
	"internazionale":             "inter",
	"bayern munich":              "bayern munchen",
	"sporting lisbon":            "sporting cp",
	"sporting clube de portugal": "sporting cp",
	"atletico paranaense":        "athletico paranaense",
}

var canonical = func() map[string]bool {
	c := make(map[string]bool, len(aliases))
	for _, v := range aliases {
		c[v] = true
	}
	return c
}()

// Normalize devuelve la forma comparable de un nombre de equipo: minúsculas,
// sin acentos ni puntuación, sin sufijos de club y resuelto contra la tabla de alias.
func Normalize(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		s = strings.ToLower(strings.TrimSpace(name))
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "'", "")

	s = strings.Join(dropTokens(strings.Fields(s), clubTokens), " ")
	if alias, ok := aliases[s]; ok {
		s = alias
	}
	if canonical[s] {
		return s
	}
	return strings.Join(dropTokens(strings.Fields(s), weakTokens), " ")
}

// dropTokens elimina los tokens del set, pero nunca deja el nombre vacío.
func dropTokens(tokens []string, set map[string]bool) []string {
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !set[tok] {
			kept = append(kept, tok)
		}
	}
	if len(kept) == 0 {
		return tokens
	}
	return kept
}
