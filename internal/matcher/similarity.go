package matcher

// Similarity devuelve la similitud entre dos nombres en [0,1]. Nombres iguales
// tras Normalize puntúan 1.0; el resto usa el ratio de Ratcliff/Obershelp.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1.0
	}
	return Ratio(na, nb)
}

// Ratio es el ratio de Ratcliff/Obershelp: 2·M / (len(a)+len(b)), con M el
// total de caracteres en bloques coincidentes encontrados recursivamente.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2 * float64(matchingChars(ra, rb)) / float64(total)
}

func matchingChars(a, b []rune) int {
	i, j, k := longestMatch(a, b)
	if k == 0 {
		return 0
	}
	return k + matchingChars(a[:i], b[:j]) + matchingChars(a[i+k:], b[j+k:])
}

// longestMatch devuelve el bloque común más largo; en empate gana el que
// empieza antes en a y luego en b.
func longestMatch(a, b []rune) (besti, bestj, bestk int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > bestk {
					bestk = cur[j]
					besti, bestj = i-bestk, j-bestk
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return besti, bestj, bestk
}
