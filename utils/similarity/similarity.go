// Package similarity scores how closely two media titles match, for fuzzy
// free-text seed resolution.
package similarity

import (
	"strings"
	"unicode"
)

// TitleScore rates how well candidate matches query on a 0..1 scale:
//
//	1.0  exact match (case-insensitive, punctuation-insensitive)
//	0.8  one title contains the other
//	0.7  base titles match (subtitle / sequel suffix stripped)
//	else partial credit from the shared-word ratio, or 0 with no overlap
//
// Callers typically discard scores at or below 0.3.
func TitleScore(query, candidate string) float64 {
	q := normalize(query)
	c := normalize(candidate)

	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 1.0
	}
	if strings.Contains(c, q) || strings.Contains(q, c) {
		return 0.8
	}
	if bq, bc := baseTitle(query), baseTitle(candidate); bq != "" && bq == bc {
		return 0.7
	}
	return sharedWordScore(q, c)
}

// baseTitle strips subtitles and sequel markers: everything after the
// first ":" or " - ", plus a trailing number or roman numeral, so that
// "Alien: Romulus" and "Alien 3" both reduce to "alien".
func baseTitle(s string) string {
	if idx := strings.IndexAny(s, ":"); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.Index(s, " - "); idx >= 0 {
		s = s[:idx]
	}
	s = normalize(s)

	words := strings.Fields(s)
	if len(words) > 1 {
		if last := words[len(words)-1]; isSequelMarker(last) {
			words = words[:len(words)-1]
		}
	}
	return strings.Join(words, " ")
}

func isSequelMarker(w string) bool {
	allDigits := true
	for _, r := range w {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return true
	}
	switch w {
	case "i", "ii", "iii", "iv", "v", "vi", "vii", "viii", "ix", "x":
		return true
	}
	return false
}

// sharedWordScore gives partial credit proportional to the fraction of
// words the two titles share: 0.5 plus a bonus scaled by the overlap
// ratio, or 0 when no words are shared at all.
func sharedWordScore(a, b string) float64 {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(wordsA))
	for _, w := range wordsA {
		setA[w] = true
	}
	shared := 0
	for _, w := range wordsB {
		if setA[w] {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}

	longest := len(wordsA)
	if len(wordsB) > longest {
		longest = len(wordsB)
	}
	return 0.5 + 0.2*(float64(shared)/float64(longest))
}

// normalize lowercases and strips punctuation so title comparison is
// forgiving; "&" is treated as "and" ("Me & You" matches "Me and You").
func normalize(s string) string {
	s = strings.ReplaceAll(s, "&", " and ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '.' || r == '-' || r == '_' || r == ':':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
