package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// letters that survive NFD decomposition unchanged but have an ascii spelling
var transliterations = map[rune]string{
	'ø': "o", 'Ø': "O",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'ß': "ss",
	'đ': "d", 'Đ': "D",
	'ł': "l", 'Ł': "L",
	'þ': "th", 'Þ': "Th",
	'ı': "i",
}

/**
* NormalizeIdentifier turns a team display name into a filesystem safe key.
* Anything that is not a letter or a digit is dropped, accents are removed and
* the result only ever contains ascii letters and digits.
* "Atlético Madrid" -> "AtleticoMadrid", "Baník Ostrava" -> "BanikOstrava"
 */
func NormalizeIdentifier(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range norm.NFD.String(name) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
			continue
		}
		if t, ok := transliterations[r]; ok {
			b.WriteString(t)
		}
	}
	return b.String()
}

// CleanText trims whitespace including the non breaking spaces fbref pads cells with
func CleanText(s string) string {
	return strings.TrimSpace(s)
}

// ParseOptionalInt returns nil for blank cells and an error for anything non numeric.
// Scores such as "2 (4)" (penalty shootouts) keep only the leading number.
func ParseOptionalInt(s string) (*int, error) {
	s = CleanText(s)
	if s == "" {
		return nil, nil
	}
	if i := strings.IndexAny(s, " ("); i > 0 {
		s = s[:i]
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("cannot convert string '%s' to integer: %w", s, err)
	}
	return &v, nil
}

// ParseOptionalFloat returns nil for blank cells
func ParseOptionalFloat(s string) (*float64, error) {
	s = strings.ReplaceAll(CleanText(s), ",", "")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("cannot convert string '%s' to float: %w", s, err)
	}
	if math.IsNaN(v) {
		return nil, nil
	}
	return &v, nil
}
