// Package georef builds the canonical geographic reference from raw
// geolocation samples and provides the city-name normalization used to
// compare entity records against it.
package georef

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, removes combining marks, and recomposes.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeCity lowercases a city name and strips diacritics and whitespace
// so that spelling variants like "São Paulo" and "sao paulo" compare equal.
// The normalized form is for comparison only; stored values keep the
// reference's canonical casing.
func NormalizeCity(name string) string {
	stripped, _, err := transform.String(stripMarks, name)
	if err != nil {
		stripped = name
	}
	stripped = strings.ToLower(stripped)
	return strings.Join(strings.Fields(stripped), "")
}
