// Package slug derives URL-safe identifiers from job titles.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a title has no alphanumeric characters at all.
const Fallback = "job"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make lower-cases s, folds diacritics ("Café" → "cafe"), collapses every run
// of other characters into a single '-' and trims leading and trailing dashes.
func Make(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	out := nonAlnum.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(out, "-")
}

// Unique returns base if it is free, otherwise the first of base-1, base-2, …
// that taken reports as free.
func Unique(base string, taken func(string) (bool, error)) (string, error) {
	if base == "" {
		base = Fallback
	}
	candidate := base
	for i := 1; ; i++ {
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
