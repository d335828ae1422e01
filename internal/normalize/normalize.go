// Package normalize turns raw classifier labels into lookup-ready food names.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize replaces every run of non-alphanumeric characters with a single
// space and trims the result. It never fails; an empty return means nothing
// searchable was left.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	pendingSpace := false
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Display title-cases a normalized name for presentation.
func Display(name string) string {
	return cases.Title(language.English).String(name)
}
