package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText collapses runs of whitespace to a single space, trims the
// result and converts it to Unicode normalization form C.
func NormalizeText(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteRune(r)
	}

	return norm.NFC.String(sb.String())
}
