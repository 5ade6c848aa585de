// Package resolve maps free-text champion names, nicknames and typos to
// canonical entries.
//
// Two table shapes are supported. AliasTable holds alias sets per canonical
// name and resolves with an exact tier followed by a similarity-gated edit
// distance tier. KeyTable maps pre-normalized keys to identifiers and adds a
// substring tier between the two, with an absolute distance cap.
//
// Tables are immutable once built; every lookup is read-only and safe for
// concurrent use.
package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the comparison form of s: lowercase, with every
// character outside [a-z0-9] removed. Accented letters are folded to their
// base letter first, so "Kaï'Sa" and "Kai'Sa" both normalize to "kaisa".
func Normalize(s string) string {
	if !isASCII(s) {
		t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
		if folded, _, err := transform.String(t, s); err == nil {
			s = folded
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
