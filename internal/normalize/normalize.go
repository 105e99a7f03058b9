// Package normalize canonicalizes puzzle text for matching.
//
// Accented vowels fold to their base vowel. The cedilla letter ç is a distinct
// puzzle letter and is never folded to c.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var vowelFolds = []rune{'á', 'à', 'â', 'ã', 'é', 'ê', 'í', 'ó', 'ô', 'õ', 'ú'}

// foldMarks holds the base vowel and combining mark of every folded vowel.
var foldMarks = func() map[[2]rune]struct{} {
	out := make(map[[2]rune]struct{}, len(vowelFolds))
	for _, r := range vowelFolds {
		parts := []rune(norm.NFD.String(string(r)))
		out[[2]rune{parts[0], parts[1]}] = struct{}{}
	}
	return out
}()

// Word returns the canonical form of text: lowercased, with accented vowels
// folded, NFC-composed. Folding works on the decomposed form and drops every
// folded mark attached to a vowel, stacked ones included, so the result is
// idempotent.
func Word(text string) string {
	decomposed := norm.NFD.String(strings.ToLower(text))
	var b strings.Builder
	b.Grow(len(decomposed))
	base := rune(-1)
	for _, r := range decomposed {
		if !unicode.Is(unicode.Mn, r) {
			base = r
			b.WriteRune(r)
			continue
		}
		if _, ok := foldMarks[[2]rune{base, r}]; ok {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// Letters returns the distinct normalized letters of text in first-seen order.
// Runes that are not letters are dropped.
func Letters(text string) []rune {
	seen := map[rune]struct{}{}
	var out []rune
	for _, r := range Word(text) {
		if !unicode.IsLetter(r) {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
