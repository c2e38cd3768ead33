package risk

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// legalSuffixes are stripped from the end of a normalised name, in order.
var legalSuffixes = []string{" ltd", " llc", " inc", " corp", " limited", " holdings", " group"}

// NormalizeName canonicalises an entity name for matching: lowercase,
// punctuation removed, a trailing legal-form suffix stripped. It repeats
// suffix stripping until none is left, so NormalizeName(NormalizeName(x))
// equals NormalizeName(x). Symbol-only input yields "".
func NormalizeName(name string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, norm.NFC.String(strings.ToLower(name)))
	// Compose again: a dropped mark may have blocked composition.
	s = strings.TrimSpace(norm.NFC.String(s))

	for {
		stripped := false
		for _, suffix := range legalSuffixes {
			if strings.HasSuffix(s, suffix) {
				s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
				stripped = true
				break
			}
		}
		if !stripped {
			return s
		}
	}
}

//Personal.AI order the ending
