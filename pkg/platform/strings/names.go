package strings

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ligatures = strings.NewReplacer(
	"œ", "oe", "Œ", "oe",
	"æ", "ae", "Æ", "ae",
	"ß", "ss",
)

// Normalize folds a name into its comparison form: diacritics removed,
// lower case, punctuation turned into single spaces.
//
//	Normalize("  Éric  D'Alembert-Dupré ") == "eric d alembert dupre"
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// transformers keep state, so the chain is built per call
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, ligatures.Replace(s))
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens splits the normalized form of s on spaces.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// Initials returns the first rune of every token of s, so
// "Jean-Pierre" yields "jp" and "J. P." yields "jp".
func Initials(s string) string {
	var b strings.Builder
	for _, tok := range Tokens(s) {
		for _, r := range tok {
			b.WriteRune(r)
			break
		}
	}
	return b.String()
}

// IsInitialsOnly reports whether every token of s is a single letter,
// as in "J." or "J.-P.".
func IsInitialsOnly(s string) bool {
	toks := Tokens(s)
	if len(toks) == 0 {
		return false
	}
	for _, tok := range toks {
		if len([]rune(tok)) != 1 {
			return false
		}
	}
	return true
}

// Similarity scores two strings in [0,1] from their Levenshtein distance
// on the normalized forms. Identical forms score 1, and an empty side
// always scores 0.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	la, lb := len([]rune(na)), len([]rune(nb))
	longest := la
	if lb > longest {
		longest = lb
	}
	d := levenshtein.ComputeDistance(na, nb)
	return 1 - float64(d)/float64(longest)
}
