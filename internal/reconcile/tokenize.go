package reconcile

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// TokenSet is a set of lowercase alphanumeric tokens.
type TokenSet map[string]struct{}

// Len returns the number of tokens.
func (s TokenSet) Len() int { return len(s) }

// Empty reports whether the set holds no tokens.
func (s TokenSet) Empty() bool { return len(s) == 0 }

// Has reports whether tok is in the set.
func (s TokenSet) Has(tok string) bool {
	_, ok := s[tok]
	return ok
}

// Sorted returns the tokens in lexical order.
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for tok := range s {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// fold returns the locale-independent case folding of s.
// cases.Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Tokenize case-folds text, turns every rune outside a-z, 0-9 and whitespace into a space and
// returns the set of resulting words.
func Tokenize(text string) TokenSet {
	tokens := TokenSet{}
	folded := fold(strings.TrimSpace(text))
	if folded == "" {
		return tokens
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	for _, part := range strings.Fields(b.String()) {
		tokens[part] = struct{}{}
	}
	return tokens
}

// NormalizeIdentityLink trims url, strips every trailing slash and case-folds the result.
//
// Returns false when nothing is left to compare.
func NormalizeIdentityLink(url string) (string, bool) {
	u := strings.TrimSpace(url)
	if u == "" {
		return "", false
	}
	u = strings.TrimRight(u, "/")
	if u == "" {
		return "", false
	}
	return fold(u), true
}
