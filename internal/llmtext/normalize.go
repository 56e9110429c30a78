package llmtext

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeSentence lowercases s, strips punctuation and symbols, and
// collapses runs of whitespace into single spaces. Two sentences that
// normalize equal differ only in case, punctuation, or spacing.
func NormalizeSentence(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true // swallow leading whitespace
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r):
			if !space {
				b.WriteByte(' ')
				space = true
			}
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			// dropped
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// IsMinorSentenceDifference reports whether a and b differ only in case,
// punctuation, or whitespace. It is reflexive and symmetric.
func IsMinorSentenceDifference(a, b string) bool {
	return NormalizeSentence(a) == NormalizeSentence(b)
}

// ContainsPhrase reports whether needle occurs in haystack as a standalone
// phrase, case-insensitively. A match is rejected when it is glued to a
// letter or digit on either side, so "has" does not match inside "hash".
func ContainsPhrase(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return false
	}
	h := strings.ToLower(haystack)
	n := strings.ToLower(needle)
	for from := 0; ; {
		i := strings.Index(h[from:], n)
		if i < 0 {
			return false
		}
		i += from
		if phraseBoundary(h, i, i+len(n)) {
			return true
		}
		from = i + 1
	}
}

// phraseBoundary reports whether the half-open byte range [start, end) in s
// is not glued to an adjacent letter or digit.
func phraseBoundary(s string, start, end int) bool {
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsLetter(prev) || unicode.IsDigit(prev) {
			return false
		}
	}
	if end < len(s) {
		next, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsLetter(next) || unicode.IsDigit(next) {
			return false
		}
	}
	return true
}
