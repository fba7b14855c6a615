package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeQuestion composes Unicode (so decomposed Hangul from some input
// methods matches the catalogs), lower-cases, and collapses whitespace.
func NormalizeQuestion(q string) string {
	q = norm.NFC.String(q)
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// ColumnWords lower-cases a column name, treats '_' and '-' as spaces, and
// splits it into words.
func ColumnWords(name string) []string {
	n := strings.ToLower(norm.NFC.String(name))
	n = strings.NewReplacer("_", " ", "-", " ").Replace(n)
	return strings.Fields(n)
}

// IsASCII reports whether s has only ASCII runes.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// IndexTerm returns the rune offset of the first occurrence of term in text,
// or -1. ASCII terms must sit on word boundaries so "map" does not match
// "bitmap"; other scripts match as plain substrings because particles attach
// directly to nouns.
func IndexTerm(text, term string) int {
	if term == "" {
		return -1
	}
	if !IsASCII(term) {
		i := strings.Index(text, term)
		if i < 0 {
			return -1
		}
		return utf8.RuneCountInString(text[:i])
	}
	from := 0
	for from <= len(text) {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return -1
		}
		start := from + i
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return utf8.RuneCountInString(text[:start])
		}
		from = start + 1
	}
	return -1
}

// ContainsTerm reports whether term occurs in text under IndexTerm rules.
func ContainsTerm(text, term string) bool { return IndexTerm(text, term) >= 0 }

// ContainsAny reports whether any term occurs in text.
func ContainsAny(text string, terms ...string) bool {
	for _, t := range terms {
		if ContainsTerm(text, t) {
			return true
		}
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isASCIIWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isASCIIWordRune(r)
}

func isASCIIWordRune(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
