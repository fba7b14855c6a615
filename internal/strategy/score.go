package strategy

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/retrieval"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

const (
	exactWordScore   = 10
	partialWordScore = 5
	bigramScore      = 10
	failureBonus     = 15
	cardNetworkBonus = 12
	countryBonus     = 12
	reasonBonus      = 10
	idPenalty        = -5
)

var (
	cardKeywords    = []string{"card", "cards", "카드"}
	countryKeywords = []string{"country", "countries", "국가", "나라"}
	reasonKeywords  = []string{"reason", "reasons", "이유", "원인"}
)

// ColumnScore is one column's relevance to a question.
type ColumnScore struct {
	Column string
	Score  float64
}

// ColumnScores is an immutable table of per-column scores in dataset order.
type ColumnScores struct {
	entries []ColumnScore
}

// Entries returns a copy of the scores in dataset order.
func (s ColumnScores) Entries() []ColumnScore {
	return append([]ColumnScore(nil), s.entries...)
}

// Of returns the score of column, or 0 if it is unknown.
func (s ColumnScores) Of(column string) float64 {
	for _, e := range s.entries {
		if e.Column == column {
			return e.Score
		}
	}
	return 0
}

// Best returns the highest positive-scoring column accepted by keep; ties go
// to the earlier column.
func (s ColumnScores) Best(keep func(string) bool) (string, bool) {
	var best ColumnScore
	found := false
	for _, e := range s.entries {
		if e.Score <= 0 || (keep != nil && !keep(e.Column)) {
			continue
		}
		if !found || e.Score > best.Score {
			best, found = e, true
		}
	}
	return best.Column, found
}

// Positive returns the columns with a positive score, in dataset order.
func (s ColumnScores) Positive() []string {
	var out []string
	for _, e := range s.entries {
		if e.Score > 0 {
			out = append(out, e.Column)
		}
	}
	return out
}

// ScoreColumns rates every column against the question words. words is the
// lexicon-expanded vocabulary, q the normalized question.
func ScoreColumns(q string, words []string, idx *retrieval.ColumnIndex) ColumnScores {
	has := make(map[string]bool, len(words))
	for _, w := range words {
		has[w] = true
	}
	qMentionsID := utils.ContainsAny(q, "id", "ids", "아이디")
	failure := has["failure"] || utils.ContainsAny(q, failureKeywords...)
	card := has["card"] || utils.ContainsAny(q, cardKeywords...)
	country := has["country"] || utils.ContainsAny(q, countryKeywords...)
	reason := has["reason"] || utils.ContainsAny(q, reasonKeywords...)
	cols := idx.Columns()
	out := make([]ColumnScore, len(cols))
	for i, col := range cols {
		name := strings.ToLower(col)
		score := 0.0
		for _, qw := range words {
			for _, cw := range utils.ColumnWords(col) {
				switch {
				case qw == cw:
					score += exactWordScore
				case partialOverlap(qw, cw):
					score += partialWordScore
				}
			}
		}
		for _, bg := range idx.Bigrams(col) {
			if utils.ContainsTerm(q, bg) {
				score += bigramScore
			}
		}
		if failure && strings.Contains(name, "message") {
			score += failureBonus
		}
		if card && strings.Contains(name, "network") {
			score += cardNetworkBonus
		}
		if country && strings.Contains(name, "country") {
			score += countryBonus
		}
		if reason && strings.Contains(name, "message") {
			score += reasonBonus
		}
		if analysis.IsIDName(col) && !qMentionsID {
			score += idPenalty
		}
		out[i] = ColumnScore{Column: col, Score: score}
	}
	return ColumnScores{entries: out}
}

// partialOverlap reports whether one word contains the other. The shorter
// word needs three runes in ASCII, two in other scripts, so "me" does not
// match "message".
func partialOverlap(a, b string) bool {
	short, long := a, b
	if utf8.RuneCountInString(short) > utf8.RuneCountInString(long) {
		short, long = long, short
	}
	minRunes := 3
	if !utils.IsASCII(short) {
		minRunes = 2
	}
	if utf8.RuneCountInString(short) < minRunes {
		return false
	}
	return strings.Contains(long, short)
}

// splitWords splits a normalized question on whitespace and trims
// surrounding punctuation.
func splitWords(q string) []string {
	var out []string
	for _, f := range strings.Fields(q) {
		w := strings.TrimFunc(f, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) })
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// nameHasKeyword reports whether a column name carries one of the keywords.
// ASCII keywords must start a column word; others match anywhere.
func nameHasKeyword(col string, keywords []string) bool {
	lower := strings.ToLower(col)
	words := utils.ColumnWords(col)
	for _, kw := range keywords {
		if !utils.IsASCII(kw) {
			if strings.Contains(lower, kw) {
				return true
			}
			continue
		}
		for _, w := range words {
			if strings.HasPrefix(w, kw) {
				return true
			}
		}
	}
	return false
}

func containsAnySubstring(col string, keywords []string) bool {
	lower := strings.ToLower(col)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
