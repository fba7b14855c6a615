package intent

import (
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/chart"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

// PatternScore is one scored catalog entry.
type PatternScore struct {
	Index int
	Score float64
}

// ScoreTable holds the positive pattern scores for one question, in catalog
// order.
type ScoreTable struct {
	entries []PatternScore
}

// Entries returns a copy of the scored entries.
func (t ScoreTable) Entries() []PatternScore {
	return append([]PatternScore(nil), t.entries...)
}

func (t ScoreTable) Len() int { return len(t.entries) }

// Best returns the highest-scoring entry; ties keep the earliest catalog index.
func (t ScoreTable) Best() (PatternScore, bool) {
	if len(t.entries) == 0 {
		return PatternScore{}, false
	}
	best := t.entries[0]
	for _, e := range t.entries[1:] {
		if e.Score > best.Score {
			best = e
		}
	}
	return best, true
}

// Classifier scores questions against a catalog.
type Classifier struct {
	patterns []Pattern
}

// New returns a classifier over patterns. A nil slice uses the built-in catalog.
func New(patterns []Pattern) *Classifier {
	if patterns == nil {
		patterns = DefaultCatalog()
	}
	return &Classifier{patterns: patterns}
}

// Patterns returns the catalog in use.
func (c *Classifier) Patterns() []Pattern { return c.patterns }

// Score computes every pattern's score against a normalized question. An
// explicit chart phrase that is part of a longer explicit phrase also found in
// the question ("scatter" inside "3d scatter") is not scored.
func (c *Classifier) Score(question string) ScoreTable {
	var hits []int
	for i, p := range c.patterns {
		if p.Category == ExplicitChart && utils.ContainsTerm(question, p.Phrase) {
			hits = append(hits, i)
		}
	}
	var out []PatternScore
	for i, p := range c.patterns {
		if c.subsumed(i, hits) {
			continue
		}
		if s := scorePattern(p, question); s > 0 {
			out = append(out, PatternScore{Index: i, Score: s})
		}
	}
	return ScoreTable{entries: out}
}

func (c *Classifier) subsumed(i int, hits []int) bool {
	p := c.patterns[i]
	if p.Category != ExplicitChart {
		return false
	}
	for _, j := range hits {
		longer := c.patterns[j].Phrase
		if j != i && len(longer) > len(p.Phrase) && strings.Contains(longer, p.Phrase) {
			return true
		}
	}
	return false
}

func scorePattern(p Pattern, q string) float64 {
	explicit := p.Category == ExplicitChart
	score := 0.0
	if pos := utils.IndexTerm(q, p.Phrase); pos >= 0 {
		if explicit {
			score += 50
		} else {
			score += 10
		}
		if bonus := 5 - pos/10; bonus > 0 {
			score += float64(bonus)
		}
	}
	words := strings.Fields(p.Phrase)
	allPresent := len(words) > 0
	for _, w := range words {
		if !utils.ContainsTerm(q, w) {
			allPresent = false
			break
		}
	}
	if allPresent {
		if explicit {
			score += 25
		} else {
			score += 5
		}
	}
	if explicit && utils.ContainsTerm(q, p.Kind.String()) {
		score += 30
	}
	return score
}

// Classify returns the best pattern for question, or a keyword-driven default
// when nothing matches.
func (c *Classifier) Classify(question string) Match {
	q := utils.NormalizeQuestion(question)
	var m Match
	if best, ok := c.Score(q).Best(); ok {
		p := c.patterns[best.Index]
		m = Match{Pattern: p.Phrase, Category: p.Category, Kind: p.Kind, Focus: p.Focus, Score: best.Score}
	} else {
		m = fallback(q)
	}
	m.Focus = refineFocus(m.Focus, q)
	return m
}

// Classify runs the built-in catalog.
func Classify(question string) Match { return New(nil).Classify(question) }

func fallback(q string) Match {
	switch {
	case utils.ContainsAny(q, "proportion", "percentage", "share", "distribution", "breakdown", "분포", "비율"):
		return Match{Category: Distribution, Kind: chart.Pie, Focus: "show proportional distribution", Fallback: true}
	case utils.ContainsAny(q, "trend", "over time", "growth", "change", "추이", "변화"):
		return Match{Category: Temporal, Kind: chart.Line, Focus: "show trends over time", Fallback: true}
	case utils.ContainsAny(q, "correlation", "relationship", "vs", "versus", "상관", "관계"):
		return Match{Category: Correlation, Kind: chart.Scatter, Focus: "show relationships", Fallback: true}
	default:
		return Match{Category: Distribution, Kind: chart.Bar, Focus: "analyze data distribution", Fallback: true}
	}
}

func refineFocus(focus, q string) string {
	switch {
	case utils.ContainsAny(q, "failure", "fail", "failed", "error", "problem", "실패", "오류"):
		return strings.Replace(focus, "show", "analyze failure patterns in", 1)
	case utils.ContainsAny(q, "success", "complete", "completed", "approved", "성공"):
		return strings.Replace(focus, "show", "analyze success patterns in", 1)
	}
	return focus
}
