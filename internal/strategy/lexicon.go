package strategy

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

//go:embed lexicon.yaml
var lexiconYAML []byte

// LexiconEntry expands question vocabulary toward common column names.
type LexiconEntry struct {
	Triggers []string `yaml:"triggers"`
	Expand   []string `yaml:"expand"`
}

// Lexicon is an ordered list of expansion entries.
type Lexicon []LexiconEntry

var (
	lexOnce    sync.Once
	defaultLex Lexicon
)

// DefaultLexicon returns the built-in bilingual lexicon.
func DefaultLexicon() Lexicon {
	lexOnce.Do(func() {
		l, err := ParseLexicon(lexiconYAML)
		if err != nil {
			panic(fmt.Sprintf("strategy: embedded lexicon: %v", err))
		}
		defaultLex = l
	})
	return defaultLex
}

// ParseLexicon decodes a YAML lexicon.
func ParseLexicon(data []byte) (Lexicon, error) {
	var f struct {
		Entries []LexiconEntry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	for i, e := range f.Entries {
		if len(e.Triggers) == 0 || len(e.Expand) == 0 {
			return nil, fmt.Errorf("lexicon entry %d: triggers and expand are required", i)
		}
	}
	return Lexicon(f.Entries), nil
}

// Expand returns the deduplicated question words followed by the expansion
// terms of every entry triggered by the normalized question.
func (l Lexicon) Expand(q string) []string {
	seen := map[string]bool{}
	var out []string
	push := func(w string) {
		if w != "" && !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	for _, w := range splitWords(q) {
		push(w)
	}
	for _, e := range l {
		if utils.ContainsAny(q, e.Triggers...) {
			for _, t := range e.Expand {
				push(t)
			}
		}
	}
	return out
}
