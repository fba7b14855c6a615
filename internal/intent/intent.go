// Package intent classifies a free-text question into an analysis intent
// and chart kind using a scored pattern catalog.
package intent

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dataloom-cli/internal/chart"
)

// Category groups patterns by analytical intent.
type Category string

const (
	ExplicitChart Category = "explicit_chart"
	Distribution  Category = "distribution"
	Comparison    Category = "comparison"
	Temporal      Category = "temporal"
	Ranking       Category = "ranking"
	Correlation   Category = "correlation"
)

func (c Category) valid() bool {
	switch c {
	case ExplicitChart, Distribution, Comparison, Temporal, Ranking, Correlation:
		return true
	}
	return false
}

// Pattern is one catalog entry.
type Pattern struct {
	Phrase   string
	Category Category
	Kind     chart.Kind
	Focus    string
}

// Match is the classifier's verdict for a question.
type Match struct {
	Pattern  string     `json:"pattern,omitempty"`
	Category Category   `json:"category"`
	Kind     chart.Kind `json:"chart_type"`
	Focus    string     `json:"focus"`
	Score    float64    `json:"score"`
	// Fallback is set when no pattern scored and a default was applied.
	Fallback bool `json:"fallback,omitempty"`
}

//go:embed catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Patterns []struct {
		Pattern  string `yaml:"pattern"`
		Category string `yaml:"category"`
		Chart    string `yaml:"chart"`
		Focus    string `yaml:"focus"`
	} `yaml:"patterns"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog []Pattern
)

// DefaultCatalog returns the built-in pattern catalog in declaration order.
// The slice is shared; callers must not modify it.
func DefaultCatalog() []Pattern {
	defaultOnce.Do(func() {
		c, err := ParseCatalog(catalogYAML)
		if err != nil {
			panic(fmt.Sprintf("intent: embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// ParseCatalog decodes a YAML pattern catalog.
func ParseCatalog(data []byte) ([]Pattern, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	out := make([]Pattern, 0, len(f.Patterns))
	for i, p := range f.Patterns {
		kind, ok := chart.LookupKind(p.Chart)
		if !ok {
			return nil, fmt.Errorf("pattern %d (%q): unknown chart %q", i, p.Pattern, p.Chart)
		}
		cat := Category(p.Category)
		if !cat.valid() {
			return nil, fmt.Errorf("pattern %d (%q): unknown category %q", i, p.Pattern, p.Category)
		}
		if p.Pattern == "" {
			return nil, fmt.Errorf("pattern %d: empty phrase", i)
		}
		out = append(out, Pattern{Phrase: p.Pattern, Category: cat, Kind: kind, Focus: p.Focus})
	}
	return out, nil
}
