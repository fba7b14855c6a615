// Package strategy decides which chart to draw for a question and which
// columns feed it.
package strategy

import (
	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/intent"
	"github.com/KaramelBytes/dataloom-cli/internal/retrieval"
)

// Engine bundles the catalogs used to resolve a strategy.
type Engine struct {
	Classifier *intent.Classifier
	Lexicon    Lexicon
}

// NewEngine returns an engine over the built-in catalogs.
func NewEngine() *Engine {
	return &Engine{Classifier: intent.New(nil), Lexicon: DefaultLexicon()}
}

// Resolve classifies the question, maps it to columns and scores the result.
// The schema must have at least one column.
func (e *Engine) Resolve(question string, schema *analysis.Schema) Decision {
	match := e.Classifier.Classify(question)
	idx := retrieval.BuildColumnIndex(schema.Names())
	res := ResolveWithLexicon(e.Lexicon, question, schema, idx, match)
	return Optimize(res, match, question)
}

// ResolveChartStrategy runs the full pipeline with the built-in catalogs.
func ResolveChartStrategy(question string, schema *analysis.Schema) Decision {
	return NewEngine().Resolve(question, schema)
}
