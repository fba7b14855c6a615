package strategy

import (
	"sort"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/chart"
	"github.com/KaramelBytes/dataloom-cli/internal/intent"
	"github.com/KaramelBytes/dataloom-cli/internal/retrieval"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

// Branch names the resolver rule that produced a mapping.
type Branch string

const (
	BranchScatter        Branch = "scatter"
	BranchHistogram      Branch = "histogram"
	BranchHeatmap        Branch = "heatmap"
	BranchRecommendation Branch = "recommendation"
	BranchDefault        Branch = "default"
)

var (
	scatterKeywords     = []string{"scatter", "산포도", "산점도", "correlation", "상관관계"}
	correlationKeywords = []string{"상관관계", "상관성", "correlation", "관계", "연관", "vs", "versus", "간의"}
	histogramKeywords   = []string{"histogram", "히스토그램"}
	heatmapKeywords     = []string{"heatmap", "히트맵", "열지도", "correlation matrix", "상관행렬"}
	recommendKeywords   = []string{
		"추천", "recommend", "recommendation", "recommendations", "제안", "suggest", "suggestion",
		"어떤 차트", "what chart", "which chart", "무슨 차트", "좋은 차트", "적합한 차트", "최적의 차트",
		"best chart", "optimal chart", "분석 방법", "analysis method",
	}
	ageKeywords      = []string{"나이", "age", "연령", "class"}
	weightKeywords   = []string{"무게", "weight", "체중", "kg"}
	priorityKeywords = []string{"message", "status", "type", "network", "country", "reason"}
)

// Resolution is a column mapping together with the rule that chose it.
type Resolution struct {
	Mapping chart.Mapping
	Branch  Branch
	Scores  ColumnScores
	// AgeWeight is set when the scatter branch paired age and weight columns.
	AgeWeight bool
}

// Resolve maps a question onto dataset columns. It always returns a mapping
// for a schema with at least one column. A nil index is built from schema.
func Resolve(question string, schema *analysis.Schema, idx *retrieval.ColumnIndex, hint intent.Match) Resolution {
	return ResolveWithLexicon(DefaultLexicon(), question, schema, idx, hint)
}

// ResolveWithLexicon is Resolve with a caller-supplied vocabulary expansion.
func ResolveWithLexicon(lex Lexicon, question string, schema *analysis.Schema, idx *retrieval.ColumnIndex, hint intent.Match) Resolution {
	if idx == nil {
		idx = retrieval.BuildColumnIndex(schema.Names())
	}
	q := utils.NormalizeQuestion(question)
	words := lex.Expand(q)
	r := &resolver{
		q:      q,
		words:  words,
		schema: schema,
		scores: ScoreColumns(q, words, idx),
		hint:   hint,
	}
	res := Resolution{Scores: r.scores}
	if len(schema.Columns) == 0 {
		res.Branch = BranchDefault
		return res
	}
	res.Branch = r.branch()
	switch res.Branch {
	case BranchScatter:
		res.Mapping, res.AgeWeight = r.scatter()
	case BranchHistogram:
		res.Mapping = r.histogram()
	case BranchHeatmap:
		res.Mapping = r.heatmap()
	case BranchRecommendation:
		res.Mapping = chart.Mapping{X: chart.RecommendationRequest, Y: chart.RecommendationRequest}
	default:
		res.Mapping = r.fallthroughDefault()
	}
	return res
}

type resolver struct {
	q      string
	words  []string
	schema *analysis.Schema
	scores ColumnScores
	hint   intent.Match
}

func (r *resolver) branch() Branch {
	if r.hint.Category == intent.ExplicitChart {
		switch r.hint.Kind {
		case chart.Scatter:
			return BranchScatter
		case chart.Histogram:
			return BranchHistogram
		case chart.Heatmap:
			return BranchHeatmap
		}
		// A chart name inside "which chart ..." still asks for a recommendation.
		if utils.ContainsAny(r.q, recommendKeywords...) {
			return BranchRecommendation
		}
		return BranchDefault
	}
	switch {
	case r.hint.Kind == chart.Scatter || utils.ContainsAny(r.q, scatterKeywords...):
		return BranchScatter
	case r.hint.Kind == chart.Histogram || utils.ContainsAny(r.q, histogramKeywords...):
		return BranchHistogram
	case r.hint.Kind == chart.Heatmap || utils.ContainsAny(r.q, heatmapKeywords...):
		return BranchHeatmap
	case utils.ContainsAny(r.q, recommendKeywords...):
		return BranchRecommendation
	}
	return BranchDefault
}

func (r *resolver) typeOf(col string) analysis.SemanticType {
	if p, ok := r.schema.Lookup(col); ok {
		return p.Type
	}
	return analysis.TypeUnknown
}

// numeric lists numeric columns that are not identifiers, in dataset order.
func (r *resolver) numeric() []string {
	var out []string
	for _, c := range r.schema.Numeric() {
		if !analysis.IsIDName(c) {
			out = append(out, c)
		}
	}
	return out
}

func (r *resolver) isNumeric(col string) bool {
	return r.typeOf(col) == analysis.TypeNumeric && !analysis.IsIDName(col)
}

func (r *resolver) scatter() (chart.Mapping, bool) {
	numeric := r.numeric()
	if utils.ContainsAny(r.q, correlationKeywords...) {
		if m, ok := r.ageWeightPair(); ok {
			return m, true
		}
		if m, ok := r.mentionedPair(); ok {
			return m, false
		}
		if len(numeric) >= 2 {
			return chart.Mapping{X: chart.Column(numeric[0]), Y: chart.Column(numeric[1])}, false
		}
	} else if len(numeric) >= 2 {
		ranked := r.rankByScore(numeric)
		return chart.Mapping{X: chart.Column(ranked[0]), Y: chart.Column(ranked[1])}, false
	}
	x := r.bestColumn()
	for _, n := range numeric {
		if n != x {
			return chart.Mapping{X: chart.Column(x), Y: chart.Column(n)}, false
		}
	}
	return chart.Mapping{X: chart.Column(x), Y: chart.Count}, false
}

// ageWeightPair pairs an age-like column with a weight-like column when the
// question talks about either.
func (r *resolver) ageWeightPair() (chart.Mapping, bool) {
	if !utils.ContainsAny(r.q, ageKeywords...) && !utils.ContainsAny(r.q, weightKeywords...) {
		return chart.Mapping{}, false
	}
	var ageCol, weightCol string
	for _, c := range r.schema.Names() {
		if ageCol == "" && nameHasKeyword(c, ageKeywords) {
			ageCol = c
			continue
		}
		if weightCol == "" && nameHasKeyword(c, weightKeywords) {
			weightCol = c
		}
	}
	if ageCol == "" || weightCol == "" {
		return chart.Mapping{}, false
	}
	return chart.Mapping{X: chart.Column(ageCol), Y: chart.Column(weightCol)}, true
}

// mentionedPair prefers a categorical x with a numeric y among the columns
// the question mentions, else the first two mentioned.
func (r *resolver) mentionedPair() (chart.Mapping, bool) {
	var mentioned []string
	for _, c := range r.scores.Positive() {
		if r.typeOf(c) != analysis.TypeUnknown {
			mentioned = append(mentioned, c)
		}
	}
	var cat, num string
	for _, c := range mentioned {
		switch {
		case cat == "" && r.typeOf(c) == analysis.TypeCategorical:
			cat = c
		case num == "" && r.isNumeric(c):
			num = c
		}
	}
	if cat != "" && num != "" {
		return chart.Mapping{X: chart.Column(cat), Y: chart.Column(num)}, true
	}
	if len(mentioned) >= 2 {
		return chart.Mapping{X: chart.Column(mentioned[0]), Y: chart.Column(mentioned[1])}, true
	}
	return chart.Mapping{}, false
}

// rankByScore orders columns by descending score, keeping dataset order on ties.
func (r *resolver) rankByScore(cols []string) []string {
	out := append([]string(nil), cols...)
	sort.SliceStable(out, func(i, j int) bool { return r.scores.Of(out[i]) > r.scores.Of(out[j]) })
	return out
}

func (r *resolver) histogram() chart.Mapping {
	numeric := r.numeric()
	if len(numeric) == 0 {
		return chart.Mapping{X: chart.Column(r.bestColumn()), Y: chart.Count}
	}
	return chart.Mapping{X: chart.Column(r.rankByScore(numeric)[0]), Y: chart.Count}
}

func (r *resolver) heatmap() chart.Mapping {
	if len(r.numeric()) >= 2 {
		return chart.Mapping{X: chart.AllNumeric, Y: chart.AllNumeric}
	}
	return chart.Mapping{X: chart.InsufficientNumeric, Y: chart.InsufficientNumeric}
}

func (r *resolver) fallthroughDefault() chart.Mapping {
	cat := r.hint.Category
	kind := r.hint.Kind

	if dts := r.schema.Datetime(); len(dts) > 0 && (cat == intent.Temporal || kind == chart.Line || kind == chart.Area) {
		x := r.rankByScore(dts)[0]
		m := chart.Mapping{X: chart.Column(x), Y: chart.Count}
		if y, ok := r.scores.Best(func(c string) bool { return c != x && r.isNumeric(c) }); ok {
			m.Y = chart.Column(y)
		}
		return m
	}

	x := r.bestColumn()
	m := chart.Mapping{X: chart.Column(x), Y: chart.Count}
	wantsMeasure := cat == intent.Comparison || cat == intent.Ranking || cat == intent.Temporal ||
		(cat == intent.ExplicitChart && kind.RequiresY())
	if !wantsMeasure {
		return m
	}
	if r.isNumeric(x) {
		// a measure was named; group it by the most relevant category
		if c, ok := r.bestOf(r.schema.Categorical()); ok {
			return chart.Mapping{X: chart.Column(c), Y: chart.Column(x)}
		}
		return m
	}
	if y, ok := r.scores.Best(func(c string) bool { return c != x && r.isNumeric(c) }); ok {
		m.Y = chart.Column(y)
	}
	return m
}

// bestOf picks from cols by score, then priority keyword, then order.
func (r *resolver) bestOf(cols []string) (string, bool) {
	if len(cols) == 0 {
		return "", false
	}
	in := make(map[string]bool, len(cols))
	for _, c := range cols {
		in[c] = true
	}
	if c, ok := r.scores.Best(func(c string) bool { return in[c] }); ok {
		return c, true
	}
	for _, c := range cols {
		if containsAnySubstring(c, priorityKeywords) && !analysis.IsIDName(c) {
			return c, true
		}
	}
	return cols[0], true
}

// bestColumn is the highest-scoring typed column, falling back through
// priority keywords, the first non-id column and finally the first column.
// Columns of unknown type are considered only after typed ones.
func (r *resolver) bestColumn() string {
	known := func(c string) bool { return r.typeOf(c) != analysis.TypeUnknown }
	if c, ok := r.scores.Best(known); ok {
		return c
	}
	names := r.schema.Names()
	for _, c := range names {
		if known(c) && containsAnySubstring(c, priorityKeywords) && !analysis.IsIDName(c) {
			return c
		}
	}
	for _, c := range names {
		if known(c) && !analysis.IsIDName(c) {
			return c
		}
	}
	if c, ok := r.scores.Best(nil); ok {
		return c
	}
	for _, c := range names {
		if containsAnySubstring(c, priorityKeywords) && !analysis.IsIDName(c) {
			return c
		}
	}
	for _, c := range names {
		if !analysis.IsIDName(c) {
			return c
		}
	}
	return names[0]
}
