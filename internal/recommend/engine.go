// Package recommend suggests chart kinds that suit a dataset and question.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/chart"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

// DefaultTopK is the number of recommendations returned when topK <= 0.
const DefaultTopK = 5

// Recommendation is one suggested chart kind.
type Recommendation struct {
	Kind       chart.Kind `json:"chart_type"`
	Score      int        `json:"score"`
	KoreanName string     `json:"korean_name"`
	Rationale  string     `json:"rationale"`
	BestFor    []string   `json:"best_for"`
}

// Summary counts the shape of a dataset.
type Summary struct {
	Rows        int `json:"rows"`
	Columns     int `json:"columns"`
	Numeric     int `json:"numeric_columns"`
	Categorical int `json:"categorical_columns"`
	Datetime    int `json:"datetime_columns"`
}

// Result is the response to a recommendation request.
type Result struct {
	Recommendations  []Recommendation `json:"recommendations"`
	DataSummary      Summary          `json:"data_summary"`
	SuggestedMessage string           `json:"suggested_message"`
	Patterns         []string         `json:"patterns,omitempty"`
	Intents          []string         `json:"intents,omitempty"`
}

// Engine scores chart kinds against detected data patterns, question intents
// and data characteristics.
type Engine struct {
	registered func(chart.Kind) bool
}

// NewEngine returns an engine that only recommends kinds with a renderer.
func NewEngine() *Engine {
	return &Engine{registered: chart.Registered}
}

// profile is what the rules read from a schema.
type profile struct {
	rows        int
	numeric     []string
	categorical []analysis.ColumnProfile
	datetime    []string
	names       []string
}

// newProfile treats any text column as categorical for rule purposes, so
// high-cardinality text still counts toward cardinality rules.
func newProfile(s *analysis.Schema) profile {
	p := profile{rows: s.Rows, numeric: s.Numeric(), datetime: s.Datetime(), names: s.Names()}
	for _, c := range s.Columns {
		switch {
		case c.Type == analysis.TypeCategorical:
			p.categorical = append(p.categorical, c)
		case c.Type == analysis.TypeUnknown && (c.Storage == analysis.StorageString || c.Storage == analysis.StorageBool):
			p.categorical = append(p.categorical, c)
		}
	}
	return p
}

func (p profile) patterns() []string {
	var out []string
	nNum, nCat := len(p.numeric), len(p.categorical)
	switch {
	case nNum == 1 && nCat == 0:
		out = append(out, "single_numeric")
	case nNum == 2:
		out = append(out, "two_numeric")
	case nNum > 2:
		out = append(out, "multiple_numeric")
	}
	switch {
	case nCat == 1 && nNum == 0:
		out = append(out, "single_categorical")
	case nCat >= 1 && nNum >= 1:
		out = append(out, "cat_vs_numeric")
	}
	if len(p.datetime) > 0 {
		out = append(out, "time_series")
	}
	for _, c := range p.categorical {
		if nameHas(c.Name, hierarchyKeywords) {
			out = append(out, "hierarchical")
			break
		}
	}
	for _, n := range p.names {
		if nameHas(n, financeKeywords) {
			out = append(out, "financial")
			break
		}
	}
	return out
}

func (p profile) characteristics() []string {
	var out []string
	switch {
	case p.rows < smallRows:
		out = append(out, "small_dataset")
	case p.rows > largeRows:
		out = append(out, "large_dataset")
	}
	var high, low bool
	for _, c := range p.categorical {
		if p.rows == 0 {
			break
		}
		ratio := float64(c.Unique) / float64(p.rows)
		if ratio > highCardinality && !high {
			high = true
			out = append(out, "high_cardinality")
		} else if ratio < lowCardinality && !low {
			low = true
			out = append(out, "low_cardinality")
		}
	}
	if len(p.numeric) > manyDimensions {
		out = append(out, "many_dimensions")
	}
	return out
}

// Intents lists the analysis intents named by the question, in rule order.
func Intents(question string) []string {
	q := utils.NormalizeQuestion(question)
	var out []string
	for _, r := range intentRules {
		if utils.ContainsAny(q, r.keywords...) {
			out = append(out, r.name)
		}
	}
	return out
}

// nameHas reports whether a word of the column name starts with a keyword.
func nameHas(name string, keywords []string) bool {
	for _, w := range utils.ColumnWords(name) {
		for _, kw := range keywords {
			if strings.HasPrefix(w, kw) {
				return true
			}
		}
	}
	return false
}

// scorer accumulates scores while remembering first-scored order.
type scorer struct {
	order  []chart.Kind
	scores map[chart.Kind]int
	ok     func(chart.Kind) bool
}

func (s *scorer) add(kinds []chart.Kind, w int) {
	for _, k := range kinds {
		if !s.ok(k) {
			continue
		}
		if _, seen := s.scores[k]; !seen {
			s.order = append(s.order, k)
		}
		s.scores[k] += w
	}
}

// Recommend ranks chart kinds for schema and question and returns at most
// topK of them with a data summary and a ready-to-send message.
func (e *Engine) Recommend(schema *analysis.Schema, question string, topK int) Result {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if schema == nil {
		schema = &analysis.Schema{}
	}
	p := newProfile(schema)
	patterns := p.patterns()
	intents := Intents(question)

	sc := &scorer{scores: map[chart.Kind]int{}, ok: e.registered}
	for _, name := range patterns {
		for _, r := range patternRules {
			if r.name == name {
				sc.add(r.kinds, patternWeight)
			}
		}
	}
	for _, name := range intents {
		for _, r := range intentRules {
			if r.name == name {
				sc.add(r.kinds, intentWeight)
			}
		}
	}
	for _, name := range p.characteristics() {
		for _, r := range characteristicRules {
			if r.name == name {
				sc.add(r.kinds, characteristicWeight)
			}
		}
	}

	ranked := append([]chart.Kind(nil), sc.order...)
	sort.SliceStable(ranked, func(a, b int) bool { return sc.scores[ranked[a]] > sc.scores[ranked[b]] })
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	recs := make([]Recommendation, 0, len(ranked))
	for _, k := range ranked {
		recs = append(recs, Recommendation{
			Kind:       k,
			Score:      sc.scores[k],
			KoreanName: k.KoreanName(),
			Rationale:  rationale(k, len(p.numeric)),
			BestFor:    bestFor(k),
		})
	}
	if len(recs) == 0 {
		recs = defaults(p)
	}
	return Result{
		Recommendations: recs,
		DataSummary: Summary{
			Rows:        schema.Rows,
			Columns:     len(schema.Columns),
			Numeric:     len(p.numeric),
			Categorical: len(p.categorical),
			Datetime:    len(p.datetime),
		},
		SuggestedMessage: SuggestionMessage(recs),
		Patterns:         patterns,
		Intents:          intents,
	}
}

func rationale(k chart.Kind, numeric int) string {
	if k == chart.Histogram {
		return fmt.Sprintf("단일 수치형 변수(%d개)의 분포를 보기에 최적", numeric)
	}
	if r, ok := rationales[k]; ok {
		return r
	}
	return fmt.Sprintf("%s 차트는 현재 데이터 특성에 적합합니다", k)
}

func bestFor(k chart.Kind) []string {
	if uc, ok := useCases[k]; ok {
		return append([]string(nil), uc...)
	}
	return append([]string(nil), defaultUseCases...)
}

// defaults is used when no rule fired.
func defaults(p profile) []Recommendation {
	var out []Recommendation
	if len(p.numeric) > 0 {
		out = append(out, Recommendation{
			Kind:       chart.Histogram,
			Score:      2,
			KoreanName: chart.Histogram.KoreanName(),
			Rationale:  "수치형 데이터의 기본적인 분포 확인",
			BestFor:    []string{"분포 분석", "이상치 탐지"},
		})
	}
	if len(p.categorical) > 0 {
		out = append(out, Recommendation{
			Kind:       chart.Bar,
			Score:      2,
			KoreanName: chart.Bar.KoreanName(),
			Rationale:  "카테고리형 데이터의 빈도 분석",
			BestFor:    []string{"빈도 분석", "카테고리 비교"},
		})
	}
	return out
}

// SuggestionMessage formats recommendations as a chat reply. The top entry is
// featured and the next three are listed.
func SuggestionMessage(recs []Recommendation) string {
	if len(recs) == 0 {
		return "데이터 분석을 위한 기본 차트를 추천드립니다."
	}
	top := recs[0]
	var b strings.Builder
	b.WriteString("📊 **데이터 분석을 위한 차트 추천**\n\n")
	fmt.Fprintf(&b, "**가장 적합한 차트**: %s\n", top.KoreanName)
	fmt.Fprintf(&b, "**추천 이유**: %s\n\n", top.Rationale)
	b.WriteString("**다른 추천 차트들**:\n")
	for i := 1; i < len(recs) && i < 4; i++ {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, recs[i].KoreanName, recs[i].Rationale)
	}
	b.WriteString("\n💡 원하는 차트 이름을 말씀해주시면 바로 생성해드립니다!")
	return b.String()
}
