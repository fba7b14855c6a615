package strategy

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/chart"
	"github.com/KaramelBytes/dataloom-cli/internal/intent"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

var (
	clearIntentPhrases = []string{"sort by", "group by", "breakdown", "compare", "trend", "비교", "추이"}
	confidenceCorrKeys = []string{"상관관계", "상관성", "correlation", "relationship", "관계", "연관", "vs", "versus", "간의"}
	failureKeywords    = []string{"failure", "failures", "fail", "failed", "실패"}
	// chart kinds a plain distribution question may keep
	distributionKinds = map[chart.Kind]bool{
		chart.Bar: true, chart.Pie: true, chart.Box: true, chart.Violin: true, chart.Histogram: true,
	}
)

const (
	baseConfidence      = 0.5
	columnFoundBonus    = 0.2
	clearIntentBonus    = 0.3
	correlationBonus    = 0.4
	failureMessageConf  = 0.9
	ageWeightConfidence = 0.95
)

// Decision is the chosen chart strategy for a question.
type Decision struct {
	Kind       chart.Kind      `json:"chart_type"`
	Columns    chart.Mapping   `json:"columns"`
	Category   intent.Category `json:"intent_type"`
	Focus      string          `json:"analysis_focus"`
	Confidence float64         `json:"confidence"`
	Reasoning  []string        `json:"reasoning"`
	Branch     Branch          `json:"branch"`
}

// Optimize turns a resolved mapping and intent into a decision with a
// confidence and the ordered list of rules that fired.
func Optimize(res Resolution, m intent.Match, question string) Decision {
	q := utils.NormalizeQuestion(question)
	d := Decision{
		Kind:      m.Kind,
		Columns:   res.Mapping,
		Category:  m.Category,
		Branch:    res.Branch,
		Reasoning: []string{"Basic analysis strategy"},
	}
	conf := baseConfidence
	x := res.Mapping.X
	switch {
	case x.IsColumn():
		conf += columnFoundBonus
		d.Reasoning = append(d.Reasoning, "Found relevant column: "+x.Name())
	case x.Kind() != chart.RefColumn:
		conf += columnFoundBonus
		d.Reasoning = append(d.Reasoning, "Resolved mapping: "+x.String())
	}
	if utils.ContainsAny(q, clearIntentPhrases...) {
		conf += clearIntentBonus
		d.Reasoning = append(d.Reasoning, "Clear user intent detected")
	}
	if utils.ContainsAny(q, confidenceCorrKeys...) {
		conf += correlationBonus
		d.Reasoning = append(d.Reasoning, "Correlation analysis detected")
	}
	if utils.ContainsAny(q, failureKeywords...) && strings.Contains(strings.ToLower(x.Name()), "message") {
		conf = failureMessageConf
		d.Reasoning = append(d.Reasoning, "Perfect match: failure analysis with message column")
	}
	if res.AgeWeight || (utils.ContainsAny(q, ageKeywords...) && utils.ContainsAny(q, weightKeywords...)) {
		conf = ageWeightConfidence
		d.Reasoning = append(d.Reasoning, "Age-weight analysis detected: high confidence")
	}
	if m.Category == intent.Distribution && !distributionKinds[d.Kind] {
		d.Kind = chart.Bar
		d.Reasoning = append(d.Reasoning, "Optimized chart type for distribution")
	}
	if res.Branch != BranchDefault {
		d.Reasoning = append(d.Reasoning, fmt.Sprintf("Column mapping: %s rule", res.Branch))
	}
	d.Confidence = math.Max(0, math.Min(1, conf))
	d.Focus = focusText(m.Focus, res.Mapping)
	return d
}

func focusText(focus string, m chart.Mapping) string {
	out := fmt.Sprintf("%s of %s", focus, m.X)
	if m.Y.IsColumn() {
		out += " vs " + m.Y.Name()
	}
	return out
}
