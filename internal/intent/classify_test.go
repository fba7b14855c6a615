package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataloom-cli/internal/chart"
)

func TestDefaultCatalogLoads(t *testing.T) {
	cat := DefaultCatalog()
	require.NotEmpty(t, cat)
	assert.Equal(t, "pie chart", cat[0].Phrase)
	assert.Equal(t, chart.Pie, cat[0].Kind)
	seen := map[Category]bool{}
	for _, p := range cat {
		seen[p.Category] = true
	}
	for _, c := range []Category{ExplicitChart, Distribution, Comparison, Temporal, Ranking, Correlation} {
		assert.True(t, seen[c], "category %s missing from catalog", c)
	}
}

func TestParseCatalogRejectsUnknownChart(t *testing.T) {
	_, err := ParseCatalog([]byte("patterns:\n  - {pattern: x, category: comparison, chart: nope, focus: f}\n"))
	require.Error(t, err)
	_, err = ParseCatalog([]byte("patterns:\n  - {pattern: x, category: vibes, chart: bar, focus: f}\n"))
	require.Error(t, err)
}

func TestExplicitChartPrecedence(t *testing.T) {
	cases := []struct {
		question string
		want     chart.Kind
	}{
		{"show me a pie chart", chart.Pie},
		{"파이차트로 국가별 비교를 보여주세요", chart.Pie},
		{"compare the trend of revenue with a scatter", chart.Scatter},
		{"top 10 countries as a bar chart", chart.Bar},
		{"make a 3d scatter of the sensors", chart.Scatter3D},
		{"density heatmap of latitude and longitude", chart.DensityHeatmap},
		{"히트맵으로 상관관계 보여줘", chart.Heatmap},
		{"distribution of weight as a histogram", chart.Histogram},
		{"선그래프로 월별 추이", chart.Line},
		{"캔들스틱 차트", chart.Candlestick},
	}
	for _, tc := range cases {
		m := Classify(tc.question)
		assert.Equal(t, tc.want, m.Kind, tc.question)
		assert.Equal(t, ExplicitChart, m.Category, tc.question)
	}
}

func TestCategoryDetection(t *testing.T) {
	cases := []struct {
		question string
		cat      Category
		kind     chart.Kind
	}{
		{"국가별 매출 비교해주세요", Comparison, chart.Bar},
		{"show revenue trend", Temporal, chart.Line},
		{"top customers by orders", Ranking, chart.Bar},
		{"나이와 몸무게의 상관관계를 보여주세요", Correlation, chart.Scatter},
		{"what is the breakdown of payment methods", Distribution, chart.Pie},
	}
	for _, tc := range cases {
		m := Classify(tc.question)
		assert.Equal(t, tc.cat, m.Category, tc.question)
		assert.Equal(t, tc.kind, m.Kind, tc.question)
		assert.False(t, m.Fallback, tc.question)
	}
}

func TestFallbackDefaults(t *testing.T) {
	m := Classify("")
	assert.True(t, m.Fallback)
	assert.Equal(t, chart.Bar, m.Kind)
	assert.Equal(t, "analyze data distribution", m.Focus)

	m = Classify("hello there")
	assert.Equal(t, chart.Bar, m.Kind)
}

func TestFallbackOrderWithCustomCatalog(t *testing.T) {
	c := New([]Pattern{{Phrase: "zzz", Category: Comparison, Kind: chart.Bar, Focus: "f"}})
	assert.Equal(t, chart.Pie, c.Classify("percentage of users").Kind)
	assert.Equal(t, chart.Line, c.Classify("growth last year").Kind)
	assert.Equal(t, chart.Scatter, c.Classify("price vs size").Kind)
	assert.Equal(t, chart.Bar, c.Classify("anything").Kind)
}

func TestTiesResolveToDeclarationOrder(t *testing.T) {
	c := New([]Pattern{
		{Phrase: "alpha", Category: Comparison, Kind: chart.Bar, Focus: "first"},
		{Phrase: "beta", Category: Comparison, Kind: chart.Line, Focus: "second"},
	})
	// both phrases sit within the first ten runes, so they score identically
	for i := 0; i < 20; i++ {
		m := c.Classify("beta alpha")
		assert.Equal(t, "alpha", m.Pattern)
	}
}

func TestScoreFormula(t *testing.T) {
	c := New(nil)
	q := "show me a pie chart"
	table := c.Score(q)
	best, ok := table.Best()
	require.True(t, ok)
	// substring 50 + position bonus 4 + all words 25 + chart name 30
	assert.Equal(t, 109.0, best.Score)
	assert.Equal(t, "pie chart", c.Patterns()[best.Index].Phrase)

	// the shorter "pie" phrase is covered by "pie chart"
	for _, e := range table.Entries() {
		assert.NotEqual(t, "pie", c.Patterns()[e.Index].Phrase)
	}
}

func TestFocusRefinement(t *testing.T) {
	m := Classify("show failure trend")
	assert.Equal(t, "analyze failure patterns in trends over time", m.Focus)

	m = Classify("approved orders over time")
	assert.Contains(t, m.Focus, "analyze success patterns in")
}
