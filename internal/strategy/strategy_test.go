package strategy

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/chart"
	"github.com/KaramelBytes/dataloom-cli/internal/intent"
	"github.com/KaramelBytes/dataloom-cli/internal/retrieval"
)

func repeat(vals []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = vals[i%len(vals)]
	}
	return out
}

func seq(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func ids(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(1000 + i)
	}
	return out
}

func salesSchema() *analysis.Schema {
	ds := analysis.MustDataset("sales",
		analysis.NewStringColumn("Country", repeat([]string{"KR", "US", "JP"}, 30)),
		analysis.NewFloatColumn("Revenue", seq(30, func(i int) float64 { return float64(100 + i) })),
		analysis.NewIntColumn("OrderID", ids(30)),
	)
	return analysis.Profile(ds)
}

func TestScenarioACompareRevenueByCountry(t *testing.T) {
	d := ResolveChartStrategy("국가별 매출 비교해주세요", salesSchema())
	assert.Equal(t, chart.Bar, d.Kind)
	assert.Equal(t, intent.Comparison, d.Category)
	assert.Equal(t, chart.Column("Country"), d.Columns.X)
	assert.Equal(t, chart.Column("Revenue"), d.Columns.Y)
	assert.Contains(t, d.Reasoning, "Clear user intent detected")
}

func TestScenarioBExplicitPie(t *testing.T) {
	ds := analysis.MustDataset("payments",
		analysis.NewStringColumn("Status", repeat([]string{"approved", "declined"}, 20)),
		analysis.NewFloatColumn("Amount", seq(20, func(i int) float64 { return float64(i) * 1.5 })),
	)
	d := ResolveChartStrategy("show me a pie chart", analysis.Profile(ds))
	assert.Equal(t, chart.Pie, d.Kind)
	assert.Equal(t, chart.Column("Status"), d.Columns.X)
	assert.Equal(t, chart.Count, d.Columns.Y)
}

func TestScenarioCAgeWeightCorrelation(t *testing.T) {
	ds := analysis.MustDataset("body",
		analysis.NewStringColumn("Age_Class", repeat([]string{"20s", "30s", "40s"}, 30)),
		analysis.NewFloatColumn("Weight_kg", seq(30, func(i int) float64 { return 50 + float64(i%7)*3 })),
		analysis.NewIntColumn("ID", ids(30)),
	)
	d := ResolveChartStrategy("나이와 몸무게의 상관관계를 보여주세요", analysis.Profile(ds))
	assert.Equal(t, chart.Scatter, d.Kind)
	assert.Equal(t, chart.Column("Age_Class"), d.Columns.X)
	assert.Equal(t, chart.Column("Weight_kg"), d.Columns.Y)
	assert.GreaterOrEqual(t, d.Confidence, 0.95)
	assert.Contains(t, d.Reasoning, "Age-weight analysis detected: high confidence")
}

func TestAlwaysResolves(t *testing.T) {
	schemas := []*analysis.Schema{
		salesSchema(),
		analysis.Profile(analysis.MustDataset("one", analysis.NewIntColumn("row_id", ids(5)))),
		analysis.Profile(analysis.MustDataset("text", analysis.NewStringColumn("note", []string{"a", "b", "c"}))),
	}
	questions := []string{"", "   ", "?!", "show me a pie chart", "히트맵", "what chart should I use", "zzzz", "상관관계", "histogram please"}
	for _, s := range schemas {
		for _, q := range questions {
			d := ResolveChartStrategy(q, s)
			x := d.Columns.X
			if x.IsColumn() {
				_, ok := s.Lookup(x.Name())
				assert.True(t, ok, "x %q must name an existing column (q=%q)", x.Name(), q)
			} else {
				assert.NotEqual(t, chart.RefColumn, x.Kind(), "x must not be empty (q=%q)", q)
			}
			assert.NotEqual(t, "unknown", x.String())
			assert.True(t, d.Confidence >= 0 && d.Confidence <= 1)
		}
	}
}

func TestExplicitChartPhraseDecidesKind(t *testing.T) {
	s := salesSchema()
	cases := map[string]chart.Kind{
		"파이차트로 국가별 매출 비교":                 chart.Pie,
		"compare revenue trend as a scatter": chart.Scatter,
		"box plot of revenue by country":     chart.Box,
		"histogram of revenue":               chart.Histogram,
		"line chart of revenue":              chart.Line,
	}
	for q, want := range cases {
		assert.Equal(t, want, ResolveChartStrategy(q, s).Kind, q)
	}
}

func TestIDColumnsAreDeprioritized(t *testing.T) {
	ds := analysis.MustDataset("customers",
		analysis.NewStringColumn("customer_id", func() []string {
			out := make([]string, 40)
			for i := range out {
				out[i] = fmt.Sprintf("C%03d", i%10)
			}
			return out
		}()),
		analysis.NewStringColumn("country", repeat([]string{"KR", "US"}, 40)),
	)
	s := analysis.Profile(ds)
	d := ResolveChartStrategy("show me the distribution", s)
	assert.Equal(t, chart.Column("country"), d.Columns.X)

	d = ResolveChartStrategy("distribution of customer id", s)
	assert.Equal(t, chart.Column("customer_id"), d.Columns.X)
}

func TestHeatmapGating(t *testing.T) {
	one := analysis.Profile(analysis.MustDataset("t",
		analysis.NewStringColumn("Region", repeat([]string{"N", "S"}, 10)),
		analysis.NewFloatColumn("Sales", seq(10, func(i int) float64 { return float64(i) })),
	))
	d := ResolveChartStrategy("show a heatmap", one)
	assert.Equal(t, chart.Heatmap, d.Kind)
	assert.Equal(t, chart.InsufficientNumeric, d.Columns.X)
	assert.Equal(t, chart.InsufficientNumeric, d.Columns.Y)

	two := analysis.Profile(analysis.MustDataset("t",
		analysis.NewFloatColumn("a", seq(10, func(i int) float64 { return float64(i) })),
		analysis.NewFloatColumn("b", seq(10, func(i int) float64 { return float64(i * i) })),
	))
	d = ResolveChartStrategy("히트맵 보여줘", two)
	assert.Equal(t, chart.Mapping{X: chart.AllNumeric, Y: chart.AllNumeric}, d.Columns)
}

func TestRecommendationSentinel(t *testing.T) {
	for _, q := range []string{
		"어떤 차트가 좋을까요?",
		"what chart should I use for this data",
		"차트 추천해줘",
		"what chart should I use for this map data?",
		"which chart is best for the line items?",
		"파이차트랑 막대차트 중 어떤 차트가 좋을까요?",
	} {
		d := ResolveChartStrategy(q, salesSchema())
		assert.Equal(t, chart.RecommendationRequest, d.Columns.X, q)
		assert.Equal(t, BranchRecommendation, d.Branch, q)
	}
}

func TestHistogramPicksMentionedNumeric(t *testing.T) {
	s := analysis.Profile(analysis.MustDataset("t",
		analysis.NewFloatColumn("height", seq(20, func(i int) float64 { return 150 + float64(i) })),
		analysis.NewFloatColumn("weight", seq(20, func(i int) float64 { return 50 + float64(i) })),
	))
	d := ResolveChartStrategy("histogram of weight", s)
	assert.Equal(t, chart.Mapping{X: chart.Column("weight"), Y: chart.Count}, d.Columns)

	d = ResolveChartStrategy("히스토그램", s)
	assert.Equal(t, chart.Column("height"), d.Columns.X)
}

func TestScatterWithoutCorrelationKeywordsPrefersMentionedColumns(t *testing.T) {
	s := analysis.Profile(analysis.MustDataset("t",
		analysis.NewFloatColumn("alpha", seq(10, func(i int) float64 { return float64(i) })),
		analysis.NewFloatColumn("beta", seq(10, func(i int) float64 { return float64(i) })),
		analysis.NewFloatColumn("gamma", seq(10, func(i int) float64 { return float64(i) })),
	))
	d := ResolveChartStrategy("scatter plot of gamma", s)
	assert.Equal(t, chart.Column("gamma"), d.Columns.X)
	assert.Equal(t, chart.Column("alpha"), d.Columns.Y)
}

func TestTemporalUsesDatetimeAxis(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	days := make([]time.Time, 12)
	for i := range days {
		days[i] = start.AddDate(0, i, 0)
	}
	s := analysis.Profile(analysis.MustDataset("t",
		analysis.NewTimeColumn("month", days),
		analysis.NewStringColumn("store", repeat([]string{"a", "b"}, 12)),
		analysis.NewFloatColumn("sales", seq(12, func(i int) float64 { return float64(i) })),
	))
	d := ResolveChartStrategy("show sales trend", s)
	assert.Equal(t, chart.Line, d.Kind)
	assert.Equal(t, chart.Mapping{X: chart.Column("month"), Y: chart.Column("sales")}, d.Columns)
}

func TestFailureMessageConfidenceOverride(t *testing.T) {
	s := analysis.Profile(analysis.MustDataset("t",
		analysis.NewStringColumn("error_message", repeat([]string{"timeout", "declined", "fraud"}, 30)),
		analysis.NewStringColumn("status", repeat([]string{"ok", "fail"}, 30)),
	))
	d := ResolveChartStrategy("show the breakdown of failure reasons", s)
	assert.Equal(t, chart.Column("error_message"), d.Columns.X)
	assert.InDelta(t, 0.9, d.Confidence, 1e-9)
	assert.Equal(t, "analyze failure patterns in proportional breakdown of error_message", d.Focus)
}

func TestDistributionCorrection(t *testing.T) {
	res := Resolution{Mapping: chart.Mapping{X: chart.Column("a"), Y: chart.Count}, Branch: BranchDefault}
	d := Optimize(res, intent.Match{Category: intent.Distribution, Kind: chart.Candlestick, Focus: "show data distribution"}, "distribution")
	assert.Equal(t, chart.Bar, d.Kind)
	assert.Contains(t, d.Reasoning, "Optimized chart type for distribution")
	assert.Equal(t, "show data distribution of a", d.Focus)
	assert.InDelta(t, 0.7, d.Confidence, 1e-9)
}

func TestHeatmapSentinelEarnsMappingBonus(t *testing.T) {
	s := analysis.Profile(analysis.MustDataset("t",
		analysis.NewFloatColumn("height", seq(20, func(i int) float64 { return float64(150 + i) })),
		analysis.NewFloatColumn("weight", seq(20, func(i int) float64 { return float64(50 + i%7) })),
	))
	d := ResolveChartStrategy("show heatmap", s)
	assert.Equal(t, chart.AllNumeric, d.Columns.X)
	assert.InDelta(t, 0.7, d.Confidence, 1e-9)
	assert.Contains(t, d.Reasoning, "Resolved mapping: "+chart.AllNumeric.String())
}

func TestConfidenceIsClamped(t *testing.T) {
	res := Resolution{Mapping: chart.Mapping{X: chart.Column("a"), Y: chart.Column("b")}}
	d := Optimize(res, intent.Match{Category: intent.Comparison, Kind: chart.Bar, Focus: "compare"}, "compare a vs b correlation")
	assert.Equal(t, 1.0, d.Confidence)
	assert.Equal(t, "compare of a vs b", d.Focus)
	assert.False(t, math.IsNaN(d.Confidence))
}

func TestScoreColumns(t *testing.T) {
	s := salesSchema()
	q := "국가별 매출 비교해주세요"
	idx := retrieval.BuildColumnIndex(s.Names())
	scores := ScoreColumns(q, DefaultLexicon().Expand(q), idx)
	assert.Equal(t, []ColumnScore{
		{Column: "Country", Score: 22},
		{Column: "Revenue", Score: 10},
		{Column: "OrderID", Score: -5},
	}, scores.Entries())
	assert.Equal(t, []string{"Country", "Revenue"}, scores.Positive())

	again := ScoreColumns(q, DefaultLexicon().Expand(q), idx)
	assert.Equal(t, scores.Entries(), again.Entries())

	q = "orders by id"
	scores = ScoreColumns(q, DefaultLexicon().Expand(q), idx)
	assert.Greater(t, scores.Of("OrderID"), 0.0)
}

func TestScoreBonusesMatchWordForms(t *testing.T) {
	idx := retrieval.BuildColumnIndex([]string{"error_message", "card_network", "amount"})
	score := func(q string) ColumnScores {
		return ScoreColumns(q, DefaultLexicon().Expand(q), idx)
	}
	base := score("payments by message").Of("error_message")
	for _, q := range []string{"failed payments by message", "failures by message"} {
		assert.GreaterOrEqual(t, score(q).Of("error_message")-base, float64(failureBonus), q)
	}
	assert.GreaterOrEqual(t, score("declines across cards").Of("card_network")-score("declines across").Of("card_network"),
		float64(cardNetworkBonus))
}

func TestScoreTiesKeepColumnOrder(t *testing.T) {
	idx := retrieval.BuildColumnIndex([]string{"sales_east", "sales_west"})
	scores := ScoreColumns("sales", []string{"sales"}, idx)
	best, ok := scores.Best(nil)
	require.True(t, ok)
	assert.Equal(t, "sales_east", best)
}

func TestPartialOverlap(t *testing.T) {
	assert.True(t, partialOverlap("rev", "revenue"))
	assert.False(t, partialOverlap("me", "message"))
	assert.True(t, partialOverlap("매출", "매출액"))
	assert.False(t, partialOverlap("a", "b"))
}

func TestLexiconExpand(t *testing.T) {
	words := DefaultLexicon().Expand("국가별 매출")
	assert.Equal(t, []string{"국가별", "매출", "country", "nation", "revenue", "sales"}, words)

	_, err := ParseLexicon([]byte("entries:\n  - {triggers: [], expand: [x]}\n"))
	require.Error(t, err)

	custom, err := ParseLexicon([]byte("entries:\n  - {triggers: [벌이], expand: [income]}\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"벌이", "income"}, custom.Expand("벌이"))
}

func TestEngineUsesCustomLexicon(t *testing.T) {
	s := analysis.Profile(analysis.MustDataset("t",
		analysis.NewStringColumn("region", repeat([]string{"a", "b"}, 10)),
		analysis.NewFloatColumn("income", seq(10, func(i int) float64 { return float64(i) })),
	))
	lex, err := ParseLexicon([]byte("entries:\n  - {triggers: [벌이], expand: [income]}\n"))
	require.NoError(t, err)
	e := NewEngine()
	e.Lexicon = lex
	d := e.Resolve("region 별로 벌이 비교", s)
	assert.Equal(t, chart.Mapping{X: chart.Column("region"), Y: chart.Column("income")}, d.Columns)
}
