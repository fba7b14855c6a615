package recommend

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/chart"
)

func floats(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func kindsOf(recs []Recommendation) []chart.Kind {
	out := make([]chart.Kind, len(recs))
	for i, r := range recs {
		out[i] = r.Kind
	}
	return out
}

func TestSingleNumericSmallDataset(t *testing.T) {
	ds := analysis.MustDataset("t", analysis.NewFloatColumn("score", floats(50, func(i int) float64 { return float64(i) })))
	res := NewEngine().Recommend(analysis.Profile(ds), "", 0)

	assert.Equal(t, []chart.Kind{chart.Box, chart.Histogram, chart.Distplot, chart.ECDF, chart.Scatter}, kindsOf(res.Recommendations))
	assert.Equal(t, 4, res.Recommendations[0].Score)
	assert.Equal(t, []string{"single_numeric"}, res.Patterns)
	assert.Contains(t, res.Recommendations[1].Rationale, "(1개)")
}

func TestCategoryVersusNumericComparison(t *testing.T) {
	regions := []string{"north", "south", "east", "west"}
	vals := make([]string, 200)
	for i := range vals {
		vals[i] = regions[i%4]
	}
	ds := analysis.MustDataset("sales",
		analysis.NewStringColumn("region", vals),
		analysis.NewFloatColumn("sales", floats(200, func(i int) float64 { return float64(i * 3) })),
	)
	res := NewEngine().Recommend(analysis.Profile(ds), "compare sales by region", 5)

	require.Len(t, res.Recommendations, 5)
	assert.Equal(t, []chart.Kind{chart.Bar, chart.Box, chart.Violin, chart.Strip, chart.Line}, kindsOf(res.Recommendations))
	assert.Equal(t, 6, res.Recommendations[0].Score)
	assert.Equal(t, []string{"comparison"}, res.Intents)
	assert.Equal(t, Summary{Rows: 200, Columns: 2, Numeric: 1, Categorical: 1}, res.DataSummary)
	assert.Contains(t, res.SuggestedMessage, "**가장 적합한 차트**: "+chart.Bar.KoreanName())
	assert.Equal(t, []string{"카테고리별 비교", "순위 분석", "집계 결과 표시"}, res.Recommendations[0].BestFor)
}

func TestFinancialTimeSeries(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	days := make([]time.Time, 50)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	price := func(off float64) []float64 { return floats(50, func(i int) float64 { return 100 + float64(i) + off }) }
	ds := analysis.MustDataset("prices",
		analysis.NewTimeColumn("date", days),
		analysis.NewFloatColumn("open", price(0)),
		analysis.NewFloatColumn("high", price(2)),
		analysis.NewFloatColumn("low", price(-2)),
		analysis.NewFloatColumn("close", price(1)),
	)
	res := NewEngine().Recommend(analysis.Profile(ds), "", 5)

	assert.Equal(t, []string{"multiple_numeric", "time_series", "financial"}, res.Patterns)
	assert.Equal(t,
		[]chart.Kind{chart.Candlestick, chart.Waterfall, chart.Line, chart.Heatmap, chart.ParallelCoordinates},
		kindsOf(res.Recommendations))
}

func TestDefaultsWhenNothingScores(t *testing.T) {
	ds := analysis.MustDataset("t",
		analysis.NewStringColumn("kind", []string{"a", "b", "a", "b"}),
		analysis.NewFloatColumn("v", []float64{1, 2, 3, 4}),
	)
	e := &Engine{registered: func(chart.Kind) bool { return false }}
	res := e.Recommend(analysis.Profile(ds), "", 5)

	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, chart.Histogram, res.Recommendations[0].Kind)
	assert.Equal(t, chart.Bar, res.Recommendations[1].Kind)
	assert.Equal(t, 2, res.Recommendations[1].Score)
}

func TestUnregisteredKindsAreSkipped(t *testing.T) {
	ds := analysis.MustDataset("t", analysis.NewFloatColumn("score", floats(50, func(i int) float64 { return float64(i) })))
	e := &Engine{registered: func(k chart.Kind) bool { return k != chart.Box }}
	res := e.Recommend(analysis.Profile(ds), "", 10)

	assert.NotContains(t, kindsOf(res.Recommendations), chart.Box)
	assert.Equal(t, chart.Histogram, res.Recommendations[0].Kind)
}

func TestEmptySchema(t *testing.T) {
	res := NewEngine().Recommend(&analysis.Schema{Rows: 500}, "", 5)
	assert.Empty(t, res.Recommendations)
	assert.Equal(t, "데이터 분석을 위한 기본 차트를 추천드립니다.", res.SuggestedMessage)

	res = NewEngine().Recommend(nil, "", 5)
	assert.Equal(t, Summary{}, res.DataSummary)
}

func TestIntents(t *testing.T) {
	assert.Equal(t, []string{"distribution", "correlation"}, Intents("상관관계와 분포를 보여줘"))
	assert.Equal(t, []string{"ranking"}, Intents("Top 10 customers"))
	assert.Empty(t, Intents("stop the process"))
}

func TestSuggestionMessageListsThreeAlternatives(t *testing.T) {
	var recs []Recommendation
	for i, k := range []chart.Kind{chart.Bar, chart.Line, chart.Pie, chart.Box, chart.Violin} {
		recs = append(recs, Recommendation{Kind: k, Score: 5 - i, KoreanName: k.KoreanName(), Rationale: rationale(k, 1)})
	}
	msg := SuggestionMessage(recs)

	assert.True(t, strings.HasPrefix(msg, "📊 **데이터 분석을 위한 차트 추천**"))
	for i := 2; i <= 4; i++ {
		assert.Contains(t, msg, fmt.Sprintf("%d. %s", i, recs[i-1].KoreanName))
	}
	assert.NotContains(t, msg, "5. ")
	assert.True(t, strings.HasSuffix(msg, "바로 생성해드립니다!"))
}

func TestRationaleFallback(t *testing.T) {
	assert.Equal(t, "funnel 차트는 현재 데이터 특성에 적합합니다", rationale(chart.Funnel, 0))
	assert.Equal(t, []string{"데이터 시각화"}, bestFor(chart.Funnel))
}

func TestFollowUps(t *testing.T) {
	got := FollowUps("국가별 매출 비교", []string{"country", "amount"}, chart.Bar)
	assert.Equal(t, []string{
		"이 데이터의 트렌드를 선 그래프로 보여주세요",
		"비율로 파이 차트를 만들어주세요",
		"평균값과 비교해서 분석해주세요",
		"지역별 성과를 시간에 따라 분석해주세요",
	}, got)

	got = FollowUps("why did payments fail", []string{"status", "amount"}, chart.Heatmap)
	assert.Equal(t, []string{
		"실패 원인별로 분석해주세요",
		"실패율이 높은 시간대는 언제인가요?",
		"status 별 상세 분석을 해주세요",
		"amount의 통계적 분포를 분석해주세요",
	}, got)
}

func TestFollowUpsGenericOnly(t *testing.T) {
	got := FollowUps("", nil, chart.Heatmap)
	assert.Equal(t, genericFollowUps, got)
	assert.LessOrEqual(t, len(FollowUps("revenue by country with errors", []string{"region", "price"}, chart.Pie)), MaxFollowUps)
}
