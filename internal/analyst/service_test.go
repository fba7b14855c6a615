package analyst

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/KaramelBytes/dataloom-cli/internal/ai"
	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/chart"
	"github.com/KaramelBytes/dataloom-cli/internal/insight"
)

var errMissing = errors.New("missing")

type mapRepo map[string]*analysis.Dataset

func (r mapRepo) Get(_ context.Context, id string) (*analysis.Dataset, error) {
	ds, ok := r[id]
	if !ok {
		return nil, errMissing
	}
	return ds, nil
}

type echoExecutor struct{}

func (echoExecutor) Execute(_ context.Context, code string, ds *analysis.Dataset) (ExecResult, error) {
	return ExecResult{Stdout: code + " on " + ds.Name()}, nil
}

type stubRuntime struct{ reply string }

func (s stubRuntime) Generate(context.Context, ai.GenerateRequest) (*ai.GenerateResponse, error) {
	return &ai.GenerateResponse{Choices: []ai.Choice{{Message: ai.Message{Role: ai.RoleAssistant, Content: s.reply}}}}, nil
}

func salesDataset() *analysis.Dataset {
	regions := []string{"Seoul", "Busan", "Seoul", "Daegu", "Incheon", "Busan", "Seoul", "Daegu"}
	sales := []float64{120, 80, 140, 60, 90, 70, 150, 65}
	return analysis.MustDataset("sales.csv",
		analysis.NewStringColumn("region", regions),
		analysis.NewFloatColumn("sales", sales),
	)
}

func newTestService(t *testing.T, options ...Option) *Service {
	repo := mapRepo{"sales": salesDataset(), "empty": &analysis.Dataset{}}
	return NewService(repo, Options{Profile: analysis.DefaultOptions(), Chart: chart.DefaultConfig()}, zaptest.NewLogger(t), options...)
}

func TestAnalyzeRendersChart(t *testing.T) {
	s := newTestService(t)
	resp, err := s.Analyze(context.Background(), Request{FileID: "sales", Question: "show a histogram of sales"})
	require.NoError(t, err)

	_, err = uuid.Parse(resp.AnalysisID)
	require.NoError(t, err)
	require.NotNil(t, resp.Decision)
	assert.Equal(t, chart.Histogram, resp.Decision.Kind)
	require.NotNil(t, resp.Chart)
	assert.False(t, resp.Chart.IsError(), resp.Chart.Error)
	assert.Equal(t, insight.SourceHeuristic, resp.InsightSource)
	assert.NotEmpty(t, resp.Insights)
	assert.NotEmpty(t, resp.FollowUps)
	assert.Nil(t, resp.Recommendations)
}

func TestAnalyzeRecommendationShortCircuits(t *testing.T) {
	s := newTestService(t)
	resp, err := s.Analyze(context.Background(), Request{FileID: "sales", Question: "what chart should I use for this data"})
	require.NoError(t, err)

	assert.Nil(t, resp.Chart)
	require.NotEmpty(t, resp.Recommendations)
	require.Len(t, resp.Insights, 1)
	assert.Contains(t, resp.Insights[0], "추천")
	require.NotNil(t, resp.DataSummary)
	assert.Equal(t, 8, resp.DataSummary.Rows)
	assert.LessOrEqual(t, len(resp.FollowUps), 3)
	assert.Equal(t, resp.Recommendations[0].KoreanName+"로 분석해주세요", resp.FollowUps[0])
}

func TestAnalyzeOverrides(t *testing.T) {
	s := newTestService(t)
	resp, err := s.Analyze(context.Background(), Request{FileID: "sales", Question: "show sales", ChartType: "pie", X: "REGION", Y: "sales"})
	require.NoError(t, err)

	assert.Equal(t, chart.Pie, resp.Decision.Kind)
	assert.Equal(t, chart.Mapping{X: chart.Column("region"), Y: chart.Column("sales")}, resp.Decision.Columns)
	assert.Contains(t, resp.Decision.Reasoning, "Chart type set by request: pie")
	assert.Equal(t, chart.Pie, resp.Chart.Kind)
}

func TestAnalyzeOverrideCountAnyCase(t *testing.T) {
	s := newTestService(t)
	for _, y := range []string{"count", "COUNT", "Count"} {
		resp, err := s.Analyze(context.Background(), Request{FileID: "sales", Question: "regions", X: "region", Y: y})
		require.NoError(t, err, y)
		assert.Equal(t, chart.Mapping{X: chart.Column("region"), Y: chart.Count}, resp.Decision.Columns, y)
	}
}

func TestAnalyzeOverrideReplacesRecommendationSentinel(t *testing.T) {
	s := newTestService(t)
	resp, err := s.Analyze(context.Background(), Request{FileID: "sales", Question: "차트 추천해줘", ChartType: "bar"})
	require.NoError(t, err)

	require.NotNil(t, resp.Chart)
	assert.True(t, resp.Decision.Columns.X.IsColumn())
	assert.Equal(t, chart.Mapping{X: chart.Column("region"), Y: chart.Column("sales")}, resp.Decision.Columns)
}

func TestAnalyzeUnknownColumnSuggests(t *testing.T) {
	s := newTestService(t)
	_, err := s.Analyze(context.Background(), Request{FileID: "sales", Question: "q", X: "regn"})
	require.ErrorIs(t, err, ErrUnknownColumn)

	var ce *ColumnError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"region"}, ce.Suggestions)
	assert.Contains(t, err.Error(), `did you mean "region"?`)
}

func TestAnalyzeErrors(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Analyze(ctx, Request{FileID: "sales"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = s.Analyze(ctx, Request{Question: "q"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = s.Analyze(ctx, Request{FileID: "nope", Question: "q"})
	require.ErrorIs(t, err, errMissing)

	_, err = s.Analyze(ctx, Request{FileID: "empty", Question: "q"})
	require.ErrorIs(t, err, analysis.ErrEmptyDataset)
}

func TestAnalyzeExplainUsesGenerator(t *testing.T) {
	g := insight.NewGenerator(stubRuntime{reply: `{"insights":["Seoul leads"],"summary":"Seoul sells most."}`}, insight.Options{Model: "m"}, nil)
	s := newTestService(t, WithInsights(g))

	resp, err := s.Analyze(context.Background(), Request{FileID: "sales", Question: "compare sales by region", Explain: true})
	require.NoError(t, err)
	assert.Equal(t, insight.SourceModel, resp.InsightSource)
	assert.Equal(t, "Seoul sells most.", resp.Summary)

	resp, err = s.Analyze(context.Background(), Request{FileID: "sales", Question: "compare sales by region"})
	require.NoError(t, err)
	assert.Equal(t, insight.SourceHeuristic, resp.InsightSource)
}

func TestRecommendAndProfile(t *testing.T) {
	s := newTestService(t)
	res, err := s.Recommend(context.Background(), "sales", "compare sales by region")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Recommendations)
	assert.LessOrEqual(t, len(res.Recommendations), 5)

	schema, err := s.Profile(context.Background(), "sales")
	require.NoError(t, err)
	assert.Equal(t, []string{"sales"}, schema.Numeric())
}

func TestExecute(t *testing.T) {
	_, err := newTestService(t).Execute(context.Background(), "sales", "df.describe()")
	require.ErrorIs(t, err, ErrNoExecutor)

	res, err := newTestService(t, WithExecutor(echoExecutor{})).Execute(context.Background(), "sales", "df.describe()")
	require.NoError(t, err)
	assert.Equal(t, "df.describe() on sales.csv", res.Stdout)
}

func TestSuggest(t *testing.T) {
	cols := []string{"order_date", "Revenue", "region", "revenue_share"}
	got := Suggest("rev", cols)
	require.NotEmpty(t, got)
	assert.Subset(t, []string{"Revenue", "revenue_share"}, got)
	assert.Empty(t, Suggest("zzz", cols))
}
