// Package analyst answers questions about registered datasets: it resolves a
// chart strategy, renders the chart and explains the result.
package analyst

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/dataloom-cli/internal/ai"
	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/chart"
	"github.com/KaramelBytes/dataloom-cli/internal/insight"
	"github.com/KaramelBytes/dataloom-cli/internal/recommend"
	"github.com/KaramelBytes/dataloom-cli/internal/retrieval"
	"github.com/KaramelBytes/dataloom-cli/internal/strategy"
)

var (
	// ErrInvalidRequest marks requests the caller must fix.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnknownColumn is wrapped by ColumnError.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNoExecutor is returned by Execute when no executor is configured.
	ErrNoExecutor = errors.New("code execution is not configured")
)

const (
	recommendationFollow = 3
	defaultTopK          = 5
)

// Repository serves datasets by id.
type Repository interface {
	Get(ctx context.Context, fileID string) (*analysis.Dataset, error)
}

// ExecResult is the outcome of running analysis code against a dataset.
type ExecResult struct {
	Stdout string        `json:"stdout"`
	Figure *chart.Figure `json:"figure,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Executor runs analysis code against a dataset.
type Executor interface {
	Execute(ctx context.Context, code string, ds *analysis.Dataset) (ExecResult, error)
}

// ColumnError reports a requested column that does not exist.
type ColumnError struct {
	Column      string
	Suggestions []string
}

func (e *ColumnError) Error() string {
	msg := fmt.Sprintf("unknown column %q", e.Column)
	if len(e.Suggestions) > 0 {
		msg += "; did you mean " + strings.Join(quoteAll(e.Suggestions), ", ") + "?"
	}
	return msg
}

func (e *ColumnError) Unwrap() error { return ErrUnknownColumn }

// Request is one analysis question. ChartType, X and Y override the
// resolved strategy when set.
type Request struct {
	FileID    string `json:"file_id"`
	Question  string `json:"question"`
	ChartType string `json:"chart_type,omitempty"`
	X         string `json:"x,omitempty"`
	Y         string `json:"y,omitempty"`
	Explain   bool   `json:"explain,omitempty"`
}

// Response is the answer to a Request. Chart is nil when the question asked
// for recommendations.
type Response struct {
	AnalysisID      string                     `json:"analysis_id"`
	FileID          string                     `json:"file_id"`
	Question        string                     `json:"question"`
	Decision        *strategy.Decision         `json:"decision,omitempty"`
	Chart           *chart.Figure              `json:"chart_data"`
	Insights        []string                   `json:"insights"`
	Summary         string                     `json:"summary,omitempty"`
	FollowUps       []string                   `json:"follow_up_questions"`
	Recommendations []recommend.Recommendation `json:"recommendations,omitempty"`
	DataSummary     *recommend.Summary         `json:"data_summary,omitempty"`
	InsightSource   string                     `json:"insight_source,omitempty"`
	Warning         string                     `json:"warning,omitempty"`
	// Usage is set when a model produced the insights.
	Usage *ai.Usage `json:"usage,omitempty"`
}

// Options configures a Service.
type Options struct {
	Profile analysis.Options
	Chart   chart.Config
	// TopK caps recommendation lists.
	TopK int
}

// Service wires the strategy engine, renderer and explainer to a repository.
type Service struct {
	repo        Repository
	engine      *strategy.Engine
	recommender *recommend.Engine
	insights    *insight.Generator
	exec        Executor
	opts        Options
	logger      *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithInsights sets the generator used when a request asks for an explanation.
func WithInsights(g *insight.Generator) Option { return func(s *Service) { s.insights = g } }

// WithExecutor sets the code executor.
func WithExecutor(e Executor) Option { return func(s *Service) { s.exec = e } }

// WithEngine replaces the strategy engine.
func WithEngine(e *strategy.Engine) Option { return func(s *Service) { s.engine = e } }

// NewService returns a Service over repo.
func NewService(repo Repository, opts Options, logger *zap.Logger, options ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	s := &Service{
		repo:        repo,
		engine:      strategy.NewEngine(),
		recommender: recommend.NewEngine(),
		opts:        opts,
		logger:      logger.Named("analyst"),
	}
	for _, o := range options {
		o(s)
	}
	if s.opts.Chart.Logger == nil {
		s.opts.Chart.Logger = s.logger
	}
	return s
}

func (s *Service) load(ctx context.Context, fileID string) (*analysis.Dataset, *analysis.Schema, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, nil, fmt.Errorf("%w: file id is required", ErrInvalidRequest)
	}
	ds, err := s.repo.Get(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	if ds == nil || ds.NumCols() == 0 {
		return nil, nil, analysis.ErrEmptyDataset
	}
	return ds, analysis.ProfileWithOptions(ds, s.opts.Profile), nil
}

// Profile returns the column profiles of a dataset.
func (s *Service) Profile(ctx context.Context, fileID string) (*analysis.Schema, error) {
	_, schema, err := s.load(ctx, fileID)
	return schema, err
}

// Analyze answers req.
func (s *Service) Analyze(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Question) == "" && req.ChartType == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidRequest)
	}
	start := time.Now()
	ds, schema, err := s.load(ctx, req.FileID)
	if err != nil {
		return nil, err
	}

	d := s.engine.Resolve(req.Question, schema)
	if err := s.applyOverrides(&d, req, schema); err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("file_id", req.FileID), zap.Stringer("kind", d.Kind),
		zap.Stringer("x", d.Columns.X), zap.Stringer("y", d.Columns.Y), zap.Float64("confidence", d.Confidence))

	resp := &Response{
		AnalysisID: uuid.NewString(),
		FileID:     req.FileID,
		Question:   req.Question,
		Decision:   &d,
	}

	if ref, ok := d.Columns.Sentinel(); ok && ref == chart.RefRecommendation {
		rec := s.recommender.Recommend(schema, req.Question, s.opts.TopK)
		resp.Insights = []string{rec.SuggestedMessage}
		resp.Summary = rec.SuggestedMessage
		resp.Recommendations = rec.Recommendations
		resp.DataSummary = &rec.DataSummary
		for i, r := range rec.Recommendations {
			if i == recommendationFollow {
				break
			}
			resp.FollowUps = append(resp.FollowUps, r.KoreanName+"로 분석해주세요")
		}
		log.Info("recommendations returned", zap.Int("count", len(rec.Recommendations)), zap.Duration("elapsed", time.Since(start)))
		return resp, nil
	}

	fig := chart.RenderChart(ctx, ds, d.Kind, d.Columns, s.opts.Chart)
	resp.Chart = &fig

	var res insight.Result
	if req.Explain && s.insights != nil {
		res = s.insights.Explain(ctx, req.Question, schema, d)
	} else {
		res = insight.Heuristic(req.Question, schema, d)
	}
	resp.Insights = res.Insights
	resp.Summary = res.Summary
	resp.FollowUps = res.FollowUps
	resp.InsightSource = res.Source
	resp.Warning = res.Warning
	if res.Usage.TotalTokens > 0 {
		u := res.Usage
		resp.Usage = &u
	}
	if fig.IsError() {
		resp.Warning = fig.Error
		log.Warn("chart rendered as error figure", zap.String("error", fig.Error))
	}
	log.Info("analysis complete", zap.String("analysis_id", resp.AnalysisID), zap.Duration("elapsed", time.Since(start)))
	return resp, nil
}

// Recommend lists chart types suited to a dataset and question.
func (s *Service) Recommend(ctx context.Context, fileID, question string) (recommend.Result, error) {
	_, schema, err := s.load(ctx, fileID)
	if err != nil {
		return recommend.Result{}, err
	}
	res := s.recommender.Recommend(schema, question, s.opts.TopK)
	s.logger.Debug("recommendations computed", zap.String("file_id", fileID), zap.Strings("patterns", res.Patterns))
	return res, nil
}

// Execute runs code against a dataset with the configured executor.
func (s *Service) Execute(ctx context.Context, fileID, code string) (ExecResult, error) {
	if s.exec == nil {
		return ExecResult{}, ErrNoExecutor
	}
	ds, _, err := s.load(ctx, fileID)
	if err != nil {
		return ExecResult{}, err
	}
	return s.exec.Execute(ctx, code, ds)
}

func (s *Service) applyOverrides(d *strategy.Decision, req Request, schema *analysis.Schema) error {
	if req.ChartType != "" {
		kind, fellBack := chart.ParseKind(req.ChartType)
		if fellBack {
			s.logger.Warn("unknown chart type, using bar", zap.String("chart_type", req.ChartType))
		}
		d.Kind = kind
		d.Reasoning = append(d.Reasoning, "Chart type set by request: "+kind.String())
		if _, ok := d.Columns.Sentinel(); ok && req.X == "" {
			// a forced kind needs concrete columns; drop the sentinel
			d.Columns = fallbackMapping(schema)
		}
	}
	if req.X == "" && req.Y == "" {
		return nil
	}
	m := d.Columns
	if req.X != "" {
		ref, err := columnRef(req.X, schema)
		if err != nil {
			return err
		}
		m.X = ref
		if req.Y == "" && !m.Y.IsColumn() && m.Y != chart.Count {
			m.Y = chart.Count
		}
	}
	if req.Y != "" {
		ref, err := columnRef(req.Y, schema)
		if err != nil {
			return err
		}
		m.Y = ref
	}
	d.Columns = m
	d.Reasoning = append(d.Reasoning, "Columns set by request: "+m.String())
	return nil
}

// columnRef validates a requested column name, matching case-insensitively
// when there is exactly one candidate.
func columnRef(name string, schema *analysis.Schema) (chart.ColumnRef, error) {
	if strings.EqualFold(strings.TrimSpace(name), chart.Count.String()) {
		if _, ok := schema.Lookup(name); !ok {
			return chart.Count, nil
		}
	}
	if ref := chart.ParseRef(name); !ref.IsColumn() {
		if ref == chart.Count {
			return ref, nil
		}
		return chart.ColumnRef{}, fmt.Errorf("%w: %q cannot be requested as a column", ErrInvalidRequest, name)
	}
	if _, ok := schema.Lookup(name); ok {
		return chart.Column(name), nil
	}
	var folded []string
	for _, n := range schema.Names() {
		if strings.EqualFold(n, name) {
			folded = append(folded, n)
		}
	}
	if len(folded) == 1 {
		return chart.Column(folded[0]), nil
	}
	return chart.ColumnRef{}, &ColumnError{Column: name, Suggestions: Suggest(name, schema.Names())}
}

// Suggest returns up to three column names that fuzzy-match name.
func Suggest(name string, columns []string) []string {
	return retrieval.BuildColumnIndex(columns).Suggest(name)
}

func fallbackMapping(schema *analysis.Schema) chart.Mapping {
	names := schema.Names()
	m := chart.Mapping{X: chart.Column(names[0]), Y: chart.Count}
	if num := schema.Numeric(); len(num) > 0 && num[0] != names[0] {
		m.Y = chart.Column(num[0])
	}
	return m
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
