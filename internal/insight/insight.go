// Package insight explains a chart decision in prose, using a text
// generation runtime when one is configured and profile statistics otherwise.
package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KaramelBytes/dataloom-cli/internal/ai"
	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/chart"
	"github.com/KaramelBytes/dataloom-cli/internal/logging"
	"github.com/KaramelBytes/dataloom-cli/internal/recommend"
	"github.com/KaramelBytes/dataloom-cli/internal/strategy"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

// Sources of an explanation.
const (
	SourceModel     = "model"
	SourceHeuristic = "heuristic"
)

// Result is the explanation attached to an analysis.
type Result struct {
	Insights  []string `json:"insights"`
	Summary   string   `json:"summary"`
	FollowUps []string `json:"follow_up_questions"`
	Source    string   `json:"source"`
	// Warning explains why the heuristic fallback was used.
	Warning string   `json:"warning,omitempty"`
	Usage   ai.Usage `json:"usage"`
}

// Options configures a Generator.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	// PromptBudget caps the dataset section of the prompt, in tokens.
	PromptBudget int
	// OnDelta receives reply chunks as they arrive when the runtime streams.
	OnDelta func(string)
}

// Generator produces explanations.
type Generator struct {
	rt     ai.Runtime
	opts   Options
	logger *zap.Logger
}

// NewGenerator returns a Generator. rt may be nil, in which case every
// explanation is heuristic.
func NewGenerator(rt ai.Runtime, opts Options, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2000
	}
	if opts.PromptBudget <= 0 {
		opts.PromptBudget = 3000
	}
	return &Generator{rt: rt, opts: opts, logger: logger.Named("insight")}
}

// Explain describes the decision for question. It never fails: runtime
// errors and unusable replies fall back to Heuristic.
func (g *Generator) Explain(ctx context.Context, question string, schema *analysis.Schema, d strategy.Decision) Result {
	if g.rt == nil {
		return Heuristic(question, schema, d)
	}
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}
	req := ai.GenerateRequest{
		Model: g.opts.Model,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: systemPrompt},
			{Role: ai.RoleUser, Content: BuildPrompt(question, schema, d, g.opts.PromptBudget)},
		},
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	}
	start := time.Now()
	resp, err := g.generate(ctx, req)
	if err != nil {
		g.logger.Warn("text generation failed, using heuristic insights",
			zap.String("model", g.opts.Model), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		res := Heuristic(question, schema, d)
		res.Warning = logging.SanitizeError(err)
		return res
	}
	insights, summary, followUps, ok := ParseReply(resp.Text())
	if !ok {
		g.logger.Warn("unusable model reply, using heuristic insights", zap.Int("reply_len", len(resp.Text())))
		res := Heuristic(question, schema, d)
		res.Warning = "model reply was not valid JSON"
		res.Usage = resp.Usage
		return res
	}
	g.logger.Debug("insights generated",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))
	if len(followUps) == 0 {
		followUps = recommend.FollowUps(question, schema.Names(), d.Kind)
	}
	if summary == "" && len(insights) > 0 {
		summary = insights[0]
	}
	return Result{Insights: insights, Summary: summary, FollowUps: followUps, Source: SourceModel, Usage: resp.Usage}
}

// generate streams through OnDelta when both it and the runtime allow it.
// Streamed replies carry estimated usage.
func (g *Generator) generate(ctx context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	sr, ok := g.rt.(ai.StreamRuntime)
	if !ok || g.opts.OnDelta == nil {
		return g.rt.Generate(ctx, req)
	}
	var b strings.Builder
	err := sr.GenerateStream(ctx, req, func(delta string) {
		b.WriteString(delta)
		g.opts.OnDelta(delta)
	})
	if err != nil {
		return nil, err
	}
	prompt := 0
	for _, m := range req.Messages {
		prompt += utils.CountTokens(m.Content)
	}
	completion := utils.CountTokens(b.String())
	return &ai.GenerateResponse{
		Choices: []ai.Choice{{Message: ai.Message{Role: ai.RoleAssistant, Content: b.String()}}},
		Usage:   ai.Usage{PromptTokens: prompt, CompletionTokens: completion, TotalTokens: prompt + completion},
	}, nil
}

var printer = message.NewPrinter(language.English)

// Heuristic builds insights from the column profiles alone.
func Heuristic(question string, schema *analysis.Schema, d strategy.Decision) Result {
	var insights []string
	insights = append(insights, printer.Sprintf("데이터셋에서 %d개의 레코드와 %d개의 컬럼을 분석했습니다.", schema.Rows, len(schema.Columns)))
	for _, ref := range []chart.ColumnRef{d.Columns.X, d.Columns.Y} {
		if !ref.IsColumn() {
			continue
		}
		p, ok := schema.Lookup(ref.Name())
		if !ok {
			continue
		}
		if s := describeFinding(p, schema.Rows); s != "" {
			insights = append(insights, s)
		}
	}
	insights = append(insights, fmt.Sprintf("%s 차트로 시각화했습니다 (신뢰도 %.0f%%).", d.Kind.KoreanName(), d.Confidence*100))

	summary := fmt.Sprintf("'%s' 질문에 대한 분석 결과입니다. ", question)
	if len(insights) > 1 {
		summary += insights[1]
	} else {
		summary += insights[0]
	}
	return Result{
		Insights:  insights,
		Summary:   summary,
		FollowUps: recommend.FollowUps(question, schema.Names(), d.Kind),
		Source:    SourceHeuristic,
	}
}

func describeFinding(p analysis.ColumnProfile, rows int) string {
	switch {
	case p.IsNumeric() && p.Count > 0:
		return printer.Sprintf("%s의 평균은 %.2f이고, 범위는 %.2f ~ %.2f입니다.", p.Name, p.Mean, p.Min, p.Max)
	case len(p.TopValues) > 0 && rows > 0:
		top := p.TopValues[0]
		share := float64(top.Count) / float64(rows) * 100
		return printer.Sprintf("%s에서 가장 많은 값은 '%s'이며 %d건(%.1f%%)입니다.", p.Name, top.Value, top.Count, share)
	case p.Type == analysis.TypeDatetime && len(p.Samples) > 0:
		return fmt.Sprintf("%s는 날짜형 컬럼이며 %d개의 고유 시점이 있습니다.", p.Name, p.Unique)
	}
	return ""
}
