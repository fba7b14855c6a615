package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataloom-cli/internal/ai"
	"github.com/KaramelBytes/dataloom-cli/internal/analyst"
)

var (
	askChart    string
	askX        string
	askY        string
	askExplain  bool
	askStream   bool
	askProvider string
	askModel    string
	askHTML     string
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask <file|id> [question]",
	Short: "Pick and render the chart that answers a question about a dataset",
	Example: `  dataloom ask sales.csv "월별 매출 추이를 보여줘"
  dataloom ask sales.csv "compare revenue by region" --html chart.html
  dataloom ask sales.csv --chart pie --x region --y revenue
  dataloom ask 3f2a... "what chart should I use for this data" --json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := ""
		if len(args) == 2 {
			question = args[1]
		}
		opt := loadOptions()
		repo, err := repositoryFor(args[0], opt)
		if err != nil {
			return err
		}
		svc, model, err := newService(repo, opt, serviceOptions{Explain: askExplain, Stream: askStream && !askJSON, Provider: askProvider, Model: askModel})
		if err != nil {
			return err
		}
		resp, err := svc.Analyze(cmd.Context(), analyst.Request{
			FileID:    args[0],
			Question:  question,
			ChartType: askChart,
			X:         askX,
			Y:         askY,
			Explain:   askExplain,
		})
		if err != nil {
			return err
		}

		if askHTML != "" && resp.Chart != nil {
			if err := writeHTML(askHTML, *resp.Chart); err != nil {
				return err
			}
			if !askJSON {
				fmt.Printf("✓ Wrote chart to %s\n", askHTML)
			}
		}
		if askJSON {
			return writeJSON(os.Stdout, resp)
		}
		printResponse(resp, model)
		return nil
	},
}

func printResponse(resp *analyst.Response, model string) {
	if d := resp.Decision; d != nil && resp.Chart != nil {
		fmt.Printf("Chart: %s (%s)  x=%s y=%s  confidence %.0f%%\n",
			d.Kind, d.Kind.KoreanName(), d.Columns.X, d.Columns.Y, d.Confidence*100)
		fmt.Printf("Intent: %s  focus: %s\n", d.Category, d.Focus)
		for _, r := range d.Reasoning {
			fmt.Printf("  · %s\n", r)
		}
	}
	if len(resp.Recommendations) > 0 {
		fmt.Println("Recommended charts:")
		for i, r := range resp.Recommendations {
			fmt.Printf("  %d. %s (%s) score %d: %s\n", i+1, r.KoreanName, r.Kind, r.Score, r.Rationale)
		}
	}
	if len(resp.Insights) > 0 {
		fmt.Println("Insights:")
		for _, s := range resp.Insights {
			fmt.Printf("  - %s\n", s)
		}
	}
	if resp.Summary != "" && (len(resp.Insights) != 1 || resp.Insights[0] != resp.Summary) {
		fmt.Printf("Summary: %s\n", resp.Summary)
	}
	if len(resp.FollowUps) > 0 {
		fmt.Println("Try next:")
		for _, q := range resp.FollowUps {
			fmt.Printf("  > %s\n", q)
		}
	}
	if resp.Warning != "" {
		fmt.Printf("⚠ %s\n", resp.Warning)
	}
	if u := resp.Usage; u != nil {
		line := fmt.Sprintf("Tokens: %d prompt + %d completion", u.PromptTokens, u.CompletionTokens)
		if cost, ok := ai.EstimateCostUSD(model, u.PromptTokens, u.CompletionTokens); ok && cost > 0 {
			line += fmt.Sprintf(" (~$%.4f with %s)", cost, model)
		}
		fmt.Println(line)
	}
	if resp.Chart == nil && len(resp.Recommendations) == 0 {
		fmt.Println("(no chart)")
	}
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askChart, "chart", "", "force a chart type (e.g. bar, line, pie, heatmap)")
	askCmd.Flags().StringVar(&askX, "x", "", "force the x column")
	askCmd.Flags().StringVar(&askY, "y", "", "force the y column (or 'count')")
	askCmd.Flags().BoolVar(&askExplain, "explain", false, "ask the configured model to explain the chart")
	askCmd.Flags().BoolVar(&askStream, "stream", false, "with --explain, echo the model reply to stderr as it arrives")
	askCmd.Flags().StringVar(&askProvider, "provider", "", "model provider for --explain: openai | openrouter | anthropic | ollama")
	askCmd.Flags().StringVar(&askModel, "model", "", "model name for --explain (overrides config)")
	askCmd.Flags().StringVar(&askHTML, "html", "", "write the chart as an interactive HTML page")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full response as JSON")
}
