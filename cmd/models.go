package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataloom-cli/internal/ai"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect the model catalog and pricing",
	Example: `  dataloom models list --provider anthropic
  dataloom models load --file ./models.yaml
  dataloom models cost gpt-4o-mini --prompt 1200 --completion 300`,
}

var (
	modelsProvider string
	modelsJSON     bool
)

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog models",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := normalizeProvider(modelsProvider)
		models := ai.Models(provider)
		if modelsJSON {
			return writeJSON(os.Stdout, models)
		}
		if len(models) == 0 {
			fmt.Printf("(no models for %q; providers: %v)\n", provider, ai.Providers())
			return nil
		}
		for _, m := range models {
			mark := " "
			if ai.DefaultModel(m.Provider) == m.Name {
				mark = "*"
			}
			fmt.Printf("%s %-11s %-30s ctx %7d  in $%.5f/1K  out $%.5f/1K\n",
				mark, m.Provider, m.Name, m.ContextTokens, m.InputPerK, m.OutputPerK)
		}
		return nil
	},
}

var modelsFile string

var modelsLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Validate a YAML model catalog and show what it adds",
	Long: `Load reads a YAML catalog (model name -> provider, context_tokens,
input_per_k, output_per_k) and merges it for this run. Set models_catalog in
the config to apply it on every run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if modelsFile == "" {
			return fmt.Errorf("--file is required")
		}
		m, err := ai.LoadCatalogFile(modelsFile)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		added, updated := 0, 0
		for name := range m {
			if _, ok := ai.LookupModel(name); ok {
				updated++
			} else {
				added++
			}
		}
		ai.MergeCatalog(m)
		fmt.Printf("✓ Catalog %s: %d new, %d updated\n", modelsFile, added, updated)
		return nil
	},
}

var (
	costPrompt     int
	costCompletion int
)

var modelsCostCmd = &cobra.Command{
	Use:   "cost <model>",
	Short: "Estimate the cost of a call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cost, ok := ai.EstimateCostUSD(args[0], costPrompt, costCompletion)
		if !ok {
			return fmt.Errorf("model %q is not in the catalog", args[0])
		}
		fmt.Printf("%s: %d prompt + %d completion tokens ≈ $%.6f\n", args[0], costPrompt, costCompletion, cost)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsLoadCmd)
	modelsCmd.AddCommand(modelsCostCmd)

	modelsListCmd.Flags().StringVar(&modelsProvider, "provider", "", "only list models of this provider")
	modelsListCmd.Flags().BoolVar(&modelsJSON, "json", false, "print the catalog as JSON")
	modelsLoadCmd.Flags().StringVar(&modelsFile, "file", "", "path to YAML catalog file")
	modelsCostCmd.Flags().IntVar(&costPrompt, "prompt", 1000, "prompt tokens")
	modelsCostCmd.Flags().IntVar(&costCompletion, "completion", 500, "completion tokens")
}
