package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
)

var (
	profOutputPath string
	profDelimiter  string
	profDecimal    string
	profThousands  string
	profSampleRows int
	profMaxRows    int
	profCorr       bool
	profSheetName  string
	profSheetIndex int
)

var profileCmd = &cobra.Command{
	Use:   "profile <file|id>",
	Short: "Profile a dataset's columns and print a Markdown report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := profileOptions()
		if err != nil {
			return err
		}
		repo, err := repositoryFor(args[0], opt)
		if err != nil {
			return err
		}
		ds, err := repo.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		md := analysis.ProfileWithOptions(ds, opt).Markdown()

		if profOutputPath != "" {
			if err := os.WriteFile(profOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote profile to %s\n", profOutputPath)
			return nil
		}
		fmt.Println(md)
		return nil
	},
}

func profileOptions() (analysis.Options, error) {
	opt := loadOptions()
	if profSampleRows > 0 {
		opt.SampleRows = profSampleRows
	}
	if profMaxRows >= 0 {
		opt.MaxRows = profMaxRows
	}
	var err error
	if opt.Delimiter, err = parseSeparator("delimiter", profDelimiter, delimiterNames); err != nil {
		return opt, err
	}
	if opt.DecimalSeparator, err = parseSeparator("decimal", profDecimal, decimalNames); err != nil {
		return opt, err
	}
	if opt.ThousandsSeparator, err = parseSeparator("thousands", profThousands, thousandsNames); err != nil {
		return opt, err
	}
	opt.Correlations = profCorr
	opt.SheetName = profSheetName
	opt.SheetIndex = profSheetIndex
	return opt, nil
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&profOutputPath, "output", "o", "", "optional path to write the report (Markdown)")
	profileCmd.Flags().StringVar(&profDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|'")
	profileCmd.Flags().StringVar(&profDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	profileCmd.Flags().StringVar(&profThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	profileCmd.Flags().IntVar(&profSampleRows, "sample-rows", 5, "number of sample rows to include")
	profileCmd.Flags().IntVar(&profMaxRows, "max-rows", -1, "maximum rows to process (0 = unlimited, default from config)")
	profileCmd.Flags().BoolVar(&profCorr, "correlations", true, "compute Pearson correlations among numeric columns")
	profileCmd.Flags().StringVar(&profSheetName, "sheet-name", "", "XLSX: sheet name to profile")
	profileCmd.Flags().IntVar(&profSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}
