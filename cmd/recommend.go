package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var recJSON bool

var recommendCmd = &cobra.Command{
	Use:   "recommend <file|id> [question]",
	Short: "Rank the chart types that suit a dataset",
	Args:  cobra.RangeArgs(1, 2),
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
		svc, _, err := newService(repo, opt, serviceOptions{})
		if err != nil {
			return err
		}
		res, err := svc.Recommend(cmd.Context(), args[0], question)
		if err != nil {
			return err
		}
		if recJSON {
			return writeJSON(os.Stdout, res)
		}
		s := res.DataSummary
		fmt.Printf("Data: %d rows, %d columns (%d numeric, %d categorical, %d datetime)\n",
			s.Rows, s.Columns, s.Numeric, s.Categorical, s.Datetime)
		if len(res.Patterns) > 0 {
			fmt.Printf("Patterns: %s\n", strings.Join(res.Patterns, ", "))
		}
		for i, r := range res.Recommendations {
			fmt.Printf("%d. %s (%s) score %d\n   %s\n", i+1, r.KoreanName, r.Kind, r.Score, r.Rationale)
			if len(r.BestFor) > 0 {
				fmt.Printf("   best for: %s\n", strings.Join(r.BestFor, ", "))
			}
		}
		fmt.Println(res.SuggestedMessage)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().BoolVar(&recJSON, "json", false, "print recommendations as JSON")
}
