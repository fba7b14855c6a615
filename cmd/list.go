package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		datasets := ws.List()
		if listJSON {
			return writeJSON(os.Stdout, datasets)
		}
		if len(datasets) == 0 {
			fmt.Println("(no datasets)")
			return nil
		}
		for _, d := range datasets {
			fmt.Printf("- %s: %s (%d rows, %d columns)", d.ID, d.Name, d.Rows, len(d.Columns))
			if d.Description != "" {
				fmt.Printf(" %s", d.Description)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print datasets as JSON")
}
