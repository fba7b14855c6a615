package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	addDesc       string
	addSheetName  string
	addSheetIndex int
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Register a CSV/TSV/XLSX dataset in the workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		opt := loadOptions()
		opt.SheetName = addSheetName
		opt.SheetIndex = addSheetIndex
		d, err := ws.AddDataset(args[0], addDesc, opt)
		if err != nil {
			return err
		}
		if err := ws.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Dataset added: %s (%d rows, %d columns)\n", d.Name, d.Rows, len(d.Columns))
		fmt.Printf("  id: %s\n", d.ID)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <id|name>",
	Aliases: []string{"rm"},
	Short:   "Unregister a dataset (the file is left in place)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		d, err := ws.Remove(args[0])
		if err != nil {
			return err
		}
		if err := ws.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Dataset removed: %s\n", d.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	addCmd.Flags().StringVar(&addDesc, "desc", "", "dataset description")
	addCmd.Flags().StringVar(&addSheetName, "sheet-name", "", "XLSX: sheet name to load")
	addCmd.Flags().IntVar(&addSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}
