package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataloom-cli/internal/project"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Initialize a DataLoom workspace",
	Long: `Create workspace.json in the workspace directory (--workspace, or the
configured workspace_dir). The name defaults to the directory name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := workspaceFlag
		if dir == "" {
			dir = workspaceDir()
		}
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		// Refuse to initialize inside a non-empty directory that is not ours.
		if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
			if _, err := os.Stat(filepath.Join(dir, utils.WorkspaceFile)); os.IsNotExist(err) && !initForce {
				return fmt.Errorf("directory %s already exists and is not empty; use --force to initialize anyway", dir)
			}
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("inspect workspace directory: %w", err)
		}
		ws, err := project.Init(dir, name)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Workspace initialized: %s (%s)\n", ws.Name, ws.RootDir())
		return nil
	},
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "initialize even if the directory has other files")
}
