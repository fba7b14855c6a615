package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dataloom-cli/internal/config"
	"github.com/KaramelBytes/dataloom-cli/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set DataLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		for _, k := range cfgpkg.Keys {
			fmt.Printf("%s: %s\n", k, configValue(cfg, k))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func configValue(c *cfgpkg.Global, key string) string {
	switch key {
	case "provider":
		return c.Provider
	case "model":
		return c.Model
	case "api_key":
		if c.APIKey == "" {
			return ""
		}
		return logging.MaskSecret(c.APIKey)
	case "base_url":
		return c.BaseURL
	case "max_tokens":
		return fmt.Sprint(c.MaxTokens)
	case "temperature":
		return fmt.Sprintf("%.3f", c.Temperature)
	case "models_catalog":
		return c.ModelsCatalog
	case "http_timeout_sec":
		return fmt.Sprint(c.HTTPTimeoutSec)
	case "retry_max_attempts":
		return fmt.Sprint(c.RetryMaxAttempts)
	case "retry_base_delay_ms":
		return fmt.Sprint(c.RetryBaseDelayMs)
	case "retry_max_delay_ms":
		return fmt.Sprint(c.RetryMaxDelayMs)
	case "ollama_host":
		return c.OllamaHost
	case "workspace_dir":
		return c.WorkspaceDir
	case "server_addr":
		return c.ServerAddr
	case "cors_origins":
		return strings.Join(c.CORSOrigins, ",")
	case "max_rows":
		return fmt.Sprint(c.MaxRows)
	}
	return ""
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
