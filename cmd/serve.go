package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/dataloom-cli/internal/logging"
	"github.com/KaramelBytes/dataloom-cli/internal/project"
	"github.com/KaramelBytes/dataloom-cli/internal/server"
)

var (
	serveAddr       string
	serveExplain    bool
	serveProvider   string
	serveModel      string
	serveTimeoutSec int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workspace datasets over a JSON API",
	Long: `Serve starts an HTTP API over the registered datasets:

  GET  /health
  GET  /api/datasets
  GET  /api/datasets/{id}/profile
  POST /api/analysis          {"file_id", "question", "chart_type", "x", "y", "explain"}
  POST /api/recommendations   {"file_id", "question"}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.NewServer(debug)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l

		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		opt := loadOptions()
		repo := project.NewRepository(ws, opt, logger)
		svc, model, err := newService(repo, opt, serviceOptions{Explain: serveExplain, Provider: serveProvider, Model: serveModel})
		if err != nil {
			return err
		}

		opts := server.Options{Addr: serveAddr, RequestTimeout: time.Duration(serveTimeoutSec) * time.Second}
		if cfg != nil {
			if opts.Addr == "" {
				opts.Addr = cfg.ServerAddr
			}
			opts.CORSOrigins = cfg.CORSOrigins
		}
		if opts.Addr == "" {
			opts.Addr = "127.0.0.1:8000"
		}
		logger.Info("serving workspace",
			zap.String("workspace", ws.RootDir()),
			zap.Int("datasets", len(ws.Datasets)),
			zap.Bool("explain", serveExplain),
			zap.String("model", model))
		return server.ListenAndServe(cmd.Context(), server.NewHandler(svc, repo, logger), opts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, 127.0.0.1:8000)")
	serveCmd.Flags().BoolVar(&serveExplain, "explain", false, "allow requests to ask the configured model for insights")
	serveCmd.Flags().StringVar(&serveProvider, "provider", "", "model provider for insights")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "model name for insights")
	serveCmd.Flags().IntVar(&serveTimeoutSec, "request-timeout", 120, "per-request timeout in seconds (0 = none)")
}
