package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagex/internal/config"
	logpkg "github.com/kailas-cloud/pagex/internal/logger"
	"github.com/kailas-cloud/pagex/internal/metrics"
)

// app is the state shared by subcommands after config and logger are loaded.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pagex",
		Short: "Extract key/value data from PDF pages with a vision model",
		Long: `pagex renders every page of every PDF in a directory, sends each page image to a
vision-capable model and collects the returned fields into one result per document.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.load()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.env, "env", "e", config.GetEnv(), "config environment (config/<env>.yaml)")

	root.AddCommand(
		newRunCmd(a),
		newPageCmd(a),
		newHealthCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(a.env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	// Register metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	a.cfg = cfg
	a.logger = logger
	return nil
}
