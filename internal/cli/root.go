package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/config"
	"github.com/iglide21/BabyBuddy-sub001/internal/storage"
)

// runtimeEnv is what every subcommand gets after the root has loaded
// config and built the logger.
type runtimeEnv struct {
	cfg    *config.Config
	logger *internal.ZapLogger
}

func (e *runtimeEnv) openStore(ctx context.Context) (storage.Store, error) {
	return storage.Open(ctx, e.cfg, e.logger)
}

// NewRootCmd creates the top-level "babymax" command. With no subcommand it
// serves the HTTP API.
func NewRootCmd() *cobra.Command {
	var configDir string
	env := &runtimeEnv{}

	root := &cobra.Command{
		Use:           "babymax",
		Short:         "Infant care tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			env.cfg, env.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if env.logger != nil {
				_ = env.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), env)
		},
	}
	root.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory searched for config.yaml")

	root.AddCommand(
		newServeCmd(env),
		newMigrateCmd(env),
		newExportCmd(env),
		newTokenCmd(env),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
