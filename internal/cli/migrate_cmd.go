package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iglide21/BabyBuddy-sub001/internal/storage"
)

func newMigrateCmd(env *runtimeEnv) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema for the configured storage backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if down {
				if env.cfg.DBType != "postgres" {
					return fmt.Errorf("--down is only supported for postgres, not %s", env.cfg.DBType)
				}
				pool, err := storage.OpenPostgresPool(ctx, env.cfg.DBDSN)
				if err != nil {
					return err
				}
				defer pool.Close()
				if err := storage.MigratePostgres(pool, true); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Reverted postgres migrations")
				return nil
			}

			// Opening a backend applies its migrations.
			store, err := env.openStore(ctx)
			if err != nil {
				return err
			}
			if err := store.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Storage %s is up to date\n", env.cfg.DBType)
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "Revert every migration (postgres only)")
	return cmd
}
