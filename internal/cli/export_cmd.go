package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iglide21/BabyBuddy-sub001/internal/service"
)

func newExportCmd(env *runtimeEnv) *cobra.Command {
	var babyID, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one baby's care records to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := env.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			data, err := service.LoadCareData(ctx, store, babyID)
			if err != nil {
				return fmt.Errorf("loading baby %s: %w", babyID, err)
			}
			wb, err := service.BuildCareWorkbook(data)
			if err != nil {
				return err
			}
			defer wb.Close()
			if err := wb.SaveAs(out); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%d feedings, %d sleeps, %d diapers) to %s\n",
				data.Baby.Name, len(data.Feedings), len(data.Sleeps), len(data.Diapers), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&babyID, "baby", "", "Baby ID")
	cmd.Flags().StringVar(&out, "out", "babymax.xlsx", "Output file")
	_ = cmd.MarkFlagRequired("baby")
	return cmd
}
