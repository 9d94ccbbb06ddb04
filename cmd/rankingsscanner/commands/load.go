package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"RankingsScanner/internal/app"
)

func newLoadCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "load <dataset.json>",
		Short: "Upserts a dataset artifact into the record store.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, v, app.Options{})
			if err != nil {
				return err
			}
			defer rt.app.Close()

			summary, err := rt.app.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %s records (%d created, %d updated), data version %s, run %s\n",
				humanize.Comma(int64(summary.Total)), summary.Created, summary.Updated, summary.DataVersion, summary.RunID)
			return nil
		},
	}
}
