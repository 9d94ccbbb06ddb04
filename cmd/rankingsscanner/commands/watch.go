package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"RankingsScanner/internal/app"
)

func newWatchCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Builds now and then on every scheduler interval until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, v, app.Options{})
			if err != nil {
				return err
			}
			defer rt.app.Close()

			rt.logger.Info("watching", "interval", rt.cfg.Scheduler.Interval)
			return rt.app.Watch(cmd.Context())
		},
	}
}
