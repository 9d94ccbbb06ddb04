package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"RankingsScanner/internal/app"
)

func newDiscoverCmd(v *viper.Viper) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "discover [--refresh]",
		Short: "Lists category pages that carry a populated ranking table.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, v, app.Options{RefreshDiscovery: refresh})
			if err != nil {
				return err
			}
			defer rt.app.Close()

			endpoints, err := rt.app.Discover(cmd.Context())
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"#", "Category", "URL"})
			for i, ep := range endpoints {
				t.AppendRow(table.Row{i + 1, ep.Category, ep.URL})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the discovery cache and probe again")
	return cmd
}
