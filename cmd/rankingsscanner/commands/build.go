package commands

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"RankingsScanner/internal/app"
	"RankingsScanner/internal/usecase"
)

func newBuildCmd(v *viper.Viper) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "build [--refresh]",
		Short: "Discovers, extracts, merges and writes the dataset artifact.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, v, app.Options{RefreshDiscovery: refresh})
			if err != nil {
				return err
			}
			defer rt.app.Close()

			result, err := rt.app.Build(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			t := newTable(out)
			t.AppendHeader(table.Row{"Category", "Records"})
			for _, cc := range usecase.CountByCategory(result.Dataset.Colleges) {
				t.AppendRow(table.Row{cc.Category, humanize.Comma(int64(cc.Records))})
			}
			t.AppendFooter(table.Row{"Total", humanize.Comma(int64(result.Dataset.Total))})
			t.Render()

			size := ""
			if info, err := os.Stat(rt.cfg.Output.Path); err == nil {
				size = " (" + humanize.Bytes(uint64(info.Size())) + ")"
			}
			fmt.Fprintf(out, "%s raw rows from %d pages, wrote %s%s\n",
				humanize.Comma(int64(result.RawRows)), len(result.Endpoints), rt.cfg.Output.Path, size)
			if result.Import != nil {
				fmt.Fprintf(out, "store: %d created, %d updated (run %s)\n",
					result.Import.Created, result.Import.Updated, result.Import.RunID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the discovery cache and probe again")
	return cmd
}
