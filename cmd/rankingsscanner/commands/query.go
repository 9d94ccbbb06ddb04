package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"RankingsScanner/internal/app"
	"RankingsScanner/internal/domain"
)

func newQueryCmd(v *viper.Viper) *cobra.Command {
	var (
		filter  domain.CollegeFilter
		minFees int64
		maxFees int64
	)

	cmd := &cobra.Command{
		Use:   "query [--state S] [--search Q] [--min-fees N] [--max-fees N]",
		Short: "Queries the record store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("min-fees") {
				filter.MinFees = &minFees
			}
			if cmd.Flags().Changed("max-fees") {
				filter.MaxFees = &maxFees
			}

			rt, err := setup(cmd, v, app.Options{})
			if err != nil {
				return err
			}
			defer rt.app.Close()

			colleges, err := rt.app.Query(cmd.Context(), filter)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Rank", "Name", "Location", "Category", "Score"})
			for _, c := range colleges {
				t.AppendRow(table.Row{c.OverallRank, c.Name, c.Location, c.Category, fmt.Sprintf("%.2f", c.NIRFScore)})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.State, "state", "", "exact state match")
	cmd.Flags().StringVar(&filter.Search, "search", "", "case-insensitive substring over name, short name and location")
	cmd.Flags().Int64Var(&minFees, "min-fees", 0, "minimum fees")
	cmd.Flags().Int64Var(&maxFees, "max-fees", 0, "maximum fees")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of records (0 for all)")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "records to skip")
	return cmd
}
