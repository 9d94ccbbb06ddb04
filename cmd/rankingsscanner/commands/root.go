// Package commands implements the CLI commands for rankingsscanner.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"RankingsScanner/internal/app"
	"RankingsScanner/internal/config"
	"RankingsScanner/internal/logging"
)

// NewRootCmd assembles the command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "rankingsscanner",
		Short: "Scrapes, normalizes and merges NIRF ranking tables",
		Long: `rankingsscanner discovers NIRF category ranking pages, extracts their
tables through a cascade of parsers, and writes a merged, ranked dataset.

Examples:
  # Build colleges.json with the default configuration
  rankingsscanner build

  # Re-probe category pages and show what was found
  rankingsscanner discover --refresh

  # Load a dataset into the record store and query it
  rankingsscanner load colleges.json
  rankingsscanner query --state Karnataka --limit 10`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file (env "+config.PathEnv+")")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	_ = v.BindEnv("config", config.PathEnv)

	root.AddCommand(
		newBuildCmd(v),
		newDiscoverCmd(v),
		newLoadCmd(v),
		newQueryCmd(v),
		newWatchCmd(v),
	)
	return root
}

// ExecuteContext runs the root command.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

type runtime struct {
	cfg    config.Config
	logger *slog.Logger
	app    *app.Application
}

func setup(cmd *cobra.Command, v *viper.Viper, opts app.Options) (*runtime, error) {
	cfg, err := config.Load(v.GetString("config"))
	if err != nil {
		return nil, err
	}
	if level := v.GetString("log_level"); level != "" {
		cfg.Logging.Level = level
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cmd.Context(), cfg, logger, opts)
	if err != nil {
		return nil, fmt.Errorf("init application: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger, app: application}, nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}
