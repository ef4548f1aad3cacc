// Package cli wires the catchment commands: search, categories,
// profiles, and check.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose  bool
	Database string
}

// NewRootCommand creates the root command for the catchment CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "catchment",
		Short: "Find registered companies around a postcode",
		Long: `Catchment searches company reference data for registered companies
within a radius of a postcode, filtered by industry classification,
account category, company age, and PSC or officer tenure.

The reference database is produced by an external preparation pipeline;
run "catchment check" to verify it is ready.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(opts.Verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "companies.db", "path to the reference SQLite database")

	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewCategoriesCommand(opts))
	cmd.AddCommand(NewProfilesCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
