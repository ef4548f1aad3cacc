package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/oakmere/catchment/internal/store"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the reference database is ready",
		Long: `Verify the reference database exists, contains every table the search
depends on, and report how many rows each table holds.

Example:
  catchment check --db companies.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd)
		},
	}
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open reference database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := st.CheckReference(ctx); err != nil {
		return WrapExitError(ExitCommandError, "reference data not ready", err)
	}

	counts, err := st.TableCounts(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to inspect reference tables", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Reference database ready: %s\n", opts.Database)

	tables := make([]string, 0, len(counts))
	for table := range counts {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		fmt.Fprintf(out, "  %-12s %d rows\n", table, counts[table])
	}
	return nil
}
