package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakmere/catchment/internal/request"
)

// categoryDescriptions gives each accepted account category a short
// human explanation for the listing command.
var categoryDescriptions = map[string]string{
	"MICRO ENTITY":                "micro-entity accounts, the smallest filing regime",
	"SMALL":                       "small company accounts",
	"MEDIUM":                      "medium company accounts",
	"FULL":                        "full statutory accounts",
	"TOTAL EXEMPTION FULL":        "full accounts, audit exempt",
	"TOTAL EXEMPTION SMALL":       "small accounts, audit exempt",
	"DORMANT":                     "dormant company accounts (excluded unless requested)",
	"NO ACCOUNTS FILED":           "no accounts filed yet",
	"UNAUDITED ABRIDGED":          "abridged accounts, unaudited",
	"AUDITED ABRIDGED":            "abridged accounts, audited",
	"AUDIT EXEMPTION SUBSIDIARY":  "subsidiary exempt from audit under a parent guarantee",
	"FILING EXEMPTION SUBSIDIARY": "subsidiary exempt from filing under a parent guarantee",
	"GROUP":                       "group accounts",
	"PARTIAL EXEMPTION":           "partially exempt accounts",
	"ACCOUNTS TYPE NOT AVAILABLE": "accounts type not recorded in the source data",
}

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List accepted account categories",
		Long:  "List the account categories the --category filter accepts, with a short description of each.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, cat := range request.ValidAccountCategories {
				fmt.Fprintf(out, "%-28s %s\n", cat, categoryDescriptions[cat])
			}
			return nil
		},
	}
}
