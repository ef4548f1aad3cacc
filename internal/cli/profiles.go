package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// ProfilesOptions holds flags for the profiles command.
type ProfilesOptions struct {
	*RootOptions
	ConfigPath string
}

// NewProfilesCommand creates the profiles command.
func NewProfilesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfilesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List search profiles from the config file",
		Long: `List the named profiles defined in the config file, with the settings
each one overrides.

Example:
  catchment profiles
  catchment profiles --config team.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", DefaultConfigPath, "YAML config file")
	return cmd
}

func runProfiles(opts *ProfilesOptions, cmd *cobra.Command) error {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	out := cmd.OutOrStdout()
	names := cfg.ProfileNames()
	if len(names) == 0 {
		fmt.Fprintf(out, "No profiles defined in %s\n", opts.ConfigPath)
		return nil
	}

	for _, name := range names {
		fmt.Fprintf(out, "%-20s %s\n", name, describeSettings(cfg.Profiles[name]))
	}
	return nil
}

func describeSettings(s Settings) string {
	var parts []string
	if s.Postcode != nil {
		parts = append(parts, "postcode="+*s.Postcode)
	}
	if s.RadiusMiles != nil {
		parts = append(parts, "radius="+formatMiles(*s.RadiusMiles))
	}
	if s.Status != nil {
		parts = append(parts, "status="+*s.Status)
	}
	if s.AccountCategories != nil {
		parts = append(parts, "categories="+strings.Join(s.AccountCategories, "|"))
	}
	if s.SICCodes != nil {
		codes := make([]string, len(s.SICCodes))
		for i, c := range s.SICCodes {
			codes[i] = strconv.Itoa(c)
		}
		parts = append(parts, "sic="+strings.Join(codes, "|"))
	}
	appendIntSetting(&parts, "min_company_age", s.MinCompanyAge)
	appendIntSetting(&parts, "max_company_age", s.MaxCompanyAge)
	appendIntSetting(&parts, "min_psc_age", s.MinPSCAge)
	appendIntSetting(&parts, "max_psc_age", s.MaxPSCAge)
	appendIntSetting(&parts, "min_psc_tenure", s.MinPSCTenure)
	appendIntSetting(&parts, "max_psc_tenure", s.MaxPSCTenure)
	if s.StrictPSCTenure != nil {
		parts = append(parts, "strict_psc_tenure="+strconv.FormatBool(*s.StrictPSCTenure))
	}
	if s.Format != nil {
		parts = append(parts, "format="+*s.Format)
	}
	if s.MaxResults != nil {
		parts = append(parts, "max_results="+strconv.FormatInt(*s.MaxResults, 10))
	}
	if len(parts) == 0 {
		return "(no overrides)"
	}
	return strings.Join(parts, " ")
}

func appendIntSetting(parts *[]string, name string, v *int) {
	if v != nil {
		*parts = append(*parts, name+"="+strconv.Itoa(*v))
	}
}
