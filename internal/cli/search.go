package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakmere/catchment/internal/engine"
	"github.com/oakmere/catchment/internal/geo"
	"github.com/oakmere/catchment/internal/request"
	"github.com/oakmere/catchment/internal/store"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Postcode      string
	Radius        float64
	Status        string
	Categories    []string
	SICCodes      []int
	MinCompanyAge int
	MaxCompanyAge int
	MinPSCAge     int
	MaxPSCAge     int
	MinPSCTenure  int
	MaxPSCTenure  int
	Strict        bool
	Format        string
	Output        string
	MaxResults    int64
	ConfigPath    string
	Profile       string
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Export companies within a radius of a postcode",
		Long: `Search the reference database for registered companies within a radius
of a postcode and export the matches, closest first, to a CSV or XLSX
artifact.

Parameters merge in three layers: config file defaults, then the chosen
profile, then command-line flags.

Example:
  catchment search --postcode "SW1A 1AA" --radius 10
  catchment search -p "EC2R 8AH" -r 5 --sic 62020 --category "MICRO ENTITY"
  catchment search --profile tech_firms --output tech.xlsx`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Postcode, "postcode", "p", "", "search centre postcode (required unless configured)")
	f.Float64VarP(&opts.Radius, "radius", "r", 10, "search radius in miles")
	f.StringVar(&opts.Status, "status", "Active", "company status filter")
	f.StringSliceVar(&opts.Categories, "category", nil, "account category filter (repeatable)")
	f.IntSliceVar(&opts.SICCodes, "sic", nil, "5-digit SIC code filter (repeatable)")
	f.IntVar(&opts.MinCompanyAge, "min-company-age", 0, "minimum company age in years")
	f.IntVar(&opts.MaxCompanyAge, "max-company-age", 0, "maximum company age in years")
	f.IntVar(&opts.MinPSCAge, "min-psc-age", 0, "minimum PSC age in years")
	f.IntVar(&opts.MaxPSCAge, "max-psc-age", 0, "maximum PSC age in years")
	f.IntVar(&opts.MinPSCTenure, "min-psc-tenure", 0, "minimum PSC tenure in years")
	f.IntVar(&opts.MaxPSCTenure, "max-psc-tenure", 0, "maximum PSC tenure in years")
	f.BoolVar(&opts.Strict, "strict-psc-tenure", false, "require every PSC to satisfy the tenure window")
	f.StringVar(&opts.Format, "format", "csv", "output format (csv|xlsx)")
	f.StringVarP(&opts.Output, "output", "o", "", "artifact path (default companies_<timestamp>.<ext>)")
	f.Int64Var(&opts.MaxResults, "max-results", 0, "cap exported rows to the N closest (0 = no cap)")
	f.StringVar(&opts.ConfigPath, "config", "", "YAML config file (default "+DefaultConfigPath+" when present)")
	f.StringVar(&opts.Profile, "profile", "", "named profile from the config file")

	return cmd
}

func runSearch(opts *SearchOptions, cmd *cobra.Command) error {
	req := request.New("", 10)

	settings, err := loadSettings(opts.ConfigPath, opts.Profile)
	if err != nil {
		return WrapExitError(ExitCommandError, "config error", err)
	}
	settings.Apply(&req)
	applyFlags(&req, opts, cmd.Flags())

	if err := request.Validate(req); err != nil {
		return WrapExitError(ExitCommandError, "invalid search parameters", err)
	}
	if req.OutputPath == "" {
		req.OutputPath = defaultArtifactPath(req.Format, time.Now())
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open reference database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	loc, err := geo.NewResolver(st).Resolve(ctx, req.Postcode)
	if err != nil {
		var nf *geo.NotFoundError
		if errors.As(err, &nf) {
			return WrapExitError(ExitFailure, "postcode not found", err)
		}
		return WrapExitError(ExitCommandError, "failed to resolve postcode", err)
	}
	slog.Debug("postcode resolved", "postcode", loc.Postcode, "lat", loc.Lat, "lon", loc.Lon)

	res, err := engine.New(st, slog.Default()).Execute(ctx, req, loc)
	if err != nil {
		var ee *engine.EngineError
		if errors.As(err, &ee) && ee.Stage == engine.StagePrecondition {
			return WrapExitError(ExitCommandError, "reference data not ready", err)
		}
		return WrapExitError(ExitFailure, "search failed", err)
	}

	out := cmd.OutOrStdout()
	if res.TotalMatches == 0 {
		fmt.Fprintf(out, "No companies within %s miles of %s matched.\n",
			formatMiles(req.RadiusMiles), loc.Postcode)
		return NewExitError(ExitFailure, "no matching companies")
	}

	fmt.Fprintf(out, "Found %d companies within %s miles of %s\n",
		res.TotalMatches, formatMiles(req.RadiusMiles), loc.Postcode)
	if res.Capped {
		fmt.Fprintf(out, "Capped output to the %d closest companies\n", res.RowCount)
	}
	if res.Downgraded {
		fmt.Fprintln(out, "Result too large for a spreadsheet; wrote delimited text instead")
	}
	fmt.Fprintf(out, "Wrote %d rows to %s\n", res.RowCount, res.Artifact)

	if err := writeCommandLog(res.Artifact, opts.Database, req, time.Now()); err != nil {
		slog.Warn("could not write companion command log", "error", err)
	}
	return nil
}

// loadSettings resolves the config layer. A missing default config file
// is fine; a missing explicit one, or a profile with no config, is not.
func loadSettings(path, profile string) (Settings, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return Settings{}, fmt.Errorf("config file %s: %w", path, err)
		}
		if profile != "" {
			return Settings{}, fmt.Errorf("profile %q requested but no config file at %s", profile, path)
		}
		return Settings{}, nil
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return Settings{}, err
	}
	return cfg.Resolve(profile)
}

// applyFlags overrides the merged settings with every flag the user set
// explicitly. Unchanged flags never clobber config values.
func applyFlags(req *request.SearchRequest, opts *SearchOptions, f *pflag.FlagSet) {
	if f.Changed("postcode") {
		req.Postcode = opts.Postcode
	}
	if f.Changed("radius") {
		req.RadiusMiles = opts.Radius
	}
	if f.Changed("status") {
		req.Status = opts.Status
	}
	if f.Changed("category") {
		req.AccountCategories = opts.Categories
	}
	if f.Changed("sic") {
		req.SICCodes = opts.SICCodes
	}
	if f.Changed("min-company-age") {
		req.MinCompanyAgeYears = &opts.MinCompanyAge
	}
	if f.Changed("max-company-age") {
		req.MaxCompanyAgeYears = &opts.MaxCompanyAge
	}
	if f.Changed("min-psc-age") {
		req.MinPSCAge = &opts.MinPSCAge
	}
	if f.Changed("max-psc-age") {
		req.MaxPSCAge = &opts.MaxPSCAge
	}
	if f.Changed("min-psc-tenure") {
		req.MinPSCTenureYears = &opts.MinPSCTenure
	}
	if f.Changed("max-psc-tenure") {
		req.MaxPSCTenureYears = &opts.MaxPSCTenure
	}
	if f.Changed("strict-psc-tenure") {
		req.StrictPSCTenure = opts.Strict
	}
	if f.Changed("format") {
		req.Format = request.OutputFormat(opts.Format)
	}
	if f.Changed("output") {
		req.OutputPath = opts.Output
	}
	if f.Changed("max-results") {
		req.MaxResults = opts.MaxResults
	}
}

func defaultArtifactPath(format request.OutputFormat, now time.Time) string {
	return fmt.Sprintf("companies_%s.%s", now.Format("20060102_150405"), format)
}

// writeCommandLog writes the companion <artifact>.txt holding a command
// line that reproduces the run.
func writeCommandLog(artifact, dbPath string, req request.SearchRequest, now time.Time) error {
	content := fmt.Sprintf("# Search run %s\n%s\n",
		now.Format(time.RFC3339), reconstructCommand(dbPath, req, artifact))
	return os.WriteFile(artifact+".txt", []byte(content), 0o644)
}

func reconstructCommand(dbPath string, req request.SearchRequest, artifact string) string {
	var b strings.Builder
	b.WriteString("catchment search")
	fmt.Fprintf(&b, " --db %s", dbPath)
	fmt.Fprintf(&b, " --postcode '%s'", req.Postcode)
	fmt.Fprintf(&b, " --radius %s", formatMiles(req.RadiusMiles))
	if req.Status != "Active" {
		fmt.Fprintf(&b, " --status %s", req.Status)
	}
	for _, c := range req.AccountCategories {
		fmt.Fprintf(&b, " --category '%s'", c)
	}
	for _, code := range req.SICCodes {
		fmt.Fprintf(&b, " --sic %d", code)
	}
	appendBound(&b, "--min-company-age", req.MinCompanyAgeYears)
	appendBound(&b, "--max-company-age", req.MaxCompanyAgeYears)
	appendBound(&b, "--min-psc-age", req.MinPSCAge)
	appendBound(&b, "--max-psc-age", req.MaxPSCAge)
	appendBound(&b, "--min-psc-tenure", req.MinPSCTenureYears)
	appendBound(&b, "--max-psc-tenure", req.MaxPSCTenureYears)
	if req.StrictPSCTenure {
		b.WriteString(" --strict-psc-tenure")
	}
	if req.Format != request.FormatCSV {
		fmt.Fprintf(&b, " --format %s", req.Format)
	}
	if req.MaxResults > 0 {
		fmt.Fprintf(&b, " --max-results %d", req.MaxResults)
	}
	fmt.Fprintf(&b, " --output %s", artifact)
	return b.String()
}

func appendBound(b *strings.Builder, flag string, v *int) {
	if v != nil {
		fmt.Fprintf(b, " %s %d", flag, *v)
	}
}

func formatMiles(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
