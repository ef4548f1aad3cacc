package request

// OutputFormat selects how matched companies are exported.
type OutputFormat string

const (
	// FormatCSV exports a delimited text file, streamed row by row.
	FormatCSV OutputFormat = "csv"

	// FormatXLSX exports a spreadsheet. Subject to the Excel row ceiling;
	// oversized results are downgraded to CSV by the engine.
	FormatXLSX OutputFormat = "xlsx"
)

// ValidStatuses is the closed set of company statuses accepted by the
// validator. Values are interpolated into plan SQL, so membership here is
// the injection defense for the status field.
var ValidStatuses = []string{"Active", "Dissolved", "Liquidation", "Administration"}

// ValidAccountCategories is the closed set of accounts-filing categories
// accepted by the validator. Same injection-defense role as ValidStatuses.
var ValidAccountCategories = []string{
	"MICRO ENTITY", "SMALL", "MEDIUM", "FULL",
	"TOTAL EXEMPTION FULL", "TOTAL EXEMPTION SMALL",
	"DORMANT", "NO ACCOUNTS FILED",
	"UNAUDITED ABRIDGED", "AUDITED ABRIDGED",
	"AUDIT EXEMPTION SUBSIDIARY", "FILING EXEMPTION SUBSIDIARY",
	"GROUP", "PARTIAL EXEMPTION", "ACCOUNTS TYPE NOT AVAILABLE",
}

// SearchRequest is one untrusted search as received from the CLI or a
// config profile. It is constructed once per invocation and must not be
// mutated after Validate accepts it.
//
// Pointer fields distinguish "not supplied" from a zero value: a nil bound
// emits no clause at all in the compiled plan, while a supplied bound emits
// exactly that clause.
type SearchRequest struct {
	// Postcode is the free-text search centre. Resolved to coordinates by
	// geo.Resolver; never interpolated into plan SQL.
	Postcode string

	// RadiusMiles is the search radius, (0, 500].
	RadiusMiles float64

	// Status filters companies by registration status. Defaults to Active.
	Status string

	// AccountCategories restricts matches to these accounts-filing
	// categories. nil triggers the data-quality default that excludes
	// DORMANT (source data contains Active companies with DORMANT
	// accounts; we document the inconsistency rather than repair it).
	AccountCategories []string

	// SICCodes restricts matches to companies holding any of these
	// industry classifications at any ordinal position. nil means no
	// filter; an empty non-nil list is a validation error.
	SICCodes []int

	// Company age bounds in whole years, incorporation year subtracted
	// from the current year.
	MinCompanyAgeYears *int
	MaxCompanyAgeYears *int

	// PSC (person with significant control) age bounds.
	MinPSCAge *int
	MaxPSCAge *int

	// PSC tenure bounds in whole years since notification.
	MinPSCTenureYears *int
	MaxPSCTenureYears *int

	// StrictPSCTenure selects universal quantification: every PSC of a
	// company must satisfy the tenure window. The default is existential:
	// one in-window PSC qualifies the company.
	StrictPSCTenure bool

	// Format selects the export writer.
	Format OutputFormat

	// OutputPath overrides the generated artifact path. Empty means a
	// timestamped file in the working directory.
	OutputPath string

	// MaxResults caps the exported rows. 0 means no cap. The cap always
	// keeps the MaxResults closest companies because plans sort by
	// distance before the cap is applied.
	MaxResults int64
}

// New returns a SearchRequest for the required fields with the documented
// defaults applied (status Active, CSV output).
func New(postcode string, radiusMiles float64) SearchRequest {
	return SearchRequest{
		Postcode:    postcode,
		RadiusMiles: radiusMiles,
		Status:      "Active",
		Format:      FormatCSV,
	}
}
