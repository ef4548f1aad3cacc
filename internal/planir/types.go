package planir

// Stage is one named intermediate relation in a plan.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the renderer.
type Stage interface {
	// Name returns the relation name this stage defines. Names are fixed
	// per stage kind; they are plan-internal identifiers, never user input.
	Name() string

	// Input returns the name of the upstream relation the stage consumes.
	// Empty for the first stage, which reads the reference tables directly.
	Input() string

	stageNode() // Marker method - seals interface to this package
}

// DistanceStage joins companies to the postcode reference, computes the
// haversine distance in miles from the resolved search centre, and applies
// the status, category, and company-age predicates.
//
// When Categories is empty the data-quality default applies: DORMANT
// account categories are excluded. Source data contains companies with
// Active status yet DORMANT accounts; the default guards result quality
// without repairing the source.
type DistanceStage struct {
	Lat float64
	Lon float64

	Status string

	// Categories is the explicit allow-list, or empty for the
	// DORMANT-exclusion default.
	Categories []string

	// Company age bounds in whole years. Age is the plan year minus the
	// incorporation year - a year-only approximation that may be off by up
	// to one depending on day of year, kept deliberately.
	MinAgeYears *int
	MaxAgeYears *int

	// Year is the current year the plan was compiled for.
	Year int
}

func (DistanceStage) Name() string  { return "companies_with_coords" }
func (DistanceStage) Input() string { return "" }
func (DistanceStage) stageNode()    {}

// AggregateStage enriches each company with its classification, PSC, and
// officer aggregates. All joins are outer so companies with zero related
// records still appear, with counts coalesced to zero and the remaining
// aggregate fields null.
type AggregateStage struct {
	From string
	Year int
}

func (AggregateStage) Name() string    { return "companies_enriched" }
func (s AggregateStage) Input() string { return s.From }
func (AggregateStage) stageNode()      {}

// RadiusStage keeps rows within the requested radius. Boundary-inclusive:
// a company at exactly the radius is kept.
type RadiusStage struct {
	From        string
	RadiusMiles float64
}

func (RadiusStage) Name() string    { return "companies_in_radius" }
func (s RadiusStage) Input() string { return s.From }
func (RadiusStage) stageNode()      {}

// SICFilterStage keeps companies holding any of the requested industry
// codes at any ordinal position. Existential per company: one matching
// assignment qualifies the whole company.
type SICFilterStage struct {
	From  string
	Codes []int
}

func (SICFilterStage) Name() string    { return "companies_with_sic" }
func (s SICFilterStage) Input() string { return s.From }
func (SICFilterStage) stageNode()      {}

// PSCAgeStage keeps companies with at least one PSC inside the supplied
// age bounds. Only supplied bounds emit clauses: a lower-bound-only
// request carries no implicit upper bound.
type PSCAgeStage struct {
	From   string
	MinAge *int
	MaxAge *int
}

func (PSCAgeStage) Name() string    { return "companies_with_psc_age" }
func (s PSCAgeStage) Input() string { return s.From }
func (PSCAgeStage) stageNode()      {}

// TenureStage filters on PSC tenure with one of two quantification modes.
//
// Existential (Strict false): the company has at least one PSC whose
// tenure falls in the window, and independently at least one officer whose
// appointment-year tenure falls in the same window.
//
// Universal (Strict true): no PSC of the company violates the window, and
// at least one officer with a non-null appointment date exists. The
// officer corroboration here is existence-only, weaker than the
// date-matched corroboration of existential mode; the asymmetry is part of
// the current contract and pinned by tests.
type TenureStage struct {
	From     string
	MinYears *int
	MaxYears *int
	Strict   bool
	Year     int
}

func (TenureStage) Name() string    { return "companies_with_psc_tenure" }
func (s TenureStage) Input() string { return s.From }
func (TenureStage) stageNode()      {}

// Projection is the terminal selection: the fixed 26-column output set,
// sorted ascending by distance as the sole sort key. Rows at equal
// distance have unspecified relative order.
type Projection struct {
	From string
	Year int
}

// Plan is an immutable compiled search plan: the ordered stage chain plus
// the terminal projection.
type Plan struct {
	Stages     []Stage
	Projection Projection
}

// Terminal returns the name of the last relation stage, the one the
// projection reads from.
func (p Plan) Terminal() string {
	return p.Projection.From
}
