package plansql

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmere/catchment/internal/geo"
	"github.com/oakmere/catchment/internal/planir"
	"github.com/oakmere/catchment/internal/request"
)

var westminster = geo.Location{Postcode: "SW1A 1AA", Lat: 51.501009, Lon: -0.141588}

func intp(v int) *int { return &v }

func render(t *testing.T, req request.SearchRequest) string {
	t.Helper()
	sql, err := Render(planir.Build(req, westminster, 2026))
	require.NoError(t, err)
	return sql
}

func TestRender_Deterministic(t *testing.T) {
	req := request.New("SW1A 1AA", 10)
	req.SICCodes = []int{62020, 62090}
	req.MinPSCTenureYears = intp(2)

	assert.Equal(t, render(t, req), render(t, req))
}

func TestRender_BaselinePlan(t *testing.T) {
	sql := render(t, request.New("SW1A 1AA", 10))

	assert.Contains(t, sql, "haversine_miles(51.501009, -0.141588, p.lat, p.long)")
	assert.Contains(t, sql, "WHERE c.status = 'Active'")
	assert.Contains(t, sql, "WHERE distance_miles <= 10")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY distance_miles ASC"),
		"distance must be the sole, terminal sort key")
	assert.NotContains(t, sql, "LIMIT", "caps are applied by the engine, not the plan")

	// The free-text location never reaches rendered SQL.
	assert.NotContains(t, sql, "SW1A")

	assert.Equal(t, 1, strings.Count(sql, "AS CompanyAgeYears"))
	for _, col := range Columns {
		assert.Contains(t, sql, " AS "+col)
	}
}

func TestRender_DormantExclusionDefault(t *testing.T) {
	sql := render(t, request.New("SW1A 1AA", 10))
	assert.Contains(t, sql, "AND (c.account_category != 'DORMANT' OR c.account_category IS NULL)")

	req := request.New("SW1A 1AA", 10)
	req.AccountCategories = []string{"DORMANT"}
	sql = render(t, req)
	assert.Contains(t, sql, "AND c.account_category IN ('DORMANT')")
	assert.NotContains(t, sql, "!= 'DORMANT'",
		"explicitly requesting DORMANT must disable the exclusion default")
}

func TestRender_SICFilter(t *testing.T) {
	req := request.New("SW1A 1AA", 10)
	req.SICCodes = []int{62020, 62090}
	sql := render(t, req)

	assert.Contains(t, sql, "WHERE s.sic_code IN (62020, 62090)")
	assert.Contains(t, sql, "FROM companies_in_radius c")
	assert.Contains(t, sql, "FROM companies_with_sic\nORDER BY")
}

func TestRender_PSCAgeOnlySuppliedBounds(t *testing.T) {
	req := request.New("SW1A 1AA", 10)
	req.MinPSCAge = intp(55)
	sql := render(t, req)

	assert.Contains(t, sql, "WHERE p.approximate_age >= 55")
	assert.NotContains(t, sql, "approximate_age <=",
		"an unsupplied upper bound must not appear")
}

func TestRender_ExistentialTenure(t *testing.T) {
	req := request.New("SW1A 1AA", 10)
	req.MinPSCTenureYears = intp(2)
	req.MaxPSCTenureYears = intp(15)
	sql := render(t, req)

	assert.Contains(t, sql, "(2026 - CAST(SUBSTR(p.notified_on, 1, 4) AS INTEGER)) >= 2")
	assert.Contains(t, sql, "(2026 - CAST(SUBSTR(p.notified_on, 1, 4) AS INTEGER)) <= 15")
	assert.Contains(t, sql, "BETWEEN 2 AND 15")
	assert.NotContains(t, sql, "NOT EXISTS")
}

func TestRender_ExistentialTenureWidensOfficerWindowForMissingBounds(t *testing.T) {
	req := request.New("SW1A 1AA", 10)
	req.MinPSCTenureYears = intp(3)
	sql := render(t, req)

	assert.Contains(t, sql, "BETWEEN 3 AND 100")
}

func TestRender_StrictTenure(t *testing.T) {
	req := request.New("SW1A 1AA", 10)
	req.MinPSCTenureYears = intp(2)
	req.MaxPSCTenureYears = intp(15)
	req.StrictPSCTenure = true
	sql := render(t, req)

	assert.Contains(t, sql, "WHERE NOT EXISTS (")
	assert.Contains(t, sql, "AND NOT ((2026 - CAST(SUBSTR(p.notified_on, 1, 4) AS INTEGER)) >= 2 AND (2026 - CAST(SUBSTR(p.notified_on, 1, 4) AS INTEGER)) <= 15)")
	assert.Contains(t, sql, "AND o.appointment_date IS NOT NULL")
	assert.NotContains(t, sql, "BETWEEN",
		"strict mode corroborates on officer existence only, not a date window")
}

func TestRender_CompanyAgeBounds(t *testing.T) {
	req := request.New("SW1A 1AA", 10)
	req.MinCompanyAgeYears = intp(5)
	req.MaxCompanyAgeYears = intp(50)
	sql := render(t, req)

	assert.Contains(t, sql, "AND (2026 - CAST(SUBSTR(c.incorporation_date, 1, 4) AS INTEGER)) >= 5")
	assert.Contains(t, sql, "AND (2026 - CAST(SUBSTR(c.incorporation_date, 1, 4) AS INTEGER)) <= 50")
}

func TestCountSQL_WrapsPlan(t *testing.T) {
	plan := planir.Build(request.New("SW1A 1AA", 10), westminster, 2026)
	sql, err := CountSQL(plan)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "SELECT COUNT(*) FROM (\n"))
	assert.True(t, strings.HasSuffix(sql, "\n)"))
}

func TestLimitAndPageSQL(t *testing.T) {
	assert.Equal(t, "Q\nLIMIT 50", LimitSQL("Q", 50))
	assert.Equal(t, "Q\nLIMIT 10000 OFFSET 20000", PageSQL("Q", 10000, 20000))
}

func TestRender_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	t.Run("baseline", func(t *testing.T) {
		g.Assert(t, "baseline", []byte(render(t, request.New("SW1A 1AA", 10))))
	})

	t.Run("filtered_strict", func(t *testing.T) {
		req := request.New("SW1A 1AA", 25)
		req.AccountCategories = []string{"MICRO ENTITY", "SMALL"}
		req.SICCodes = []int{62020, 62090}
		req.MinCompanyAgeYears = intp(5)
		req.MinPSCAge = intp(55)
		req.MinPSCTenureYears = intp(2)
		req.MaxPSCTenureYears = intp(15)
		req.StrictPSCTenure = true
		g.Assert(t, "filtered_strict", []byte(render(t, req)))
	})
}
