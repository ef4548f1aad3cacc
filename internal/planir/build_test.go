package planir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmere/catchment/internal/geo"
	"github.com/oakmere/catchment/internal/request"
)

var westminster = geo.Location{Postcode: "SW1A 1AA", Lat: 51.501009, Lon: -0.141588}

func intp(v int) *int { return &v }

func stageNames(p Plan) []string {
	names := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		names[i] = s.Name()
	}
	return names
}

func TestBuild_MandatoryStagesOnly(t *testing.T) {
	p := Build(request.New("SW1A 1AA", 10), westminster, 2026)

	assert.Equal(t, []string{
		"companies_with_coords",
		"companies_enriched",
		"companies_in_radius",
	}, stageNames(p))
	assert.Equal(t, "companies_in_radius", p.Terminal())
}

func TestBuild_SICFilterSitsBetweenRadiusAndAgeStages(t *testing.T) {
	req := request.New("SW1A 1AA", 10)
	req.SICCodes = []int{62020, 62090}
	req.MinPSCAge = intp(60)

	p := Build(req, westminster, 2026)

	require.Equal(t, []string{
		"companies_with_coords",
		"companies_enriched",
		"companies_in_radius",
		"companies_with_sic",
		"companies_with_psc_age",
	}, stageNames(p))

	sic, ok := p.Stages[3].(SICFilterStage)
	require.True(t, ok)
	assert.Equal(t, "companies_in_radius", sic.Input())
	assert.Equal(t, []int{62020, 62090}, sic.Codes)

	age, ok := p.Stages[4].(PSCAgeStage)
	require.True(t, ok)
	assert.Equal(t, "companies_with_sic", age.Input())
	assert.Nil(t, age.MaxAge, "unsupplied upper bound must stay absent")
}

func TestBuild_FullChainThreadsReferences(t *testing.T) {
	req := request.New("SW1A 1AA", 25)
	req.SICCodes = []int{62020}
	req.MinPSCAge = intp(55)
	req.MaxPSCAge = intp(70)
	req.MinPSCTenureYears = intp(2)
	req.StrictPSCTenure = true

	p := Build(req, westminster, 2026)

	require.Len(t, p.Stages, 6)
	prev := ""
	for _, s := range p.Stages {
		assert.Equal(t, prev, s.Input(), "stage %s must consume its predecessor", s.Name())
		prev = s.Name()
	}
	assert.Equal(t, "companies_with_psc_tenure", p.Terminal())

	tenure, ok := p.Stages[5].(TenureStage)
	require.True(t, ok)
	assert.True(t, tenure.Strict)
	assert.Nil(t, tenure.MaxYears)
}

func TestBuild_OmittedCategoriesLeaveAllowListEmpty(t *testing.T) {
	p := Build(request.New("SW1A 1AA", 10), westminster, 2026)

	distance, ok := p.Stages[0].(DistanceStage)
	require.True(t, ok)
	assert.Empty(t, distance.Categories, "empty allow-list selects the DORMANT-exclusion default")

	req := request.New("SW1A 1AA", 10)
	req.AccountCategories = []string{"DORMANT"}
	p = Build(req, westminster, 2026)

	distance = p.Stages[0].(DistanceStage)
	assert.Equal(t, []string{"DORMANT"}, distance.Categories)
}

func TestBuild_Deterministic(t *testing.T) {
	req := request.New("SW1A 1AA", 10)
	req.SICCodes = []int{62020, 62090}
	req.MinPSCTenureYears = intp(3)

	first := Build(req, westminster, 2026)
	second := Build(req, westminster, 2026)

	assert.Equal(t, first, second)
}

func TestBuild_PlanIsIndependentOfRequestSlices(t *testing.T) {
	req := request.New("SW1A 1AA", 10)
	req.SICCodes = []int{62020}

	p := Build(req, westminster, 2026)
	req.SICCodes[0] = 99999

	sic := p.Stages[3].(SICFilterStage)
	assert.Equal(t, []int{62020}, sic.Codes)
}
