package planir

import (
	"github.com/oakmere/catchment/internal/geo"
	"github.com/oakmere/catchment/internal/request"
)

// Build compiles a validated request and resolved location into a plan.
//
// Pure function: identical inputs produce structurally identical plans,
// and the request is never mutated. The caller supplies the current year
// so tenure and age arithmetic stay deterministic under test.
//
// The three mandatory stages always appear, in order: distance, aggregate,
// radius. Optional stages are appended by a left fold over an ordered list
// of constructors, each taking the prior stage's name and returning the
// next stage; presence varies with the request, relative order never does.
func Build(req request.SearchRequest, loc geo.Location, year int) Plan {
	distance := DistanceStage{
		Lat:         loc.Lat,
		Lon:         loc.Lon,
		Status:      req.Status,
		Categories:  copySlice(req.AccountCategories),
		MinAgeYears: req.MinCompanyAgeYears,
		MaxAgeYears: req.MaxCompanyAgeYears,
		Year:        year,
	}
	aggregate := AggregateStage{From: distance.Name(), Year: year}
	radius := RadiusStage{From: aggregate.Name(), RadiusMiles: req.RadiusMiles}

	stages := []Stage{distance, aggregate, radius}

	optional := []func(from string) (Stage, bool){
		func(from string) (Stage, bool) {
			if len(req.SICCodes) == 0 {
				return nil, false
			}
			return SICFilterStage{From: from, Codes: copySlice(req.SICCodes)}, true
		},
		func(from string) (Stage, bool) {
			if req.MinPSCAge == nil && req.MaxPSCAge == nil {
				return nil, false
			}
			return PSCAgeStage{From: from, MinAge: req.MinPSCAge, MaxAge: req.MaxPSCAge}, true
		},
		func(from string) (Stage, bool) {
			if req.MinPSCTenureYears == nil && req.MaxPSCTenureYears == nil {
				return nil, false
			}
			return TenureStage{
				From:     from,
				MinYears: req.MinPSCTenureYears,
				MaxYears: req.MaxPSCTenureYears,
				Strict:   req.StrictPSCTenure,
				Year:     year,
			}, true
		},
	}

	ref := radius.Name()
	for _, construct := range optional {
		stage, ok := construct(ref)
		if !ok {
			continue
		}
		stages = append(stages, stage)
		ref = stage.Name()
	}

	return Plan{
		Stages:     stages,
		Projection: Projection{From: ref, Year: year},
	}
}

func copySlice[T any](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
