package request

import (
	"fmt"
	"strings"
)

// ValidationError reports the first rule a SearchRequest violated.
//
// Downstream plan rendering interpolates validated values into query text,
// so this validator is the sole injection defense: every string must match
// a closed allow-list and every number must be range-checked before a plan
// may be built. Messages name the violated rule; raw input is only ever
// echoed quoted, never in a form reusable as query text.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks a SearchRequest against the closed parameter policy.
//
// Checks run in a fixed precedence order and stop at the first failure:
// required fields, postcode shape, radius bounds, status allow-list, SIC
// code list, account-category allow-list, PSC age bounds, PSC tenure
// bounds, company age bounds, output format. Pure function; the request is
// not mutated.
func Validate(r SearchRequest) error {
	if strings.TrimSpace(r.Postcode) == "" {
		return invalid("postcode", "postcode is required")
	}

	pc := strings.TrimSpace(r.Postcode)
	if len(pc) < 5 || len(pc) > 8 {
		return invalid("postcode", "malformed postcode %q", r.Postcode)
	}

	if r.RadiusMiles <= 0 {
		return invalid("radius", "radius must be greater than 0")
	}
	if r.RadiusMiles > 500 {
		return invalid("radius", "radius must be at most 500 miles")
	}

	if !contains(ValidStatuses, r.Status) {
		return invalid("status", "status %q is not one of: %s",
			r.Status, strings.Join(ValidStatuses, ", "))
	}

	if r.SICCodes != nil {
		if len(r.SICCodes) == 0 {
			return invalid("sic", "SIC code list cannot be empty")
		}
		for _, code := range r.SICCodes {
			if code < 0 || code > 99999 {
				return invalid("sic", "SIC code out of range (0-99999): %d", code)
			}
			if code < 10000 {
				return invalid("sic", "SIC code must be 5 digits: %d", code)
			}
		}
	}

	for _, cat := range r.AccountCategories {
		if !contains(ValidAccountCategories, cat) {
			return invalid("categories", "invalid account category: %q", cat)
		}
	}

	if err := boundedPair("PSC age", r.MinPSCAge, r.MaxPSCAge, 16, 120, "psc-age"); err != nil {
		return err
	}
	if err := boundedPair("PSC tenure", r.MinPSCTenureYears, r.MaxPSCTenureYears, 1, 100, "psc-tenure"); err != nil {
		return err
	}
	if err := boundedPair("company age", r.MinCompanyAgeYears, r.MaxCompanyAgeYears, 0, 200, "company-age"); err != nil {
		return err
	}

	if r.Format != FormatCSV && r.Format != FormatXLSX {
		return invalid("format", "output format must be %q or %q, not %q",
			FormatCSV, FormatXLSX, r.Format)
	}

	return nil
}

// boundedPair checks an optional min/max pair against [lo, hi] and min <= max.
// nil bounds are skipped entirely; they emit no plan clause either.
func boundedPair(label string, min, max *int, lo, hi int, field string) error {
	if min != nil {
		if *min < lo {
			return invalid(field, "minimum %s must be at least %d", label, lo)
		}
		if *min > hi {
			return invalid(field, "minimum %s must be at most %d", label, hi)
		}
	}
	if max != nil {
		if *max < lo {
			return invalid(field, "maximum %s must be at least %d", label, lo)
		}
		if *max > hi {
			return invalid(field, "maximum %s must be at most %d", label, hi)
		}
	}
	if min != nil && max != nil && *min > *max {
		return invalid(field, "minimum %s cannot exceed maximum %s", label, label)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
