// Package plansql serializes compiled plans to SQLite SQL.
//
// This is the only place stage IR becomes query text. Values arriving here
// have already passed the closed allow-lists and range checks in package
// request - set-valued and identifier-like inputs are interpolated rather
// than bound, so that validation is the injection boundary and rendering
// stays a pure string transform. The free-text postcode never reaches this
// package; only its resolved coordinates do.
package plansql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oakmere/catchment/internal/planir"
)

// Columns is the fixed 26-column output contract, in projection order.
// Export writers use it verbatim as the header row.
var Columns = []string{
	"CompanyNumber",
	"CompanyName",
	"Postcode",
	"DistanceMiles",
	"CompanyStatus",
	"CompanyCategory",
	"AccountCategory",
	"IncorporationDate",
	"CompanyAgeYears",
	"LastAccountsDate",
	"SicCodeCount",
	"PrimarySicCode",
	"PrimarySicDescription",
	"PscCount",
	"YoungestPscAge",
	"OldestPscAge",
	"PscLastUpdated",
	"MinPscTenureYears",
	"MaxPscTenureYears",
	"AvgPscTenureYears",
	"OfficerCount",
	"EarliestOfficerAppointment",
	"LatestOfficerAppointment",
	"MinOfficerTenureYears",
	"MaxOfficerTenureYears",
	"AvgOfficerTenureYears",
}

// Render serializes a plan to a single WITH-chained SQL statement.
// Deterministic: structurally identical plans render to identical text.
func Render(p planir.Plan) (string, error) {
	parts := make([]string, 0, len(p.Stages))
	for _, stage := range p.Stages {
		text, err := renderStage(stage)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}

	var b strings.Builder
	b.WriteString("WITH ")
	b.WriteString(strings.Join(parts, ",\n"))
	b.WriteString("\n")
	b.WriteString(renderProjection(p.Projection))
	return b.String(), nil
}

// CountSQL wraps a plan in a counting query so cardinality is established
// without materializing rows.
func CountSQL(p planir.Plan) (string, error) {
	sql, err := Render(p)
	if err != nil {
		return "", err
	}
	return "SELECT COUNT(*) FROM (\n" + sql + "\n)", nil
}

// LimitSQL appends a result cap to rendered plan SQL. The plan's ORDER BY
// runs before the limit, so the cap always keeps the closest rows.
func LimitSQL(sql string, n int64) string {
	return sql + "\nLIMIT " + strconv.FormatInt(n, 10)
}

// PageSQL appends a batch window to rendered plan SQL, for the batched
// spreadsheet export. Apply to uncapped plan SQL only; the engine bounds
// the final page against the cap itself.
func PageSQL(sql string, limit, offset int64) string {
	return fmt.Sprintf("%s\nLIMIT %d OFFSET %d", sql, limit, offset)
}

func renderStage(s planir.Stage) (string, error) {
	switch stage := s.(type) {
	case planir.DistanceStage:
		return renderDistance(stage), nil
	case planir.AggregateStage:
		return renderAggregate(stage), nil
	case planir.RadiusStage:
		return renderRadius(stage), nil
	case planir.SICFilterStage:
		return renderSICFilter(stage), nil
	case planir.PSCAgeStage:
		return renderPSCAge(stage), nil
	case planir.TenureStage:
		return renderTenure(stage), nil
	default:
		return "", fmt.Errorf("unsupported stage type: %T", s)
	}
}

func renderDistance(s planir.DistanceStage) string {
	var extra strings.Builder

	if len(s.Categories) > 0 {
		quoted := make([]string, len(s.Categories))
		for i, cat := range s.Categories {
			quoted[i] = "'" + cat + "'"
		}
		extra.WriteString("\n        AND c.account_category IN (" + strings.Join(quoted, ", ") + ")")
	} else {
		// Data-quality default: Active companies with DORMANT accounts are a
		// known source inconsistency; exclude them unless asked for.
		extra.WriteString("\n        AND (c.account_category != 'DORMANT' OR c.account_category IS NULL)")
	}

	if s.MinAgeYears != nil {
		extra.WriteString(fmt.Sprintf("\n        AND %s >= %d",
			yearDiff(s.Year, "c.incorporation_date"), *s.MinAgeYears))
	}
	if s.MaxAgeYears != nil {
		extra.WriteString(fmt.Sprintf("\n        AND %s <= %d",
			yearDiff(s.Year, "c.incorporation_date"), *s.MaxAgeYears))
	}

	return fmt.Sprintf(`companies_with_coords AS (
    SELECT
        c.company_number,
        c.company_name,
        c.postcode,
        c.status,
        c.company_category,
        c.account_category,
        c.incorporation_date,
        c.last_accounts_date,
        p.lat,
        p.long,
        haversine_miles(%s, %s, p.lat, p.long) AS distance_miles
    FROM companies c
    LEFT JOIN postcodes p
        ON REPLACE(UPPER(c.postcode), ' ', '') = REPLACE(UPPER(p.pcds), ' ', '')
    WHERE c.status = '%s'
        AND p.lat IS NOT NULL%s
)`, formatFloat(s.Lat), formatFloat(s.Lon), s.Status, extra.String())
}

func renderAggregate(s planir.AggregateStage) string {
	pscTenure := yearDiff(s.Year, "notified_on")
	officerTenure := yearDiffOfficer(s.Year, "appointment_date")

	return fmt.Sprintf(`sic_aggregates AS (
    SELECT
        company_number,
        COUNT(DISTINCT sic_code) AS sic_count,
        MAX(CASE WHEN sic_position = 1 THEN sic_code END) AS primary_sic_code,
        MAX(CASE WHEN sic_position = 1 THEN sic_description END) AS primary_sic_description
    FROM company_sic
    GROUP BY company_number
),
psc_aggregates AS (
    SELECT
        company_number,
        COUNT(*) AS psc_count,
        MIN(approximate_age) AS youngest_psc_age,
        MAX(approximate_age) AS oldest_psc_age,
        MAX(notified_on) AS psc_last_updated,
        MIN(%[1]s) AS min_psc_tenure_years,
        MAX(%[1]s) AS max_psc_tenure_years,
        AVG(%[1]s) AS avg_psc_tenure_years
    FROM psc
    GROUP BY company_number
),
officer_aggregates AS (
    SELECT
        company_number,
        COUNT(*) AS officer_count,
        MIN(appointment_date) AS earliest_officer_appointment,
        MAX(appointment_date) AS latest_officer_appointment,
        MIN(%[2]s) AS min_officer_tenure_years,
        MAX(%[2]s) AS max_officer_tenure_years,
        AVG(%[2]s) AS avg_officer_tenure_years
    FROM officers
    WHERE appointment_date IS NOT NULL
    GROUP BY company_number
),
companies_enriched AS (
    SELECT
        c.*,
        COALESCE(s.sic_count, 0) AS sic_count,
        s.primary_sic_code,
        s.primary_sic_description,
        COALESCE(p.psc_count, 0) AS psc_count,
        p.youngest_psc_age,
        p.oldest_psc_age,
        p.psc_last_updated,
        p.min_psc_tenure_years,
        p.max_psc_tenure_years,
        p.avg_psc_tenure_years,
        COALESCE(o.officer_count, 0) AS officer_count,
        o.earliest_officer_appointment,
        o.latest_officer_appointment,
        o.min_officer_tenure_years,
        o.max_officer_tenure_years,
        o.avg_officer_tenure_years
    FROM %[3]s c
    LEFT JOIN sic_aggregates s ON c.company_number = s.company_number
    LEFT JOIN psc_aggregates p ON c.company_number = p.company_number
    LEFT JOIN officer_aggregates o ON c.company_number = o.company_number
)`, pscTenure, officerTenure, s.From)
}

func renderRadius(s planir.RadiusStage) string {
	return fmt.Sprintf(`companies_in_radius AS (
    SELECT *
    FROM %s
    WHERE distance_miles <= %s
)`, s.From, formatFloat(s.RadiusMiles))
}

func renderSICFilter(s planir.SICFilterStage) string {
	codes := make([]string, len(s.Codes))
	for i, code := range s.Codes {
		codes[i] = strconv.Itoa(code)
	}
	return fmt.Sprintf(`companies_with_sic AS (
    SELECT DISTINCT c.*
    FROM %s c
    JOIN company_sic s ON c.company_number = s.company_number
    WHERE s.sic_code IN (%s)
)`, s.From, strings.Join(codes, ", "))
}

func renderPSCAge(s planir.PSCAgeStage) string {
	var conds []string
	if s.MinAge != nil {
		conds = append(conds, fmt.Sprintf("p.approximate_age >= %d", *s.MinAge))
	}
	if s.MaxAge != nil {
		conds = append(conds, fmt.Sprintf("p.approximate_age <= %d", *s.MaxAge))
	}
	return fmt.Sprintf(`companies_with_psc_age AS (
    SELECT DISTINCT c.*
    FROM %s c
    JOIN psc p ON c.company_number = p.company_number
    WHERE %s
)`, s.From, strings.Join(conds, " AND "))
}

func renderTenure(s planir.TenureStage) string {
	tenure := yearDiff(s.Year, "p.notified_on")

	var conds []string
	if s.MinYears != nil {
		conds = append(conds, fmt.Sprintf("%s >= %d", tenure, *s.MinYears))
	}
	if s.MaxYears != nil {
		conds = append(conds, fmt.Sprintf("%s <= %d", tenure, *s.MaxYears))
	}
	where := "1 = 1"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}

	if s.Strict {
		// Universal: no PSC may violate the window. Officer corroboration is
		// existence-only here, unlike the date-matched window below.
		return fmt.Sprintf(`companies_with_psc_tenure AS (
    SELECT DISTINCT c.*
    FROM %s c
    WHERE NOT EXISTS (
        SELECT 1
        FROM psc p
        WHERE p.company_number = c.company_number
            AND NOT (%s)
    )
        AND EXISTS (
            SELECT 1
            FROM officers o
            WHERE o.company_number = c.company_number
                AND o.appointment_date IS NOT NULL
        )
)`, s.From, where)
	}

	// Existential: one in-window PSC and, independently, one in-window
	// officer appointment. Unsupplied bounds widen the officer window to
	// its validation extremes rather than dropping the corroboration.
	min, max := 1, 100
	if s.MinYears != nil {
		min = *s.MinYears
	}
	if s.MaxYears != nil {
		max = *s.MaxYears
	}
	return fmt.Sprintf(`companies_with_psc_tenure AS (
    SELECT DISTINCT c.*
    FROM %s c
    JOIN psc p ON c.company_number = p.company_number
    WHERE %s
        AND EXISTS (
            SELECT 1
            FROM officers o
            WHERE o.company_number = c.company_number
                AND o.appointment_date IS NOT NULL
                AND %s BETWEEN %d AND %d
        )
)`, s.From, where, yearDiffOfficer(s.Year, "o.appointment_date"), min, max)
}

func renderProjection(p planir.Projection) string {
	return fmt.Sprintf(`SELECT
    company_number AS CompanyNumber,
    company_name AS CompanyName,
    postcode AS Postcode,
    ROUND(distance_miles, 2) AS DistanceMiles,
    status AS CompanyStatus,
    company_category AS CompanyCategory,
    account_category AS AccountCategory,
    incorporation_date AS IncorporationDate,
    %s AS CompanyAgeYears,
    last_accounts_date AS LastAccountsDate,
    sic_count AS SicCodeCount,
    primary_sic_code AS PrimarySicCode,
    primary_sic_description AS PrimarySicDescription,
    psc_count AS PscCount,
    youngest_psc_age AS YoungestPscAge,
    oldest_psc_age AS OldestPscAge,
    psc_last_updated AS PscLastUpdated,
    min_psc_tenure_years AS MinPscTenureYears,
    max_psc_tenure_years AS MaxPscTenureYears,
    avg_psc_tenure_years AS AvgPscTenureYears,
    officer_count AS OfficerCount,
    earliest_officer_appointment AS EarliestOfficerAppointment,
    latest_officer_appointment AS LatestOfficerAppointment,
    min_officer_tenure_years AS MinOfficerTenureYears,
    max_officer_tenure_years AS MaxOfficerTenureYears,
    avg_officer_tenure_years AS AvgOfficerTenureYears
FROM %s
ORDER BY distance_miles ASC`, yearDiff(p.Year, "incorporation_date"), p.From)
}

// yearDiff is the year-only elapsed-years expression for an ISO date
// column. Off by up to one depending on day of year; kept deliberately.
func yearDiff(year int, column string) string {
	return fmt.Sprintf("(%d - CAST(SUBSTR(%s, 1, 4) AS INTEGER))", year, column)
}

// yearDiffOfficer is the same arithmetic for officer appointment dates,
// which the pipeline stores as YYYYMMDD integers.
func yearDiffOfficer(year int, column string) string {
	return fmt.Sprintf("(%d - CAST(SUBSTR(CAST(%s AS TEXT), 1, 4) AS INTEGER))", year, column)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
