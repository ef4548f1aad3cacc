// Package engine runs compiled search plans against the reference store
// and writes the result artifact.
//
// Execution is count-then-export: a COUNT over the full plan decides
// whether to touch the filesystem at all, whether the result cap bites,
// and whether a spreadsheet request must be downgraded to delimited
// text before a single row is fetched.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oakmere/catchment/internal/export"
	"github.com/oakmere/catchment/internal/geo"
	"github.com/oakmere/catchment/internal/planir"
	"github.com/oakmere/catchment/internal/plansql"
	"github.com/oakmere/catchment/internal/request"
	"github.com/oakmere/catchment/internal/store"
)

// Result reports what a search run produced.
type Result struct {
	// InvocationID uniquely labels this run in logs and diagnostics.
	InvocationID string

	// TotalMatches is the match count before any cap.
	TotalMatches int64

	// RowCount is the number of rows written to the artifact.
	RowCount int64

	// Artifact is the path written, empty when there were no matches.
	Artifact string

	// Format is the format actually written, which differs from the
	// requested one after a downgrade.
	Format request.OutputFormat

	// Capped is set when MaxResults truncated the result set.
	Capped bool

	// Downgraded is set when a spreadsheet request fell back to
	// delimited text because the count exceeded the sheet row ceiling.
	Downgraded bool

	// SQL is the rendered plan, kept for verbose logging.
	SQL string
}

// Executor coordinates one search run end to end.
type Executor struct {
	store *store.Store
	log   *slog.Logger

	// Now supplies the clock for age arithmetic; tests pin it.
	Now func() time.Time
}

func New(st *store.Store, log *slog.Logger) *Executor {
	return &Executor{store: st, log: log, Now: time.Now}
}

// Execute compiles req into a plan, counts matches, and writes the
// artifact at req.OutputPath. A zero-match run returns a Result with no
// artifact and no error.
func (e *Executor) Execute(ctx context.Context, req request.SearchRequest, loc geo.Location) (*Result, error) {
	res := &Result{
		InvocationID: uuid.NewString(),
		Format:       req.Format,
	}
	log := e.log.With("invocation", res.InvocationID)

	if err := e.store.CheckReference(ctx); err != nil {
		return nil, stageErr(StagePrecondition, err)
	}

	plan := planir.Build(req, loc, e.Now().UTC().Year())
	query, err := plansql.Render(plan)
	if err != nil {
		return nil, stageErr(StageCompile, err)
	}
	res.SQL = query

	countQuery, err := plansql.CountSQL(plan)
	if err != nil {
		return nil, stageErr(StageCompile, err)
	}
	if err := e.store.QueryRowContext(ctx, countQuery).Scan(&res.TotalMatches); err != nil {
		return nil, stageErr(StageCount, err)
	}
	log.Info("counted matches", "postcode", loc.Postcode,
		"radius_miles", req.RadiusMiles, "matches", res.TotalMatches)

	if res.TotalMatches == 0 {
		return res, nil
	}

	res.RowCount = res.TotalMatches
	if req.MaxResults > 0 && res.TotalMatches > req.MaxResults {
		res.RowCount = req.MaxResults
		res.Capped = true
		log.Warn("result set capped", "matches", res.TotalMatches, "cap", req.MaxResults)
	}

	res.Artifact = req.OutputPath

	// Header plus data rows must fit inside the sheet.
	if res.Format == request.FormatXLSX && res.RowCount+1 > export.SheetRowCeiling {
		res.Format = request.FormatCSV
		res.Downgraded = true
		res.Artifact = strings.TrimSuffix(res.Artifact, ".xlsx") + ".csv"
		log.Warn("spreadsheet row ceiling exceeded, writing delimited text instead",
			"rows", res.RowCount, "ceiling", export.SheetRowCeiling)
	}
	if err := e.export(ctx, query, res); err != nil {
		return nil, stageErr(StageExport, err)
	}
	log.Info("wrote artifact", "path", res.Artifact, "format", string(res.Format), "rows", res.RowCount)
	return res, nil
}

func (e *Executor) export(ctx context.Context, query string, res *Result) error {
	switch res.Format {
	case request.FormatCSV:
		w, err := export.NewCSVWriter(res.Artifact, plansql.Columns)
		if err != nil {
			return err
		}
		if err := e.streamAll(ctx, query, res, w); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	case request.FormatXLSX:
		w, err := export.NewXLSXWriter(res.Artifact, plansql.Columns)
		if err != nil {
			return err
		}
		if err := e.streamPaged(ctx, query, res, w); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	default:
		return fmt.Errorf("unsupported output format %q", res.Format)
	}
}

// streamAll writes the whole result set from a single query, capped
// with a LIMIT when MaxResults bit. The plan orders by distance, so the
// cap keeps the nearest rows.
func (e *Executor) streamAll(ctx context.Context, query string, res *Result, w export.RowWriter) error {
	if res.Capped {
		query = plansql.LimitSQL(query, res.RowCount)
	}
	rows, err := e.store.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows, len(plansql.Columns))
		if err != nil {
			return err
		}
		if err := w.WriteRow(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// streamPaged fetches fixed-size pages so spreadsheet export never
// holds more than one batch of rows.
func (e *Executor) streamPaged(ctx context.Context, query string, res *Result, w export.RowWriter) error {
	for offset := int64(0); offset < res.RowCount; offset += export.SheetBatchSize {
		limit := int64(export.SheetBatchSize)
		if remaining := res.RowCount - offset; remaining < limit {
			limit = remaining
		}
		if err := e.streamPage(ctx, plansql.PageSQL(query, limit, offset), w); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) streamPage(ctx context.Context, query string, w export.RowWriter) error {
	rows, err := e.store.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows, len(plansql.Columns))
		if err != nil {
			return err
		}
		if err := w.WriteRow(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// scanRecord reads the current row as strings, with NULLs as empty
// cells. Numeric columns come through driver conversion.
func scanRecord(rows *sql.Rows, width int) ([]string, error) {
	raw := make([]any, width)
	for i := range raw {
		raw[i] = new(sql.NullString)
	}
	if err := rows.Scan(raw...); err != nil {
		return nil, err
	}

	rec := make([]string, width)
	for i, v := range raw {
		if ns := v.(*sql.NullString); ns.Valid {
			rec[i] = ns.String
		}
	}
	return rec, nil
}
