package geo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NotFoundError reports a postcode absent from the reference data.
// User-correctable: the search cannot match anything, so it is raised
// before any plan is built.
type NotFoundError struct {
	Postcode string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("postcode %q not found in the postcode reference data", e.Postcode)
}

// Location is a resolved search centre: the canonical formatted postcode
// from the reference data plus its coordinates.
type Location struct {
	Postcode string
	Lat      float64
	Lon      float64
}

// Querier is the read surface the resolver needs from the store.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Resolver maps free-text postcodes to canonical locations by exact lookup
// against the postcodes reference table.
type Resolver struct {
	db Querier
}

// NewResolver returns a Resolver reading from db.
func NewResolver(db Querier) *Resolver {
	return &Resolver{db: db}
}

// Normalize canonicalizes free-text postcode input for comparison: NFC
// normalization, upper-casing, and removal of all whitespace. The same
// REPLACE(UPPER(...)) shape is applied to the stored side in SQL.
func Normalize(postcode string) string {
	s := norm.NFC.String(postcode)
	s = strings.ToUpper(s)
	return strings.Join(strings.Fields(s), "")
}

const (
	probeSQL = `SELECT 1 FROM postcodes WHERE REPLACE(UPPER(pcds), ' ', '') = ? LIMIT 1`
	fetchSQL = `SELECT pcds, lat, long FROM postcodes WHERE REPLACE(UPPER(pcds), ' ', '') = ? LIMIT 1`
)

// Resolve looks up a postcode and returns its canonical form and
// coordinates. The cheap existence probe runs first so a request that
// cannot match fails before any plan is compiled or executed.
func (r *Resolver) Resolve(ctx context.Context, postcode string) (Location, error) {
	normalized := Normalize(postcode)

	var one int
	err := r.db.QueryRowContext(ctx, probeSQL, normalized).Scan(&one)
	if err == sql.ErrNoRows {
		return Location{}, &NotFoundError{Postcode: postcode}
	}
	if err != nil {
		return Location{}, fmt.Errorf("probe postcode: %w", err)
	}

	var loc Location
	err = r.db.QueryRowContext(ctx, fetchSQL, normalized).Scan(&loc.Postcode, &loc.Lat, &loc.Lon)
	if err != nil {
		return Location{}, fmt.Errorf("fetch postcode coordinates: %w", err)
	}
	return loc, nil
}
