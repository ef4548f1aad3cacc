// Package store opens the read-only reference database produced by the
// dataset preparation pipeline and verifies its preconditions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/mattn/go-sqlite3"

	"github.com/oakmere/catchment/internal/geo"
)

// driverName registers a sqlite3 driver variant whose connections carry the
// haversine_miles scalar, so compiled plans need no SQL math extension.
const driverName = "sqlite3_catchment"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// pure=true: same inputs, same distance; lets SQLite cache calls.
			return conn.RegisterFunc("haversine_miles", geo.Miles, true)
		},
	})
}

// requiredTables are the reference relations every invocation depends on.
// They are produced entirely by the external preparation pipeline; this
// module never writes them.
var requiredTables = []string{"companies", "company_sic", "psc", "officers", "postcodes"}

// Store is a read-only handle on the reference database.
type Store struct {
	db *sql.DB
}

// Open opens the reference database at path in read-only mode.
//
// A missing database file is a PreconditionError, not an I/O error: the
// caller must run dataset preparation, and retrying without it cannot help.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &PreconditionError{Missing: []string{"reference database " + path}}
	}

	db, err := sql.Open(driverName, "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open reference database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to reference database: %w", err)
	}

	// One connection is enough for the single-threaded one-shot protocol
	// and avoids SQLITE_BUSY surprises while the pipeline refreshes files.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply busy_timeout: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CheckReference verifies every required reference table exists. Returns a
// PreconditionError naming each missing table, or nil when all are present.
// Freshness is the pipeline's concern; only existence is checked here.
func (s *Store) CheckReference(ctx context.Context) error {
	var missing []string
	for _, table := range requiredTables {
		var name string
		err := s.db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`,
			table).Scan(&name)
		if err == sql.ErrNoRows {
			missing = append(missing, table)
			continue
		}
		if err != nil {
			return fmt.Errorf("check reference table %s: %w", table, err)
		}
	}
	if len(missing) > 0 {
		return &PreconditionError{Missing: missing}
	}
	return nil
}

// TableCounts reports the row count of each required reference table,
// for readiness reporting. Call CheckReference first; counting a missing
// table is an error here.
func (s *Store) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(requiredTables))
	for _, table := range requiredTables {
		var n int64
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// Query executes a read query against the reference database.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a single-row read query. Satisfies geo.Querier.
func (s *Store) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, query, args...)
}
