// Package testutil builds throwaway reference databases for tests,
// standing in for the external dataset preparation pipeline.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// refSchema mirrors the tables the preparation pipeline produces. The core
// module itself carries no schema - it only reads what the pipeline wrote.
const refSchema = `
CREATE TABLE companies (
    company_number    TEXT PRIMARY KEY,
    company_name      TEXT NOT NULL,
    postcode          TEXT,
    status            TEXT NOT NULL,
    company_category  TEXT,
    account_category  TEXT,
    incorporation_date TEXT,
    last_accounts_date TEXT
);
CREATE TABLE company_sic (
    company_number  TEXT NOT NULL,
    sic_position    INTEGER NOT NULL,
    sic_code        INTEGER NOT NULL,
    sic_description TEXT
);
CREATE TABLE psc (
    company_number  TEXT NOT NULL,
    psc_name        TEXT,
    approximate_age INTEGER,
    notified_on     TEXT
);
CREATE TABLE officers (
    company_number   TEXT NOT NULL,
    appointment_date INTEGER
);
CREATE TABLE postcodes (
    pcds TEXT PRIMARY KEY,
    lat  REAL,
    long REAL
);
`

// NewRefDB creates a temporary reference database with the pipeline schema
// and returns its path plus a writable handle for seeding. The handle and
// file are cleaned up with the test.
func NewRefDB(t *testing.T) (string, *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "reference.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(refSchema)
	require.NoError(t, err)
	return path, db
}

// Company is a seed row for the companies table. Zero-value Status and
// Category get the common fixture defaults.
type Company struct {
	Number            string
	Name              string
	Postcode          string
	Status            string
	Category          string
	AccountCategory   string
	IncorporationDate string
	LastAccountsDate  string
}

// InsertCompany seeds one company row.
func InsertCompany(t *testing.T, db *sql.DB, c Company) {
	t.Helper()

	if c.Status == "" {
		c.Status = "Active"
	}
	if c.Category == "" {
		c.Category = "Private Limited Company"
	}
	_, err := db.Exec(`INSERT INTO companies
		(company_number, company_name, postcode, status, company_category,
		 account_category, incorporation_date, last_accounts_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Number, c.Name, c.Postcode, c.Status, c.Category,
		nullable(c.AccountCategory), nullable(c.IncorporationDate), nullable(c.LastAccountsDate))
	require.NoError(t, err)
}

// InsertPostcode seeds one postcode with its coordinates.
func InsertPostcode(t *testing.T, db *sql.DB, pcds string, lat, lon float64) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO postcodes (pcds, lat, long) VALUES (?, ?, ?)`, pcds, lat, lon)
	require.NoError(t, err)
}

// InsertSIC seeds one classification assignment.
func InsertSIC(t *testing.T, db *sql.DB, number string, position, code int, description string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO company_sic
		(company_number, sic_position, sic_code, sic_description)
		VALUES (?, ?, ?, ?)`, number, position, code, description)
	require.NoError(t, err)
}

// InsertPSC seeds one person-with-significant-control record.
func InsertPSC(t *testing.T, db *sql.DB, number, name string, age int, notifiedOn string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO psc
		(company_number, psc_name, approximate_age, notified_on)
		VALUES (?, ?, ?, ?)`, number, name, age, notifiedOn)
	require.NoError(t, err)
}

// InsertOfficer seeds one officer appointment. appointmentDate is a
// YYYYMMDD integer, or nil for records with no recorded date.
func InsertOfficer(t *testing.T, db *sql.DB, number string, appointmentDate any) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO officers (company_number, appointment_date) VALUES (?, ?)`,
		number, appointmentDate)
	require.NoError(t, err)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
