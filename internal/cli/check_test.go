package cli

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_ReportsReadyWithCounts(t *testing.T) {
	out, err := execute(t, "check", "--db", seedDB(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Reference database ready")
	assert.Contains(t, out, "companies")
	assert.Contains(t, out, "postcodes")
	assert.Contains(t, out, "1 rows")
}

func TestCheck_MissingTablesIsCommandError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE companies (company_number TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = execute(t, "check", "--db", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "reference data not ready")
}

func TestCheck_MissingDatabaseIsCommandError(t *testing.T) {
	_, err := execute(t, "check", "--db", filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCategories_ListsAllFifteen(t *testing.T) {
	out, err := execute(t, "categories")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 15)
	assert.Contains(t, out, "DORMANT")
	assert.Contains(t, out, "excluded unless requested")
}

func TestProfiles_ListsNamesWithSettings(t *testing.T) {
	config := writeConfig(t, sampleConfig)

	out, err := execute(t, "profiles", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "tech_firms")
	assert.Contains(t, out, "sic=62020|62090")
	assert.Contains(t, out, "dormant_audit")
	assert.Contains(t, out, "strict_psc_tenure=true")
}

func TestProfiles_MissingConfigIsCommandError(t *testing.T) {
	_, err := execute(t, "profiles", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
