package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmere/catchment/internal/request"
)

const sampleConfig = `
defaults:
  radius: 5
  status: Active
  format: csv
profiles:
  tech_firms:
    sic_codes: [62020, 62090]
    radius: 15
  dormant_audit:
    account_categories: ["DORMANT"]
    strict_psc_tenure: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_ParsesDefaultsAndProfiles(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	require.NotNil(t, cfg.Defaults.RadiusMiles)
	assert.Equal(t, 5.0, *cfg.Defaults.RadiusMiles)
	assert.Equal(t, []string{"dormant_audit", "tech_firms"}, cfg.ProfileNames())
}

func TestLoadConfig_RejectsMalformedYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "defaults: [not, a, mapping"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestResolve_ProfileOverridesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	settings, err := cfg.Resolve("tech_firms")
	require.NoError(t, err)

	require.NotNil(t, settings.RadiusMiles)
	assert.Equal(t, 15.0, *settings.RadiusMiles, "profile radius wins over default")
	assert.Equal(t, []int{62020, 62090}, settings.SICCodes)
	require.NotNil(t, settings.Status)
	assert.Equal(t, "Active", *settings.Status, "untouched defaults survive")
}

func TestResolve_UnknownProfileListsAvailable(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	_, err = cfg.Resolve("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown profile "nope"`)
	assert.Contains(t, err.Error(), "dormant_audit, tech_firms")
}

func TestSettingsApply_OnlySetFieldsChangeRequest(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	settings, err := cfg.Resolve("dormant_audit")
	require.NoError(t, err)

	req := request.New("SW1A 1AA", 10)
	settings.Apply(&req)

	assert.Equal(t, "SW1A 1AA", req.Postcode, "unset fields left alone")
	assert.Equal(t, 5.0, req.RadiusMiles, "defaults layer applies")
	assert.Equal(t, []string{"DORMANT"}, req.AccountCategories)
	assert.True(t, req.StrictPSCTenure)
	assert.Nil(t, req.SICCodes)
}
