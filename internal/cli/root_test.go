package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "catchment", cmd.Use)
	assert.Contains(t, cmd.Long, "radius of a postcode")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"search", "categories", "profiles", "check"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "companies.db", dbFlag.DefValue)
}

func TestSearchCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	searchCmd, _, err := cmd.Find([]string{"search"})
	require.NoError(t, err)

	postcodeFlag := searchCmd.Flags().Lookup("postcode")
	require.NotNil(t, postcodeFlag)
	assert.Equal(t, "p", postcodeFlag.Shorthand)

	radiusFlag := searchCmd.Flags().Lookup("radius")
	require.NotNil(t, radiusFlag)
	assert.Equal(t, "10", radiusFlag.DefValue)

	for _, name := range []string{
		"status", "category", "sic",
		"min-company-age", "max-company-age",
		"min-psc-age", "max-psc-age",
		"min-psc-tenure", "max-psc-tenure", "strict-psc-tenure",
		"format", "output", "max-results", "config", "profile",
	} {
		assert.NotNil(t, searchCmd.Flags().Lookup(name), "flag %s should exist", name)
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
