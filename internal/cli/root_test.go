package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command against a fresh data directory and
// returns its stdout. Seeding uses the cheapest bcrypt cost.
func executeCommand(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STOREFRONT_BCRYPT_COST", "4")
	t.Setenv("STOREFRONT_SHARE_GRACE", "0s")

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "storefront", cmd.Use)
	assert.Contains(t, cmd.Long, "STOREFRONT_*")
}

func TestCommandPresence(t *testing.T) {
	commands := [][]string{
		{"init"},
		{"login"},
		{"categories"},
		{"products"},
		{"cart", "add"},
		{"cart", "remove"},
		{"cart", "show"},
		{"cart", "watch"},
		{"wishlist", "add"},
		{"wishlist", "remove"},
		{"wishlist", "has"},
		{"test"},
	}

	cmd := NewRootCommand()
	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "command %v should exist", path)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "data-dir", "db-name", "user-id"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := executeCommand(t, t.TempDir(), "--format", "xml", "categories")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestIsValidFormat(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"text", true},
		{"json", true},
		{"yaml", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.valid, isValidFormat(tt.format))
		})
	}
}
