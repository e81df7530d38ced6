package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapesCatalog = "../../testdata/catalogs/shapes"

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "traitkit", cmd.Use)
	assert.Contains(t, cmd.Long, "CUE catalog")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"test"}, {"transform"}, {"levels"}, {"levels", "ptr"}, {"levels", "arr"},
		{"size"}, {"eval"}, {"check"}, {"catalog"}, {"history"},
	}

	for _, path := range commands {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
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

	pointerFlag := cmd.PersistentFlags().Lookup("pointer-size")
	require.NotNil(t, pointerFlag)
	assert.Equal(t, "8", pointerFlag.DefValue)

	for _, name := range []string{"catalog", "db", "config"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	tests := []struct {
		path []string
		flag string
	}{
		{[]string{"transform"}, "extent"},
		{[]string{"levels", "ptr"}, "remove"},
		{[]string{"size"}, "if"},
		{[]string{"check"}, "update"},
		{[]string{"check"}, "filter"},
		{[]string{"history"}, "session"},
		{[]string{"history"}, "limit"},
		{[]string{"history"}, "sessions"},
	}
	for _, tt := range tests {
		sub, _, err := cmd.Find(tt.path)
		require.NoError(t, err)
		assert.NotNil(t, sub.Flags().Lookup(tt.flag), "%v --%s", tt.path, tt.flag)
	}
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, err := execute(t, "", "size", "int64", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRoot_InvalidPointerSize(t *testing.T) {
	_, err := execute(t, "", "size", "int64", "--pointer-size", "2")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRoot_EnvOverridesDefault(t *testing.T) {
	t.Setenv("TRAITKIT_POINTER_SIZE", "4")

	out, err := execute(t, "", "size", "int32*")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)
}

func TestRoot_FlagOverridesEnv(t *testing.T) {
	t.Setenv("TRAITKIT_POINTER_SIZE", "4")

	out, err := execute(t, "", "size", "int32*", "--pointer-size", "8")
	require.NoError(t, err)
	assert.Equal(t, "8\n", out)
}

func TestRoot_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traitkit.toml")
	require.NoError(t, os.WriteFile(path, []byte("format = \"json\"\ncatalog_dir = \""+shapesCatalog+"\"\n"), 0o644))

	out, err := execute(t, "", "size", "Circle", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "ok"`)
	assert.Contains(t, out, `"value": "24"`)
}

func TestRoot_MissingConfigFile(t *testing.T) {
	_, err := execute(t, "", "size", "int64", "--config", filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}
