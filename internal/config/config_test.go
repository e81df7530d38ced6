package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, &Config{Format: "text", PointerSize: 8}, cfg)
}

func TestNewViper_File(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
format = "json"
pointer_size = 4
catalog_dir = "catalog"
db_path = "memo.db"
`)

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Format:      "json",
		PointerSize: 4,
		CatalogDir:  "catalog",
		DBPath:      "memo.db",
	}, cfg)
}

func TestNewViper_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "format = \"json\"\n")
	t.Setenv("TRAITKIT_FORMAT", "yaml")
	t.Setenv("TRAITKIT_DB_PATH", "/tmp/env.db")

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
}

func TestNewViper_MissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	got := Find()
	// TempDir may sit behind a symlink (macOS /var -> /private/var).
	wantReal, err := filepath.EvalSymlinks(want)
	require.NoError(t, err)
	gotReal, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, wantReal, gotReal)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "valid", config: Config{Format: "yaml", PointerSize: 4}},
		{name: "bad format", config: Config{Format: "xml", PointerSize: 8}, wantErr: "format"},
		{name: "zero pointer size", config: Config{Format: "text"}, wantErr: "pointer_size"},
		{name: "odd pointer size", config: Config{Format: "text", PointerSize: 6}, wantErr: "pointer_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
