// Package config loads traitkit settings from defaults, an optional
// traitkit.toml and TRAITKIT_* environment variables, in increasing
// precedence. Command-line flags bound by the CLI override all three.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// FileName is the project configuration file searched for by Find.
const FileName = "traitkit.toml"

// EnvPrefix prefixes every environment override, e.g. TRAITKIT_DB_PATH.
const EnvPrefix = "TRAITKIT"

// ValidFormats are the accepted output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// Config is the resolved configuration.
type Config struct {
	Format      string `mapstructure:"format"`
	PointerSize int64  `mapstructure:"pointer_size"`
	CatalogDir  string `mapstructure:"catalog_dir"`
	DBPath      string `mapstructure:"db_path"`
	Verbose     bool   `mapstructure:"verbose"`
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("format", "text")
	v.SetDefault("pointer_size", 8)
	v.SetDefault("catalog_dir", "")
	v.SetDefault("db_path", "")
	v.SetDefault("verbose", false)
}

// NewViper builds the viper instance the CLI binds its flags to. An empty
// path searches upward from the working directory for FileName; a missing
// file is not an error in that case.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path == "" {
		path = Find()
	}
	if path == "" {
		return v, nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config file %s", path)
	}
	return v, nil
}

// Find walks up from the working directory looking for FileName and
// returns its path, or "" when there is none.
func Find() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		p := filepath.Join(dir, FileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load unmarshals and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that settings are usable.
func (c *Config) Validate() error {
	valid := false
	for _, f := range ValidFormats {
		if c.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		return errors.Newf("format %q must be one of %v", c.Format, ValidFormats)
	}

	// Object pointers are 4 or 8 bytes on every target the engine models.
	if c.PointerSize != 4 && c.PointerSize != 8 {
		return errors.Newf("pointer_size must be 4 or 8, got %d", c.PointerSize)
	}
	return nil
}
