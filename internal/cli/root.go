package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/traitkit/internal/config"
)

// RootOptions holds global flags for all commands. After the root's
// PersistentPreRunE the fields hold the resolved configuration: flags over
// TRAITKIT_* environment over traitkit.toml over defaults.
type RootOptions struct {
	Verbose     bool
	Format      string // "text" | "json" | "yaml"
	Catalog     string // CUE catalog directory; empty means primitives only
	DBPath      string // SQLite memo store; empty disables persistence
	ConfigPath  string
	PointerSize int64

	logger *slog.Logger
}

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"format":       "format",
	"verbose":      "verbose",
	"catalog_dir":  "catalog",
	"db_path":      "db",
	"pointer_size": "pointer-size",
}

// NewRootCommand creates the root command for the traitkit CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "traitkit",
		Short: "traitkit - type descriptor traits",
		Long: `Evaluate type-trait predicates and rewrites over structural type descriptors.

Descriptors use a postfix syntax: int32 const&, char const*, int32[2][3],
int32(float64)*, int32 Shape::*. Nominal facts about classes, enums and
unions come from a CUE catalog (--catalog).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "CUE catalog directory")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to SQLite memo database")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: nearest "+config.FileName+")")
	cmd.PersistentFlags().Int64Var(&opts.PointerSize, "pointer-size", 8, "target pointer size in bytes (4|8)")

	// Add subcommands
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTransformCommand(opts))
	cmd.AddCommand(NewLevelsCommand(opts))
	cmd.AddCommand(NewSizeCommand(opts))
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// resolve layers config file, environment and flags into opts and sets up
// logging.
func (opts *RootOptions) resolve(cmd *cobra.Command) error {
	v, err := config.NewViper(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if err := bindFlags(v, cmd); err != nil {
		return WrapExitError(ExitCommandError, "failed to bind flags", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	opts.Format = cfg.Format
	opts.Verbose = cfg.Verbose
	opts.Catalog = cfg.CatalogDir
	opts.DBPath = cfg.DBPath
	opts.PointerSize = cfg.PointerSize

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(opts.logger)
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, name := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// log returns the configured logger, or a discarding one for commands
// built without the root.
func (opts *RootOptions) log() *slog.Logger {
	if opts.logger != nil {
		return opts.logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// formatter builds the output formatter for a command. Verbose logs go to
// stderr to avoid corrupting JSON and YAML.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
