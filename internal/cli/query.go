package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/traitkit/internal/ir"
	"github.com/roach88/traitkit/internal/script"
)

// QueryResult is the payload of the single-query commands.
type QueryResult struct {
	Query   string     `json:"query" yaml:"query"`
	Outcome ir.Outcome `json:"outcome" yaml:"outcome"`
	Session string     `json:"session,omitempty" yaml:"session,omitempty"`
}

// Text prints the outcome alone, so the commands compose in shell scripts.
func (r QueryResult) Text(w io.Writer) {
	fmt.Fprintln(w, r.Outcome.String())
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test <TAG> <type> [arg-types...]",
		Short: "Evaluate a predicate tag",
		Long: `Evaluate TEST<TAG, type, args...> and print true or false.

Flag tags combine with "|" and test every component.

Examples:
  traitkit test CONST "int32 const&"
  traitkit test CONST|REF "int32 const&"
  traitkit test CALL "Widget&" int32 --catalog ./catalog
  traitkit test SUPER Shape Circle --catalog ./catalog`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := ir.Query{Kind: ir.QueryTest}
			var err error
			if q.Tag, err = ir.ParseTag(args[0]); err != nil {
				return WrapExitError(ExitCommandError, "invalid tag", err)
			}
			if q.Type, err = parseType(args[1]); err != nil {
				return err
			}
			for _, a := range args[2:] {
				d, err := parseType(a)
				if err != nil {
					return err
				}
				q.Args = append(q.Args, d)
			}
			return runQuery(rootOpts, cmd, q)
		},
	}
}

// NewTransformCommand creates the transform command.
func NewTransformCommand(rootOpts *RootOptions) *cobra.Command {
	var extent string

	cmd := &cobra.Command{
		Use:   "transform <TAG> <type>",
		Short: "Apply a rewrite tag",
		Long: `Evaluate TRANSFORM<TAG, type> and print the rewritten descriptor.

REMOVE combined with flag tags strips instead of adds. ARR takes an
optional --extent (an integer, or "unbounded").

Examples:
  traitkit transform CONST|REF int32
  traitkit transform REF|REMOVE "int32 const&"
  traitkit transform SLIM "char const[4]"
  traitkit transform ARR int32 --extent 4`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := ir.Query{Kind: ir.QueryTransform}
			var err error
			if q.Tag, err = ir.ParseTag(args[0]); err != nil {
				return WrapExitError(ExitCommandError, "invalid tag", err)
			}
			if q.Type, err = parseType(args[1]); err != nil {
				return err
			}
			if cmd.Flags().Changed("extent") {
				e, err := script.ParseExtent(extent)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --extent", err)
				}
				q.Extents = []ir.Extent{e}
			}
			return runQuery(rootOpts, cmd, q)
		},
	}

	cmd.Flags().StringVar(&extent, "extent", "", "array extent for ARR")
	return cmd
}

// NewLevelsCommand creates the levels command with its ptr and arr
// subcommands.
func NewLevelsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Add or remove pointer and array levels",
	}

	var remove bool
	ptr := &cobra.Command{
		Use:   "ptr <type> <n>",
		Short: "Add (or with --remove, strip) n pointer levels",
		Example: `  traitkit levels ptr int32 2
  traitkit levels ptr "int32**" 1 --remove`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := ir.Query{Kind: ir.QueryPointers, Remove: remove}
			var err error
			if q.Type, err = parseType(args[0]); err != nil {
				return err
			}
			if q.Depth, err = strconv.Atoi(args[1]); err != nil {
				return WrapExitError(ExitCommandError, "invalid depth", err)
			}
			return runQuery(rootOpts, cmd, q)
		},
	}
	ptr.Flags().BoolVar(&remove, "remove", false, "remove levels instead of adding them")

	arr := &cobra.Command{
		Use:   "arr <type> <extent>...",
		Short: "Wrap a type in array levels, outermost extent first",
		Example: `  traitkit levels arr int32 2 3
  traitkit levels arr char unbounded 4`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := ir.Query{Kind: ir.QueryArrays}
			var err error
			if q.Type, err = parseType(args[0]); err != nil {
				return err
			}
			for _, a := range args[1:] {
				e, err := script.ParseExtent(a)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid extent", err)
				}
				q.Extents = append(q.Extents, e)
			}
			return runQuery(rootOpts, cmd, q)
		},
	}

	cmd.AddCommand(ptr, arr)
	return cmd
}

// NewSizeCommand creates the size command.
func NewSizeCommand(rootOpts *RootOptions) *cobra.Command {
	var cond string

	cmd := &cobra.Command{
		Use:   "size <type>",
		Short: "Compute the storage size of a type",
		Long: `Evaluate MEMORY_SIZE<type> in bytes.

With --if the size is only defined when the condition holds; --if true also
forces a size for incomplete arrays (zero bytes).

Examples:
  traitkit size "int32[4]"
  traitkit size Circle --catalog ./catalog
  traitkit size "int32[0]" --if true`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := ir.Query{Kind: ir.QuerySize}
			var err error
			if q.Type, err = parseType(args[0]); err != nil {
				return err
			}
			if cmd.Flags().Changed("if") {
				b, err := strconv.ParseBool(cond)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --if", err)
				}
				q.Condition = &b
			}
			return runQuery(rootOpts, cmd, q)
		},
	}

	cmd.Flags().StringVar(&cond, "if", "", "condition (true|false)")
	return cmd
}

func parseType(text string) (ir.Descriptor, error) {
	d, err := ir.Parse(text)
	if err != nil {
		return ir.Descriptor{}, WrapExitError(ExitCommandError, "invalid type", err)
	}
	return d, nil
}

// runQuery evaluates q and prints its outcome. A rejected precondition
// exits with ExitFailure.
func runQuery(opts *RootOptions, cmd *cobra.Command, q ir.Query) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := opts.openSession(ctx, q.String())
	if err != nil {
		return err
	}
	defer s.Close()

	o, err := s.engine.EvaluateContext(ctx, q)
	if err != nil {
		return WrapExitError(ExitCommandError, "evaluation failed", err)
	}

	f := opts.formatter(cmd)
	f.VerboseLog("%s => %s", q, o)
	if o.IsError() {
		if err := f.Error(o.Code, o.Message, q.String()); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", q, o))
	}
	return f.Success(QueryResult{Query: q.String(), Outcome: o, Session: s.id})
}
