package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/traitkit/internal/catalog"
	"github.com/roach88/traitkit/internal/compiler"
	"github.com/roach88/traitkit/internal/ir"
)

// CatalogIssue is one compile or validation problem.
type CatalogIssue struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// TypeSummary describes one declared type.
type TypeSummary struct {
	Name  string   `json:"name" yaml:"name"`
	Kind  string   `json:"kind" yaml:"kind"`
	Bases []string `json:"bases,omitempty" yaml:"bases,omitempty"`
	Size  int64    `json:"size,omitempty" yaml:"size,omitempty"`
}

// CatalogSummary is the payload of the catalog command.
type CatalogSummary struct {
	Dir    string         `json:"dir" yaml:"dir"`
	Files  int            `json:"files" yaml:"files"`
	Hash   string         `json:"hash,omitempty" yaml:"hash,omitempty"`
	Types  []TypeSummary  `json:"types" yaml:"types"`
	Issues []CatalogIssue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Text prints the summary, one line per type.
func (s CatalogSummary) Text(w io.Writer) {
	if len(s.Issues) > 0 {
		fmt.Fprintf(w, "✗ %s: %d issue(s)\n", s.Dir, len(s.Issues))
		for _, is := range s.Issues {
			if is.Line > 0 {
				fmt.Fprintf(w, "  [%s] line %d: %s\n", is.Code, is.Line, is.Message)
			} else {
				fmt.Fprintf(w, "  [%s] %s\n", is.Code, is.Message)
			}
		}
		return
	}

	fmt.Fprintf(w, "✓ %s: %d type(s) in %d file(s)\n", s.Dir, len(s.Types), s.Files)
	fmt.Fprintf(w, "  hash %s\n", s.Hash)
	for _, t := range s.Types {
		line := fmt.Sprintf("  %-6s %s", t.Kind, t.Name)
		if len(t.Bases) > 0 {
			line += " : " + strings.Join(t.Bases, ", ")
		}
		if t.Size > 0 {
			line += fmt.Sprintf(" (%d bytes)", t.Size)
		}
		fmt.Fprintln(w, line)
	}
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [dir]",
		Short: "Compile and validate a CUE type catalog",
		Long: `Compile the CUE type catalog in dir (default: --catalog) and validate it.

All compile and validation errors are reported together. On success the
catalog hash and its declared types are printed.

Examples:
  traitkit catalog ./testdata/catalogs/shapes
  traitkit catalog --catalog ./catalog --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rootOpts.Catalog
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return NewExitError(ExitCommandError, "no catalog directory: pass one or set --catalog")
			}
			return runCatalog(rootOpts, dir, cmd)
		},
	}
}

func runCatalog(opts *RootOptions, dir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	res, loadErrs := catalog.LoadDir(dir, catalog.LoadModeCollectAll)
	if res == nil {
		// Directory or CUE level failure: nothing was compiled.
		code, msg := catalog.ErrCodeGeneric, "catalog load failed"
		var le *catalog.LoadError
		if len(loadErrs) > 0 && errors.As(loadErrs[0], &le) {
			code, msg = le.Code, le.Message
		}
		if err := f.Error(code, msg, dir); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, msg)
	}
	f.VerboseLog("Found %d CUE file(s) in %s", res.FileCount, dir)

	summary := CatalogSummary{Dir: dir, Files: res.FileCount, Types: summarize(res.Types)}
	for _, err := range loadErrs {
		summary.Issues = append(summary.Issues, loadIssue(err))
	}
	for _, ve := range compiler.Validate(res.Types) {
		summary.Issues = append(summary.Issues, CatalogIssue{Code: ve.Code, Message: ve.Field + ": " + ve.Message, Line: ve.Line})
	}

	if len(summary.Issues) > 0 {
		if err := f.Respond(CLIResponse{
			Status: "error",
			Data:   summary,
			Error:  &CLIError{Code: summary.Issues[0].Code, Message: fmt.Sprintf("%d catalog issue(s)", len(summary.Issues))},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("catalog %s has %d issue(s)", dir, len(summary.Issues)))
	}

	reg, err := catalog.New(res.Types)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid catalog", err)
	}
	summary.Hash = reg.Hash()
	return f.Success(summary)
}

func summarize(types []ir.TypeInfo) []TypeSummary {
	out := make([]TypeSummary, 0, len(types))
	for _, t := range types {
		ts := TypeSummary{Name: string(t.Name), Kind: string(t.Kind), Size: t.Size}
		for _, b := range t.Bases {
			ts.Bases = append(ts.Bases, string(b))
		}
		out = append(out, ts)
	}
	return out
}

func loadIssue(err error) CatalogIssue {
	var le *catalog.LoadError
	if errors.As(err, &le) {
		is := CatalogIssue{Code: le.Code, Message: le.Message}
		if le.Pos.IsValid() {
			is.Line = le.Pos.Line()
		}
		return is
	}
	return CatalogIssue{Code: catalog.ErrCodeGeneric, Message: err.Error()}
}
