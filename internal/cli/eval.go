package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/traitkit/internal/script"
)

// EvalLine is one evaluated script statement.
type EvalLine struct {
	Line    int    `json:"line" yaml:"line"`
	Query   string `json:"query" yaml:"query"`
	Outcome string `json:"outcome" yaml:"outcome"`
	Expect  string `json:"expect,omitempty" yaml:"expect,omitempty"`
	Pass    bool   `json:"pass" yaml:"pass"`
}

// EvalResult is the payload of the eval command.
type EvalResult struct {
	Statements []EvalLine `json:"statements" yaml:"statements"`
	Failed     int        `json:"failed" yaml:"failed"`
	Session    string     `json:"session,omitempty" yaml:"session,omitempty"`
}

// Text prints one line per statement and a summary.
func (r EvalResult) Text(w io.Writer) {
	for _, l := range r.Statements {
		mark := "✓"
		if !l.Pass {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %d: %s => %s", mark, l.Line, l.Query, l.Outcome)
		if !l.Pass {
			fmt.Fprintf(w, " (want %s)", l.Expect)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\n%d statements, %d failed\n", len(r.Statements), r.Failed)
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "eval [script]",
		Short: "Run a query script",
		Long: `Run a query script, one statement per line, reading stdin when no
file is given. A statement may end in "=> expected"; any unmet expectation
makes the command exit 1.

  test SUPER Shape; Circle => true
  transform CONST|REF int32 => int32 const&
  ptr+ int32; 2 => int32**
  arr int32; 2; 3
  size int32[0]; true => 0
  catch Shape const&; Circle => true
  onlyif int32 const&; true => int32 const&
  ifelse int32; float64; false => float64

Examples:
  traitkit eval queries.tks --catalog ./catalog
  echo "size int64" | traitkit eval`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(rootOpts, cmd, args)
		},
	}
}

func runEval(opts *RootOptions, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		src   []byte
		err   error
		label = "eval <stdin>"
	)
	if len(args) == 1 {
		src, err = os.ReadFile(args[0])
		label = "eval " + args[0]
	} else {
		src, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read script", err)
	}

	f := opts.formatter(cmd)
	s, err := script.Parse(ctx, string(src))
	if err != nil {
		var se *script.SyntaxError
		if errors.As(err, &se) {
			_ = f.Error("SYNTAX", se.Error(), map[string]any{"line": se.Line, "text": se.Text})
		}
		return WrapExitError(ExitCommandError, "invalid script", err)
	}
	f.VerboseLog("Parsed %d statement(s)", len(s.Statements))

	sess, err := opts.openSession(ctx, label)
	if err != nil {
		return err
	}
	defer sess.Close()

	results, err := script.Run(ctx, sess.engine, s)
	if err != nil {
		return WrapExitError(ExitCommandError, "evaluation failed", err)
	}

	out := EvalResult{Statements: make([]EvalLine, 0, len(results)), Session: sess.id}
	for _, r := range results {
		l := EvalLine{Line: r.Line, Query: r.Query.String(), Outcome: r.Outcome.String(), Pass: !r.Failed()}
		if r.Expect != nil {
			l.Expect = r.Expect.String()
		}
		out.Statements = append(out.Statements, l)
	}
	out.Failed = script.Failures(results)

	if out.Failed > 0 {
		if err := f.Respond(CLIResponse{
			Status: "error",
			Data:   out,
			Error:  &CLIError{Code: "EXPECTATION_FAILED", Message: fmt.Sprintf("%d expectation(s) failed", out.Failed)},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d expectation(s) failed", out.Failed))
	}
	return f.Success(out)
}
