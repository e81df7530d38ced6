package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/traitkit/internal/ir"
	"github.com/roach88/traitkit/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Session  string
	Limit    int
	Sessions bool // list sessions instead of evaluations
}

// HistoryResult is the payload of the history command.
type HistoryResult struct {
	Evaluations []ir.Evaluation `json:"evaluations,omitempty" yaml:"evaluations,omitempty"`
	Sessions    []ir.Session    `json:"sessions,omitempty" yaml:"sessions,omitempty"`
}

// Text prints evaluations as "[seq] query => outcome", or one session per
// line.
func (r HistoryResult) Text(w io.Writer) {
	if r.Sessions != nil {
		if len(r.Sessions) == 0 {
			fmt.Fprintln(w, "No sessions recorded.")
		}
		for _, s := range r.Sessions {
			fmt.Fprintf(w, "%s  %s  %s\n", s.ID, shortHash(s.CatalogHash), s.Label)
		}
		return
	}
	if len(r.Evaluations) == 0 {
		fmt.Fprintln(w, "No evaluations recorded.")
	}
	for _, ev := range r.Evaluations {
		fmt.Fprintf(w, "[%d] %s => %s\n", ev.Seq, ev.Query, ev.Outcome)
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List evaluations persisted in the memo database",
		Long: `List the evaluations stored in the memo database, in write order.

Examples:
  traitkit history --db ./traitkit.db
  traitkit history --db ./traitkit.db --session 0192... --limit 20
  traitkit history --db ./traitkit.db --sessions --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "only evaluations recorded by this session")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of evaluations (0 = all)")
	cmd.Flags().BoolVar(&opts.Sessions, "sessions", false, "list sessions instead of evaluations")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.DBPath == "" {
		return NewExitError(ExitCommandError, "--db is required")
	}
	// store.Open would create an empty database.
	if _, err := os.Stat(opts.DBPath); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var result HistoryResult
	if opts.Sessions {
		if result.Sessions, err = st.ReadSessions(ctx); err != nil {
			return WrapExitError(ExitCommandError, "failed to read sessions", err)
		}
	} else {
		result.Evaluations, err = st.ReadEvaluations(ctx, store.EvaluationFilter{
			SessionID: opts.Session,
			Limit:     opts.Limit,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read evaluations", err)
		}
	}

	return opts.formatter(cmd).Success(result)
}
