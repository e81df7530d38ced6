package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/traitkit/internal/catalog"
	"github.com/roach88/traitkit/internal/engine"
	"github.com/roach88/traitkit/internal/script"
	"github.com/roach88/traitkit/internal/store"
	"github.com/roach88/traitkit/internal/testutil"
)

// Harness is the scenario execution context. Each run gets its own store,
// session and engine.
type Harness struct {
	engine  *engine.Engine
	session string
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, under a
// fixed session id, so traces are reproducible.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Load and validate the scenario's catalog
// 3. Evaluate steps through the memo-backed engine
// 4. Evaluate assertions against the trace and store
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	reg, err := loadCatalog(scenario.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	gen := testutil.NewFixedSessionGenerator()
	if scenario.SessionID != "" {
		gen = testutil.NewFixedSessionGenerator(scenario.SessionID)
	}
	sess, err := st.OpenSession(ctx, gen, reg.Hash(), scenario.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	// Suppress logs in tests
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := []engine.EngineOption{
		engine.WithOracle(reg),
		engine.WithLogger(logger),
		engine.WithMemo(store.NewMemo(st, reg.Hash(), sess.ID)),
	}
	if scenario.PointerSize != 0 {
		opts = append(opts, engine.WithPointerSize(scenario.PointerSize))
	}

	h := &Harness{
		engine:  engine.New(opts...),
		session: sess.ID,
		logger:  logger,
	}

	result := NewResult()
	result.SessionID = sess.ID
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	if result.Stored, err = st.CountEvaluations(ctx); err != nil {
		return nil, fmt.Errorf("failed to count evaluations: %w", err)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func loadCatalog(dir string) (*catalog.Registry, error) {
	if dir == "" {
		return catalog.New(nil)
	}
	return catalog.Load(dir)
}

// executeSteps evaluates each step and records it in the trace. A failed
// expectation marks the result failed but does not stop the run.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		st, err := step.Statement()
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		res, err := script.Run(ctx, h.engine, &script.Script{Statements: []script.Statement{st}})
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		r := res[0]

		expect := ""
		if r.Expect != nil {
			expect = r.Expect.String()
		}
		result.AddTrace(r.Query.String(), r.Outcome.String(), expect, !r.Failed())
		if r.Failed() {
			result.AddError(fmt.Sprintf("step %d: %s: expected %s, got %s", i, r.Query, expect, r.Outcome))
		}

		h.logger.Info("step evaluated",
			"step", i,
			"session", h.session,
			"query", r.Query.String(),
			"outcome", r.Outcome.String(),
		)
	}
	return nil
}
