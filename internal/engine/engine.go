package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/traitkit/internal/ir"
)

// Engine evaluates predicates, transforms and sizes over type descriptors.
//
// Every operation is a pure function of its inputs and the Oracle's facts,
// so an Engine may be shared between goroutines. Results are memoized in an
// in-process Cache and, when a Memo is configured, in a durable store.
type Engine struct {
	oracle      Oracle
	logger      *slog.Logger
	cache       *Cache
	memo        Memo
	pointerSize int64
}

// Memo persists evaluated queries across processes. The id passed in is
// ir.EvaluationID, which already covers the engine's pointer size;
// implementations add whatever else scopes an answer, such as the catalog in
// use.
type Memo interface {
	Lookup(ctx context.Context, id string) (ir.Outcome, bool, error)
	Save(ctx context.Context, id string, q ir.Query, o ir.Outcome) error
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithOracle sets the source of nominal type facts.
// Default: NullOracle, which knows only primitives.
func WithOracle(o Oracle) EngineOption {
	return func(e *Engine) {
		e.oracle = o
	}
}

// WithLogger sets the logger used for rule dispatch tracing.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithPointerSize sets the size in bytes of object pointers.
// Default: 8 (DefaultPointerSize).
func WithPointerSize(n int64) EngineOption {
	return func(e *Engine) {
		e.pointerSize = n
	}
}

// WithCache shares a cache between engines over the same oracle.
func WithCache(c *Cache) EngineOption {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithoutCache disables in-process memoization.
func WithoutCache() EngineOption {
	return func(e *Engine) {
		e.cache = nil
	}
}

// WithMemo enables the durable memo for EvaluateContext.
func WithMemo(m Memo) EngineOption {
	return func(e *Engine) {
		e.memo = m
	}
}

// New creates an Engine. Without options it answers for primitive types
// only, on a 64-bit target, with a private cache.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		oracle:      NullOracle{},
		logger:      slog.Default(),
		cache:       NewCache(),
		pointerSize: DefaultPointerSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.oracle == nil {
		e.oracle = NullOracle{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// CacheStats reports in-process cache counters. A disabled cache reports
// zeros.
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}

// Evaluate runs q and returns its outcome. Precondition failures are
// outcomes, not errors.
func (e *Engine) Evaluate(q ir.Query) ir.Outcome {
	o, err := e.evaluate(q)
	if err != nil {
		return errorOutcome(err)
	}
	return o
}

// EvaluateContext is Evaluate backed by the durable memo. A stored outcome
// is returned without evaluating; a fresh one is saved. Only memo failures
// are returned as errors.
func (e *Engine) EvaluateContext(ctx context.Context, q ir.Query) (ir.Outcome, error) {
	if e.memo == nil {
		return e.Evaluate(q), nil
	}
	id, err := ir.EvaluationID(q, e.pointerSize)
	if err != nil {
		return ir.Outcome{}, fmt.Errorf("evaluation id: %w", err)
	}
	if o, ok, err := e.memo.Lookup(ctx, id); err != nil {
		return ir.Outcome{}, fmt.Errorf("memo lookup %s: %w", id, err)
	} else if ok {
		e.logger.Debug("memo hit", "id", id, "query", q.String())
		return o, nil
	}

	o := e.Evaluate(q)
	if err := e.memo.Save(ctx, id, q, o); err != nil {
		return ir.Outcome{}, fmt.Errorf("memo save %s: %w", id, err)
	}
	e.logger.Debug("memo saved", "id", id, "query", q.String(), "outcome", o.String())
	return o, nil
}

func (e *Engine) evaluate(q ir.Query) (ir.Outcome, error) {
	if q.Type.IsZero() {
		return ir.Outcome{}, newPreconditionError(ErrCodeBadQuery, q.Type, "%s query has no type", q.Kind)
	}
	switch q.Kind {
	case ir.QueryTest:
		return ir.BoolOutcome(e.Test(q.Tag, q.Type, q.Args...)), nil

	case ir.QueryTransform:
		var (
			d   ir.Descriptor
			err error
		)
		switch len(q.Extents) {
		case 0:
			d, err = e.Transform(q.Tag, q.Type)
		case 1:
			d, err = e.TransformExtent(q.Tag, q.Type, q.Extents[0])
		default:
			return ir.Outcome{}, newPreconditionError(ErrCodeBadQuery, q.Type,
				"transform takes at most one extent, got %d", len(q.Extents))
		}
		if err != nil {
			return ir.Outcome{}, err
		}
		return ir.TypeOutcome(d), nil

	case ir.QueryPointers:
		d, err := e.PointerLevels(q.Type, q.Depth, q.Remove)
		if err != nil {
			return ir.Outcome{}, err
		}
		return ir.TypeOutcome(d), nil

	case ir.QueryArrays:
		d, err := e.ArrayLevels(q.Type, q.Extents...)
		if err != nil {
			return ir.Outcome{}, err
		}
		return ir.TypeOutcome(d), nil

	case ir.QuerySize:
		var s Size
		if q.Condition != nil {
			s = e.MemorySizeIf(q.Type, *q.Condition)
		} else {
			s = e.MemorySize(q.Type)
		}
		n, err := s.Bytes()
		if err != nil {
			return ir.Outcome{}, err
		}
		return ir.SizeOutcome(n), nil

	case ir.QueryCatch:
		if len(q.Args) != 1 {
			return ir.Outcome{}, newPreconditionError(ErrCodeBadQuery, q.Type,
				"catch takes one thrown type, got %d", len(q.Args))
		}
		return ir.BoolOutcome(e.CatchMatches(q.Type, q.Args[0])), nil

	case ir.QueryOnlyIf:
		if q.Condition == nil {
			return ir.Outcome{}, newPreconditionError(ErrCodeBadQuery, q.Type, "onlyif needs a condition")
		}
		d, err := OnlyIf(q.Type, *q.Condition)
		if err != nil {
			return ir.Outcome{}, err
		}
		return ir.TypeOutcome(d), nil

	case ir.QueryIfOrElse:
		if q.Condition == nil || len(q.Args) != 1 {
			return ir.Outcome{}, newPreconditionError(ErrCodeBadQuery, q.Type, "ifelse needs an alternative and a condition")
		}
		return ir.TypeOutcome(IfOrElse(*q.Condition, q.Type, q.Args[0])), nil
	}
	return ir.Outcome{}, newPreconditionError(ErrCodeBadQuery, q.Type, "unknown query kind %q", q.Kind)
}

func errorOutcome(err error) ir.Outcome {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return ir.ErrorOutcome(string(pe.Code), pe.Message)
	}
	return ir.ErrorOutcome(string(ErrCodeInternal), err.Error())
}
