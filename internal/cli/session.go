package cli

import (
	"context"

	"github.com/roach88/traitkit/internal/catalog"
	"github.com/roach88/traitkit/internal/engine"
	"github.com/roach88/traitkit/internal/store"
)

// session is the engine a command evaluates against. With --db set, every
// evaluation goes through a durable memo recorded under a fresh store
// session.
type session struct {
	engine  *engine.Engine
	catalog *catalog.Registry
	store   *store.Store
	id      string
}

// openSession loads the catalog and wires the engine. label names the store
// session, usually the command line being run.
func (opts *RootOptions) openSession(ctx context.Context, label string) (*session, error) {
	reg, err := loadRegistry(opts.Catalog)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}

	engOpts := []engine.EngineOption{
		engine.WithOracle(reg),
		engine.WithLogger(opts.log()),
	}
	if opts.PointerSize != 0 {
		engOpts = append(engOpts, engine.WithPointerSize(opts.PointerSize))
	}

	s := &session{catalog: reg}
	if opts.DBPath != "" {
		st, err := store.Open(opts.DBPath)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		sess, err := st.OpenSession(ctx, store.UUIDv7Generator{}, reg.Hash(), label)
		if err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "failed to open session", err)
		}
		s.store, s.id = st, sess.ID
		engOpts = append(engOpts, engine.WithMemo(store.NewMemo(st, reg.Hash(), sess.ID)))
		opts.log().Debug("session opened", "session", sess.ID, "db", opts.DBPath, "catalog", reg.Hash())
	}

	s.engine = engine.New(engOpts...)
	return s, nil
}

// Close releases the memo store, if any.
func (s *session) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

func loadRegistry(dir string) (*catalog.Registry, error) {
	if dir == "" {
		return catalog.New(nil)
	}
	return catalog.Load(dir)
}
