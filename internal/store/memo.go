package store

import (
	"context"

	"github.com/roach88/traitkit/internal/engine"
	"github.com/roach88/traitkit/internal/ir"
)

// Memo adapts a Store to engine.Memo for one catalog and session. Lookups
// see evaluations from every session that used the same catalog.
type Memo struct {
	store       *Store
	catalogHash string
	sessionID   string
}

var _ engine.Memo = (*Memo)(nil)

// NewMemo binds s to a catalog hash and the session new evaluations are
// recorded under.
func NewMemo(s *Store, catalogHash, sessionID string) *Memo {
	return &Memo{store: s, catalogHash: catalogHash, sessionID: sessionID}
}

// Lookup returns the stored outcome for a query id.
func (m *Memo) Lookup(ctx context.Context, id string) (ir.Outcome, bool, error) {
	ev, ok, err := m.store.LookupEvaluation(ctx, id, m.catalogHash)
	if err != nil || !ok {
		return ir.Outcome{}, false, err
	}
	return ev.Outcome, true, nil
}

// Save records an outcome. An existing record for the same query and
// catalog is kept.
func (m *Memo) Save(ctx context.Context, id string, q ir.Query, o ir.Outcome) error {
	_, _, err := m.store.WriteEvaluation(ctx, ir.Evaluation{
		ID:          id,
		CatalogHash: m.catalogHash,
		SessionID:   m.sessionID,
		Query:       q.String(),
		Outcome:     o,
	})
	return err
}
