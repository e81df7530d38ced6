package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/traitkit/internal/ir"
)

// IDGenerator produces session ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session ids, so sessions
// listed by id come out in creation order.
//
// UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
// Panics if the system random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// OpenSession writes a new session for catalogHash and returns it.
func (s *Store) OpenSession(ctx context.Context, gen IDGenerator, catalogHash, label string) (ir.Session, error) {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	sess := ir.Session{ID: gen.Generate(), CatalogHash: catalogHash, Label: label}
	if err := s.WriteSession(ctx, sess); err != nil {
		return ir.Session{}, fmt.Errorf("open session: %w", err)
	}
	return sess, nil
}
