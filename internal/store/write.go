package store

import (
	"context"
	"fmt"

	"github.com/roach88/traitkit/internal/ir"
)

// WriteSession records a session. Uses ON CONFLICT(id) DO NOTHING, so
// writing the same session twice is a no-op.
func (s *Store) WriteSession(ctx context.Context, sess ir.Session) error {
	if sess.ID == "" {
		return fmt.Errorf("write session: empty id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, catalog_hash, label)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sess.ID, sess.CatalogHash, sess.Label)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteEvaluation inserts an evaluation and returns its seq and whether a
// new row was inserted.
//
// An evaluation is identified by (query id, catalog hash). The first
// outcome recorded for a pair wins: a conflicting write returns the existing
// seq and inserted=false.
func (s *Store) WriteEvaluation(ctx context.Context, ev ir.Evaluation) (seq int64, inserted bool, err error) {
	if ev.ID == "" {
		return 0, false, fmt.Errorf("write evaluation: empty query id")
	}
	outcome, err := marshalOutcome(ev.Outcome)
	if err != nil {
		return 0, false, fmt.Errorf("write evaluation: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("write evaluation: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO evaluations (id, catalog_hash, session_id, query, outcome)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id, catalog_hash) DO NOTHING
	`, ev.ID, ev.CatalogHash, ev.SessionID, ev.Query, outcome)
	if err != nil {
		return 0, false, fmt.Errorf("write evaluation: insert: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("write evaluation: rows affected: %w", err)
	}
	if n > 0 {
		if seq, err = result.LastInsertId(); err != nil {
			return 0, false, fmt.Errorf("write evaluation: last insert id: %w", err)
		}
		inserted = true
	} else {
		err = tx.QueryRowContext(ctx, `
			SELECT seq FROM evaluations WHERE id = ? AND catalog_hash = ?
		`, ev.ID, ev.CatalogHash).Scan(&seq)
		if err != nil {
			return 0, false, fmt.Errorf("write evaluation: select existing: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("write evaluation: commit: %w", err)
	}
	return seq, inserted, nil
}
