package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/traitkit/internal/ir"
)

// EvaluationFilter narrows ReadEvaluations. Zero fields match everything.
type EvaluationFilter struct {
	SessionID   string
	CatalogHash string
	Limit       int
}

// LookupEvaluation returns the stored evaluation of a query against a
// catalog, if any.
func (s *Store) LookupEvaluation(ctx context.Context, id, catalogHash string) (ir.Evaluation, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, id, catalog_hash, session_id, query, outcome
		FROM evaluations
		WHERE id = ? AND catalog_hash = ?
	`, id, catalogHash)

	ev, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Evaluation{}, false, nil
	}
	if err != nil {
		return ir.Evaluation{}, false, fmt.Errorf("lookup evaluation: %w", err)
	}
	return ev, true, nil
}

// ReadEvaluations returns evaluations in write order.
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadEvaluations(ctx context.Context, f EvaluationFilter) ([]ir.Evaluation, error) {
	query := `
		SELECT seq, id, catalog_hash, session_id, query, outcome
		FROM evaluations
		WHERE (? = '' OR session_id = ?) AND (? = '' OR catalog_hash = ?)
		ORDER BY seq ASC, id COLLATE BINARY ASC`
	args := []any{f.SessionID, f.SessionID, f.CatalogHash, f.CatalogHash}
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	evals := []ir.Evaluation{}
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return evals, nil
}

// ReadSessions returns all sessions in the order they were opened.
func (s *Store) ReadSessions(ctx context.Context) ([]ir.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, catalog_hash, label
		FROM sessions
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []ir.Session{}
	for rows.Next() {
		var sess ir.Session
		if err := rows.Scan(&sess.ID, &sess.CatalogHash, &sess.Label); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// CountEvaluations returns the number of stored evaluations.
func (s *Store) CountEvaluations(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count evaluations: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scanner) (ir.Evaluation, error) {
	var (
		ev      ir.Evaluation
		outcome string
	)
	if err := row.Scan(&ev.Seq, &ev.ID, &ev.CatalogHash, &ev.SessionID, &ev.Query, &outcome); err != nil {
		return ir.Evaluation{}, err
	}
	o, err := unmarshalOutcome(outcome)
	if err != nil {
		return ir.Evaluation{}, err
	}
	ev.Outcome = o
	return ev, nil
}
