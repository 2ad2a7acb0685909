package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/soyeahso/toolforge/internal/domain"
)

// RevisionStore records every successful tool function mutation so edits
// can be audited and recovered. Recording is best-effort: a history write
// failure is logged and never fails the mutation that triggered it.
type RevisionStore struct {
	db *DB
}

// NewRevisionStore creates a revision store using the given database.
func NewRevisionStore(db *DB) *RevisionStore {
	return &RevisionStore{db: db}
}

// Record inserts a revision row. Code should be the stored source for
// create/update and empty for delete.
func (s *RevisionStore) Record(name, op, code string) {
	rev := domain.ToolRevision{
		ID:        uuid.New().String(),
		Name:      name,
		Op:        op,
		Code:      code,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO tool_revisions (id, name, op, code, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rev.ID, rev.Name, rev.Op, rev.Code, rev.CreatedAt.Format(time.DateTime),
	)
	if err != nil {
		s.db.log.Error().Err(err).Str("name", name).Str("op", op).Msg("failed to record revision")
	}
}

// ListByName returns up to limit revisions for one function, newest first.
func (s *RevisionStore) ListByName(name string, limit int) ([]domain.ToolRevision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.sql.Query(
		`SELECT id, name, op, code, created_at FROM tool_revisions
		 WHERE name = ? ORDER BY created_at DESC, id LIMIT ?`, name, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRevisions(rows)
}

// ListRecent returns up to limit revisions across all functions, newest first.
func (s *RevisionStore) ListRecent(limit int) ([]domain.ToolRevision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.sql.Query(
		`SELECT id, name, op, code, created_at FROM tool_revisions
		 ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRevisions(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRevisions(rows rowScanner) ([]domain.ToolRevision, error) {
	var revs []domain.ToolRevision
	for rows.Next() {
		var rev domain.ToolRevision
		var createdAt string
		if err := rows.Scan(&rev.ID, &rev.Name, &rev.Op, &rev.Code, &createdAt); err != nil {
			return nil, err
		}
		rev.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		revs = append(revs, rev)
	}
	return revs, rows.Err()
}
