package postgres

import (
	"context"
	"database/sql"
	"time"

	"docflow/internal/audit"
)

// AuditPostgres is a PostgreSQL implementation of audit.Sink.
// It uses database/sql with parameterized queries and contains no business logic.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres sink.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ audit.Sink = (*AuditPostgres)(nil)

// Record inserts one audit event row.
func (s *AuditPostgres) Record(ctx context.Context, ev audit.Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	const q = `
		INSERT INTO audit_events (document_id, action, actor_id, actor_name, detail, at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, q,
		ev.DocumentID,
		string(ev.Action),
		ev.ActorID,
		ev.ActorName,
		ev.Detail,
		ev.At,
	)
	return err
}
