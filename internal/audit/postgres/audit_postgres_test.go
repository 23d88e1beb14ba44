package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"docflow/internal/audit"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestAuditPostgres_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	sink := NewAuditPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	ev := audit.Event{
		DocumentID: "doc-1",
		Action:     audit.ActionDocumentSigned,
		ActorID:    "u-1",
		ActorName:  "Alice",
		At:         now,
	}

	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs("doc-1", "document_signed", "u-1", "Alice", "", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, sink.Record(ctx, ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditPostgres_RecordStampsTime(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	sink := NewAuditPostgres(db)

	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs("", "internal_error", "", "", "delete failed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = sink.Record(context.Background(), audit.Event{
		Action: audit.ActionInternalError,
		Detail: "delete failed",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditPostgres_RecordError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	sink := NewAuditPostgres(db)

	mock.ExpectExec("INSERT INTO audit_events").
		WillReturnError(errors.New("insert failed"))

	err = sink.Record(context.Background(), audit.Event{Action: audit.ActionDocumentCreated})
	assert.Error(t, err)
}
