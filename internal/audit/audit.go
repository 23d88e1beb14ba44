// Package audit receives lifecycle events from the document engine.
//
// The engine reports state transitions through boolean results; the audit
// sink is the side-channel that keeps signer identity and swallowed internal
// failures observable.
package audit

import (
	"context"
	"time"
)

// Action identifies the kind of lifecycle event.
type Action string

const (
	ActionDocumentCreated   Action = "document_created"
	ActionDocumentSigned    Action = "document_signed"
	ActionDocumentFinalized Action = "document_finalized"
	ActionTemplateUploaded  Action = "template_uploaded"
	ActionTemplateDeleted   Action = "template_deleted"
	ActionInternalError     Action = "internal_error"
)

// Event is a single audit record.
type Event struct {
	DocumentID string    `json:"document_id,omitempty"`
	Action     Action    `json:"action"`
	ActorID    string    `json:"actor_id,omitempty"`
	ActorName  string    `json:"actor_name,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}

// Sink records audit events. Record failures must not break the calling
// operation; implementations report their own errors and callers ignore the
// return value on non-critical paths.
type Sink interface {
	Record(ctx context.Context, ev Event) error
}
