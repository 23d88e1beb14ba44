package model

import "time"

// Status is the lifecycle state of a document instance.
// Transitions move strictly forward: Draft -> Signed -> Finalized.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSigned    Status = "signed"
	StatusFinalized Status = "finalized"
)

// Document represents one instance created from a template and tracked
// through the signing lifecycle.
// This is a pure domain model with no persistence-specific dependencies or tags.
// It can be used across layers (HTTP, service, registry) without coupling.
type Document struct {
	ID           string            `json:"id"`
	TemplateName string            `json:"template_name"`
	FileName     string            `json:"file_name"`
	Status       Status            `json:"status"`
	Variables    map[string]string `json:"variables"`
	CreatedAt    time.Time         `json:"created_at"`
	SignedAt     *time.Time        `json:"signed_at,omitempty"`
	ArtifactPath string            `json:"artifact_path,omitempty"`
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing registry-owned state.
func (d *Document) Clone() *Document {
	out := *d
	if d.Variables != nil {
		out.Variables = make(map[string]string, len(d.Variables))
		for k, v := range d.Variables {
			out.Variables[k] = v
		}
	}
	if d.SignedAt != nil {
		t := *d.SignedAt
		out.SignedAt = &t
	}
	return &out
}
