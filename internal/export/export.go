// Package export produces the archival artifact for a finalized document.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"docflow/internal/storage"
)

// ArtifactExt is the file extension of produced artifacts.
const ArtifactExt = ".pdf"

// ErrArtifactNotFound is returned by FetchArtifact when no artifact has been
// produced for the document yet. Fetch-before-produce is a caller bug, so
// this surfaces as an error rather than an absent result.
var ErrArtifactNotFound = errors.New("export: artifact not found")

// Gateway converts a finalized document into a stored artifact.
// Export must be deterministic for a given document id and must fail loudly
// on unreadable input so callers can tell "exported" from "not exported".
type Gateway interface {
	// Export produces the artifact for the document at documentPath and
	// returns the stored artifact path.
	Export(ctx context.Context, documentID, documentPath string) (string, error)

	// FetchArtifact returns the artifact bytes for the document.
	FetchArtifact(ctx context.Context, documentID string) ([]byte, error)
}

// artifactPath returns the stable artifact location for a document id.
func artifactPath(layout storage.Layout, documentID string) string {
	return filepath.Join(layout.ArtifactsPath(), documentID+ArtifactExt)
}

// fetchArtifact reads the artifact bytes from the SignedArtifacts area.
func fetchArtifact(layout storage.Layout, documentID string) ([]byte, error) {
	b, err := os.ReadFile(artifactPath(layout, documentID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: document %s", ErrArtifactNotFound, documentID)
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return b, nil
}
