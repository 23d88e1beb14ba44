package export

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"docflow/internal/storage"
)

// LocalGateway writes a placeholder artifact into the SignedArtifacts area.
// It stands in for a real conversion service; the artifact location contract
// is identical to the remote gateway's, so swapping implementations is a
// configuration change.
type LocalGateway struct {
	layout   storage.Layout
	archiver storage.Archiver // optional mirror, may be nil
	logger   *log.Logger
}

// NewLocalGateway constructs a LocalGateway. archiver may be nil to disable
// mirroring; a nil logger falls back to the standard logger.
func NewLocalGateway(layout storage.Layout, archiver storage.Archiver, logger *log.Logger) *LocalGateway {
	if logger == nil {
		logger = log.Default()
	}
	return &LocalGateway{layout: layout, archiver: archiver, logger: logger}
}

var _ Gateway = (*LocalGateway)(nil)

// Export writes the placeholder artifact for the document and returns its
// path. Unreadable input fails loudly so Finalize never records an artifact
// that was not produced.
func (g *LocalGateway) Export(ctx context.Context, documentID, documentPath string) (string, error) {
	if _, err := os.Stat(documentPath); err != nil {
		return "", fmt.Errorf("source document unreadable: %w", err)
	}

	content := fmt.Sprintf("PDF export for document %s - %s\n", documentID, time.Now().UTC().Format(time.RFC3339))
	path := artifactPath(g.layout, documentID)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}

	g.mirror(ctx, documentID, []byte(content))
	return path, nil
}

// FetchArtifact returns the artifact bytes, or ErrArtifactNotFound.
func (g *LocalGateway) FetchArtifact(_ context.Context, documentID string) ([]byte, error) {
	return fetchArtifact(g.layout, documentID)
}

// mirror uploads a copy to the archive bucket. The local file is
// authoritative, so archive failures are logged, not propagated.
func (g *LocalGateway) mirror(ctx context.Context, documentID string, content []byte) {
	if g.archiver == nil {
		return
	}
	key := "artifacts/" + documentID + ArtifactExt
	_, err := g.archiver.Put(ctx, key, bytes.NewReader(content), storage.PutObjectOptions{
		Size:        int64(len(content)),
		ContentType: "application/pdf",
		Metadata:    map[string]string{"document-id": documentID},
	})
	if err != nil {
		g.logger.Printf("export: archive mirror failed for %s: %v", documentID, err)
	}
}
