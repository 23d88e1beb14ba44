package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docflow/internal/config"
	"docflow/internal/storage"
)

// ConvertGateway delegates conversion to an external document conversion
// service over HTTP. The request body is the source document; the response
// body is the produced artifact, which is stored in the SignedArtifacts
// area under the same naming scheme as LocalGateway.
type ConvertGateway struct {
	baseURL  string
	client   *http.Client
	layout   storage.Layout
	archiver storage.Archiver // optional mirror, may be nil
	logger   *log.Logger
}

// NewConvertGateway constructs a gateway for the converter at cfg.URL.
// The HTTP client is traced via otelhttp.
func NewConvertGateway(cfg config.ConverterConfig, layout storage.Layout, archiver storage.Archiver, logger *log.Logger) (*ConvertGateway, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("converter URL is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ConvertGateway{
		baseURL: cfg.URL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		layout:   layout,
		archiver: archiver,
		logger:   logger,
	}, nil
}

var _ Gateway = (*ConvertGateway)(nil)

// Export streams the source document to the converter and stores the
// returned artifact. Unreadable input and converter failures surface as
// errors; nothing is written in that case.
func (g *ConvertGateway) Export(ctx context.Context, documentID, documentPath string) (string, error) {
	src, err := os.Open(documentPath)
	if err != nil {
		return "", fmt.Errorf("source document unreadable: %w", err)
	}
	defer src.Close()

	endpoint := fmt.Sprintf("%s/convert?key=%s&outputtype=pdf", g.baseURL, url.QueryEscape(documentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, src)
	if err != nil {
		return "", fmt.Errorf("build convert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call converter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("converter returned status %d", resp.StatusCode)
	}

	artifact, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read converter response: %w", err)
	}

	path := artifactPath(g.layout, documentID)
	if err := os.WriteFile(path, artifact, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}

	if g.archiver != nil {
		key := "artifacts/" + documentID + ArtifactExt
		_, err := g.archiver.Put(ctx, key, bytes.NewReader(artifact), storage.PutObjectOptions{
			Size:        int64(len(artifact)),
			ContentType: "application/pdf",
			Metadata:    map[string]string{"document-id": documentID},
		})
		if err != nil {
			g.logger.Printf("export: archive mirror failed for %s: %v", documentID, err)
		}
	}
	return path, nil
}

// FetchArtifact returns the artifact bytes, or ErrArtifactNotFound.
func (g *ConvertGateway) FetchArtifact(_ context.Context, documentID string) ([]byte, error) {
	return fetchArtifact(g.layout, documentID)
}
