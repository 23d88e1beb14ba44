package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Subdirectories of the storage root. Templates holds uploaded sources,
// Documents holds per-instance copies, SignedArtifacts holds finalized
// exports.
const (
	TemplatesDir = "Templates"
	DocumentsDir = "Documents"
	ArtifactsDir = "SignedArtifacts"
)

// Layout describes the filesystem area the service owns. All template,
// document and artifact files live under Root.
type Layout struct {
	Root string
}

// NewLayout validates the root path and returns a Layout.
func NewLayout(root string) (Layout, error) {
	if root == "" {
		return Layout{}, fmt.Errorf("storage root path is required")
	}
	return Layout{Root: root}, nil
}

// Ensure creates the root and its subdirectories if they do not exist.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.TemplatesPath(), l.DocumentsPath(), l.ArtifactsPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir %s: %w", dir, err)
		}
	}
	return nil
}

// TemplatesPath returns the directory holding uploaded templates.
func (l Layout) TemplatesPath() string {
	return filepath.Join(l.Root, TemplatesDir)
}

// DocumentsPath returns the directory holding document instances.
func (l Layout) DocumentsPath() string {
	return filepath.Join(l.Root, DocumentsDir)
}

// ArtifactsPath returns the directory holding finalized artifacts.
func (l Layout) ArtifactsPath() string {
	return filepath.Join(l.Root, ArtifactsDir)
}
