package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"docflow/internal/audit"
	"docflow/internal/export"
	"docflow/internal/model"
	"docflow/internal/repository"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrNotFound         = errors.New("document not found")

	// errPrecondition aborts a registry update when the document is not in
	// the state the transition requires.
	errPrecondition = errors.New("document not in required status")
)

// Substituter performs in-place variable substitution on a document file.
type Substituter interface {
	Substitute(path string, vars map[string]string) error
}

// DocumentService owns the document lifecycle: creation from a template,
// signing, and finalization into an archival artifact.
//
// Status moves strictly forward, Draft -> Signed -> Finalized. Transition
// attempts against the wrong state report false, never an error; callers
// inspect the boolean. The registry serializes per-record mutations, and
// Finalize additionally holds a per-id lock across its whole
// check-export-write sequence.
type DocumentService interface {
	// Create copies the named template into the Documents area, substitutes
	// variables into the copy, and registers a new Draft document.
	Create(ctx context.Context, templateName string, variables map[string]string) (*model.Document, error)

	// Get returns a document by ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Sign transitions a Draft document to Signed and stamps SignedAt.
	// The signer identity is recorded on the audit sink.
	Sign(ctx context.Context, id, signerID, signerName string) bool

	// Finalize exports a Signed document through the export gateway,
	// records the artifact path, and transitions to Finalized. Exactly one
	// of any set of concurrent finalizers performs the export.
	Finalize(ctx context.Context, id string) bool

	// ResolvePath returns the live Documents-area path for the id, or
	// empty when the document or its file does not exist.
	ResolvePath(ctx context.Context, id string) string

	// List returns a snapshot copy of all registered documents.
	List(ctx context.Context) ([]model.Document, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	documentsDir string
	templates    TemplateService
	registry     repository.DocumentRegistry
	subst        Substituter
	exporter     export.Gateway
	sink         audit.Sink
	locks        *keyedMutex
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(documentsDir string, templates TemplateService, registry repository.DocumentRegistry, subst Substituter, exporter export.Gateway, sink audit.Sink) DocumentService {
	return &documentService{
		documentsDir: documentsDir,
		templates:    templates,
		registry:     registry,
		subst:        subst,
		exporter:     exporter,
		sink:         sink,
		locks:        newKeyedMutex(),
	}
}

func (s *documentService) Create(ctx context.Context, templateName string, variables map[string]string) (*model.Document, error) {
	templatePath := s.templates.ResolvePath(ctx, templateName)
	if templatePath == "" {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateName)
	}

	id := uuid.New().String()
	fileName := id + TemplateExt
	documentPath := filepath.Join(s.documentsDir, fileName)

	// Copy first, then mutate the copy: the template itself is never touched.
	if err := copyFile(templatePath, documentPath); err != nil {
		return nil, fmt.Errorf("copy template: %w", err)
	}
	if err := s.subst.Substitute(documentPath, variables); err != nil {
		return nil, fmt.Errorf("substitute variables: %w", err)
	}

	doc := &model.Document{
		ID:           id,
		TemplateName: templateName,
		FileName:     fileName,
		Status:       model.StatusDraft,
		Variables:    variables,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.registry.Insert(ctx, doc); err != nil {
		return nil, fmt.Errorf("register document: %w", err)
	}

	_ = s.sink.Record(ctx, audit.Event{
		DocumentID: id,
		Action:     audit.ActionDocumentCreated,
		Detail:     templateName,
	})
	return doc, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.registry.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Sign(ctx context.Context, id, signerID, signerName string) bool {
	err := s.registry.Update(ctx, id, func(d *model.Document) error {
		if d.Status != model.StatusDraft {
			return errPrecondition
		}
		now := time.Now().UTC()
		d.Status = model.StatusSigned
		d.SignedAt = &now
		return nil
	})
	if err != nil {
		return false
	}

	_ = s.sink.Record(ctx, audit.Event{
		DocumentID: id,
		Action:     audit.ActionDocumentSigned,
		ActorID:    signerID,
		ActorName:  signerName,
	})
	return true
}

func (s *documentService) Finalize(ctx context.Context, id string) bool {
	// The per-id lock covers the whole check-export-write sequence:
	// concurrent finalizers for the same document must not both reach the
	// export gateway.
	unlock := s.locks.lock(id)
	defer unlock()

	doc, err := s.registry.FindByID(ctx, id)
	if err != nil || doc.Status != model.StatusSigned {
		return false
	}

	documentPath := filepath.Join(s.documentsDir, doc.FileName)
	if _, err := os.Stat(documentPath); err != nil {
		return false
	}

	artifactPath, err := s.exporter.Export(ctx, id, documentPath)
	if err != nil {
		_ = s.sink.Record(ctx, audit.Event{
			DocumentID: id,
			Action:     audit.ActionInternalError,
			Detail:     fmt.Sprintf("export failed: %v", err),
		})
		return false
	}

	err = s.registry.Update(ctx, id, func(d *model.Document) error {
		if d.Status != model.StatusSigned {
			return errPrecondition
		}
		d.Status = model.StatusFinalized
		d.ArtifactPath = artifactPath
		return nil
	})
	if err != nil {
		return false
	}

	_ = s.sink.Record(ctx, audit.Event{
		DocumentID: id,
		Action:     audit.ActionDocumentFinalized,
		Detail:     artifactPath,
	})
	return true
}

// ResolvePath returns the Documents-area path for the id if the file
// currently exists on disk. An empty path means "not found", never an error.
func (s *documentService) ResolvePath(ctx context.Context, id string) string {
	doc, err := s.registry.FindByID(ctx, id)
	if err != nil {
		return ""
	}
	path := filepath.Join(s.documentsDir, doc.FileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// List returns a snapshot copy of the registry.
func (s *documentService) List(ctx context.Context) ([]model.Document, error) {
	return s.registry.List(ctx)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
