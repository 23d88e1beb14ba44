package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docflow/internal/audit"
	"docflow/internal/model"
	"docflow/internal/storage"
)

// TemplateExt is the only document extension accepted for templates.
const TemplateExt = ".docx"

// docxContentType is the MIME type reported for stored templates.
const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrUnsupportedType = errors.New("only .docx files are supported")
)

// TemplateService manages the Templates storage area. The filesystem is
// the source of truth: List and lookups scan the directory on every call,
// there is no in-memory index.
type TemplateService interface {
	// Upload stores the content under a unique name derived from the file
	// stem plus an upload timestamp, so same-named templates never
	// overwrite each other.
	Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Template, error)

	// List returns the templates currently on disk.
	List(ctx context.Context) ([]model.Template, error)

	// Delete removes the first stored file whose name matches the given
	// name prefix. Returns false when nothing matched or removal failed;
	// removal failures are reported to the audit sink, not propagated.
	Delete(ctx context.Context, name string) bool

	// ResolvePath returns the stored path for the first prefix match, or
	// empty when no template matches.
	ResolvePath(ctx context.Context, name string) string
}

// templateService is a concrete implementation of TemplateService.
type templateService struct {
	layout storage.Layout
	sink   audit.Sink
}

// NewTemplateService constructs a new TemplateService.
func NewTemplateService(layout storage.Layout, sink audit.Sink) TemplateService {
	return &templateService{layout: layout, sink: sink}
}

func (s *templateService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Template, error) {
	if r == nil || size == 0 {
		return nil, ErrEmptyFile
	}
	if !strings.EqualFold(filepath.Ext(originalFilename), TemplateExt) {
		return nil, ErrUnsupportedType
	}

	now := time.Now().UTC()
	stem := strings.TrimSuffix(filepath.Base(originalFilename), filepath.Ext(originalFilename))
	storedName := fmt.Sprintf("%s_%s%s", stem, now.Format("20060102_150405"), TemplateExt)
	path := filepath.Join(s.layout.TemplatesPath(), storedName)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create template file: %w", err)
	}
	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("write template file: %w", err)
	}

	if contentType == "" {
		contentType = docxContentType
	}

	_ = s.sink.Record(ctx, audit.Event{
		Action: audit.ActionTemplateUploaded,
		Detail: storedName,
		At:     now,
	})

	return &model.Template{
		Name:        stem,
		FileName:    storedName,
		Size:        written,
		ContentType: contentType,
		UploadedAt:  now,
	}, nil
}

// List scans the Templates area and returns one record per stored file.
func (s *templateService) List(_ context.Context) ([]model.Template, error) {
	entries, err := os.ReadDir(s.layout.TemplatesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Template{}, nil
		}
		return nil, fmt.Errorf("scan templates: %w", err)
	}

	templates := make([]model.Template, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), TemplateExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		templates = append(templates, model.Template{
			Name:        strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			FileName:    entry.Name(),
			Size:        info.Size(),
			ContentType: docxContentType,
			UploadedAt:  info.ModTime().UTC(),
		})
	}
	return templates, nil
}

func (s *templateService) Delete(ctx context.Context, name string) bool {
	stored, ok := s.findByPrefix(name)
	if !ok {
		return false
	}
	if err := os.Remove(filepath.Join(s.layout.TemplatesPath(), stored)); err != nil {
		_ = s.sink.Record(ctx, audit.Event{
			Action: audit.ActionInternalError,
			Detail: fmt.Sprintf("delete template %s: %v", stored, err),
		})
		return false
	}
	_ = s.sink.Record(ctx, audit.Event{
		Action: audit.ActionTemplateDeleted,
		Detail: stored,
	})
	return true
}

func (s *templateService) ResolvePath(_ context.Context, name string) string {
	stored, ok := s.findByPrefix(name)
	if !ok {
		return ""
	}
	return filepath.Join(s.layout.TemplatesPath(), stored)
}

// findByPrefix returns the first stored .docx file whose name starts with
// name. os.ReadDir sorts entries, so when one template name is a prefix of
// another the lexically first stored file wins. That ambiguity is inherent
// to the prefix scheme and kept deliberately.
func (s *templateService) findByPrefix(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	entries, err := os.ReadDir(s.layout.TemplatesPath())
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), TemplateExt) {
			continue
		}
		if strings.HasPrefix(entry.Name(), name) {
			return entry.Name(), true
		}
	}
	return "", false
}
