// Package docx mutates placeholder text inside .docx files in place.
//
// A .docx file is a zip archive whose main part, word/document.xml, holds an
// ordered body of paragraphs (w:p), each holding formatting runs (w:r), each
// holding text fragments (w:t). Substitution replaces `{{key}}` tokens inside
// individual text fragments and writes the archive back with every other
// entry untouched, so fonts, styles and paragraph structure are preserved.
//
// Matching is fragment-local: a placeholder split across two runs (for
// example by a mid-token formatting change) is not replaced. This mirrors
// the upstream editor behavior and is pinned by tests.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/beevik/etree"
)

const documentEntry = "word/document.xml"

// Accessor performs in-place variable substitution on structured documents.
// Files that cannot be parsed as a structured document are skipped without
// error; the failure is reported to the logger so it is not lost.
type Accessor struct {
	logger *log.Logger
}

// New returns an Accessor. A nil logger falls back to the standard logger.
func New(logger *log.Logger) *Accessor {
	if logger == nil {
		logger = log.Default()
	}
	return &Accessor{logger: logger}
}

// Substitute replaces every fragment-local occurrence of `{{key}}` with the
// mapped value for each entry in vars and persists the document back to the
// same path. Read and write I/O errors are returned; an unparsable or
// malformed document is left unmodified and reported as success.
func (a *Accessor) Substitute(path string, vars map[string]string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		a.logger.Printf("docx: skipping %s: not a zip archive: %v", path, err)
		return nil
	}

	var entry *zip.File
	for _, f := range zr.File {
		if f.Name == documentEntry {
			entry = f
			break
		}
	}
	if entry == nil {
		a.logger.Printf("docx: skipping %s: no %s entry", path, documentEntry)
		return nil
	}

	rc, err := entry.Open()
	if err != nil {
		a.logger.Printf("docx: skipping %s: open %s: %v", path, documentEntry, err)
		return nil
	}
	xmlRaw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		a.logger.Printf("docx: skipping %s: read %s: %v", path, documentEntry, err)
		return nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlRaw); err != nil {
		a.logger.Printf("docx: skipping %s: parse %s: %v", path, documentEntry, err)
		return nil
	}
	root := doc.Root()
	if root == nil {
		a.logger.Printf("docx: skipping %s: empty document part", path)
		return nil
	}
	body := root.SelectElement("w:body")
	if body == nil {
		a.logger.Printf("docx: skipping %s: missing document body", path)
		return nil
	}

	replaceInBody(body, vars)

	xmlOut, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serialize document part: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method})
		if err != nil {
			return fmt.Errorf("rewrite archive entry %s: %w", f.Name, err)
		}
		if f.Name == documentEntry {
			if _, err := w.Write(xmlOut); err != nil {
				return fmt.Errorf("rewrite archive entry %s: %w", f.Name, err)
			}
			continue
		}
		src, err := f.Open()
		if err != nil {
			return fmt.Errorf("copy archive entry %s: %w", f.Name, err)
		}
		_, err = io.Copy(w, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("copy archive entry %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// replaceInBody walks paragraph -> run -> text and replaces tokens within
// each text fragment. Substitution order across keys does not matter:
// `{{...}}` tokens are disjoint by construction.
func replaceInBody(body *etree.Element, vars map[string]string) {
	for key, value := range vars {
		placeholder := "{{" + key + "}}"
		for _, p := range body.SelectElements("w:p") {
			for _, r := range p.SelectElements("w:r") {
				for _, t := range r.SelectElements("w:t") {
					if text := t.Text(); strings.Contains(text, placeholder) {
						t.SetText(strings.ReplaceAll(text, placeholder, value))
					}
				}
			}
		}
	}
}
