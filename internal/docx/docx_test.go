package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`

// writeDocx builds a minimal .docx on disk. Each paragraph is a list of
// runs; each run holds a single bold text fragment.
func writeDocx(t *testing.T, dir, name string, paragraphs [][]string) string {
	t.Helper()

	var body strings.Builder
	for _, runs := range paragraphs {
		body.WriteString("<w:p>")
		for _, text := range runs {
			body.WriteString(`<w:r><w:rPr><w:b/></w:rPr><w:t>`)
			body.WriteString(text)
			body.WriteString(`</w:t></w:r>`)
		}
		body.WriteString("</w:p>")
	}
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for entry, content := range map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"word/document.xml":   documentXML,
	} {
		w, err := zw.Create(entry)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// readTexts returns all w:t fragment values of the document on disk, in order.
func readTexts(t *testing.T, path string) []string {
	t.Helper()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		xmlRaw, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)

		doc := etree.NewDocument()
		require.NoError(t, doc.ReadFromBytes(xmlRaw))
		var out []string
		for _, el := range doc.FindElements("//w:t") {
			out = append(out, el.Text())
		}
		return out
	}
	t.Fatal("document part not found")
	return nil
}

func newAccessor() *Accessor {
	return New(log.New(io.Discard, "", 0))
}

func TestSubstitute_SingleFragment(t *testing.T) {
	dir := t.TempDir()
	path := writeDocx(t, dir, "doc.docx", [][]string{
		{"Hello {{name}}!"},
		{"Unrelated text"},
	})

	err := newAccessor().Substitute(path, map[string]string{"name": "Alice"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Hello Alice!", "Unrelated text"}, readTexts(t, path))
}

func TestSubstitute_MultipleKeysAndOccurrences(t *testing.T) {
	dir := t.TempDir()
	path := writeDocx(t, dir, "doc.docx", [][]string{
		{"{{greeting}}, {{name}}. Again: {{name}}."},
	})

	err := newAccessor().Substitute(path, map[string]string{
		"greeting": "Dear",
		"name":     "Bob",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Dear, Bob. Again: Bob."}, readTexts(t, path))
}

func TestSubstitute_SplitAcrossRunsNotMatched(t *testing.T) {
	// A placeholder broken across two runs must stay untouched. Matching is
	// fragment-local on purpose.
	dir := t.TempDir()
	path := writeDocx(t, dir, "doc.docx", [][]string{
		{"{{na", "me}}"},
	})

	err := newAccessor().Substitute(path, map[string]string{"name": "Alice"})
	require.NoError(t, err)

	assert.Equal(t, []string{"{{na", "me}}"}, readTexts(t, path))
}

func TestSubstitute_PreservesFormatting(t *testing.T) {
	dir := t.TempDir()
	path := writeDocx(t, dir, "doc.docx", [][]string{{"{{name}}"}})

	err := newAccessor().Substitute(path, map[string]string{"name": "Alice"})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	var found bool
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			xmlRaw, err := io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)
			assert.Contains(t, string(xmlRaw), "<w:b/>")
			found = true
		}
	}
	assert.True(t, found)

	// Sibling archive entries survive the rewrite.
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "[Content_Types].xml")
}

func TestSubstitute_CorruptFileSkipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))

	err := newAccessor().Substitute(path, map[string]string{"name": "Alice"})
	assert.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "not a zip archive", string(raw))
}

func TestSubstitute_MissingDocumentPartSkipped(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(contentTypesXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "empty.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	assert.NoError(t, newAccessor().Substitute(path, map[string]string{"name": "Alice"}))
}

func TestSubstitute_MissingFileErrors(t *testing.T) {
	err := newAccessor().Substitute(filepath.Join(t.TempDir(), "absent.docx"), nil)
	assert.Error(t, err)
}
