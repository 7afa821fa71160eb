// SPDX-License-Identifier: Apache-2.0

package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlit/clinical-pdf-intel/internal/loader"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTextLoader_PageCountFromFormFeeds(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "page one\fpage two\fpage three")

	src, err := loader.Default(0).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, src.PageCount)
	assert.Equal(t, "page one\npage two\npage three", src.Text)
	assert.Equal(t, path, src.Path)
}

func TestRegistry_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  string
		maxBytes int64
		wantErr  error
	}{
		{"unsupported extension", "scan.docx", "whatever", 0, loader.ErrUnsupportedFormat},
		{"whitespace only", "blank.txt", " \n\t ", 0, loader.ErrEmptyDocument},
		{"over size cap", "big.txt", strings.Repeat("a", 64), 10, loader.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			_, err := loader.Default(tt.maxBytes).Load(context.Background(), path)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegistry_CorruptPDF(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.PDF", "not a pdf at all")
	_, err := loader.Default(0).Load(context.Background(), path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, loader.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), `loader "pdf" failed`)
}

func TestRegistry_MissingFile(t *testing.T) {
	_, err := loader.Default(0).Load(context.Background(), filepath.Join(t.TempDir(), "gone.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRegistry_Supports(t *testing.T) {
	r := loader.Default(0)
	assert.True(t, r.Supports("a/b/report.pdf"))
	assert.True(t, r.Supports("REPORT.PDF"))
	assert.True(t, r.Supports("export.txt"))
	assert.False(t, r.Supports("image.png"))
}

func TestRegistry_Discover(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "alpha")
	b := writeFile(t, dir, "nested/b.pdf", "beta")
	writeFile(t, dir, "nested/skip.png", "png")
	explicit := writeFile(t, t.TempDir(), "named.docx", "doc")

	got, err := loader.Default(0).Discover([]string{dir, explicit})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b, explicit}, got)

	_, err = loader.Default(0).Discover([]string{filepath.Join(dir, "missing")})
	require.Error(t, err)
}

func TestMarkdownLoader_FlattensSections(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "note.md", "Preamble line\n\n# Discharge Diagnosis\nDengue fever\n\n## Follow-up\n\n## Medications\r\nParacetamol 500 mg\r\n")

	src, err := loader.Default(0).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, src.PageCount)
	assert.Equal(t, "Preamble line\n\nDischarge Diagnosis\nDengue fever\n\nFollow-up\n\nMedications\nParacetamol 500 mg", src.Text)
	assert.NotContains(t, src.Text, "#")
}

func TestMarkdownLoader_BlankFileIsEmpty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.md", "\n\n")

	_, err := loader.Default(0).Load(context.Background(), path)
	require.ErrorIs(t, err, loader.ErrEmptyDocument)
	assert.True(t, loader.Default(0).Supports("NOTES.MARKDOWN"))
}
