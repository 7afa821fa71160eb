// SPDX-License-Identifier: Apache-2.0

// Package output persists processed documents and batch reports to disk.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
)

const (
	extractionReportFile = "extraction_report.json"
	masterReportFile     = "MASTER_REPORT.md"
	documentIndexFile    = "document_index.json"
)

// Writer lays out per-document folders and batch reports under a root
// directory.
type Writer struct {
	root string
	now  func() time.Time
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{root: dir, now: time.Now}
}

// WithClock replaces the clock used for report timestamps.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// Root returns the output directory.
func (w *Writer) Root() string {
	return w.root
}

// ExtractionStats summarizes one document's outputs.
type ExtractionStats struct {
	TotalPages      int `json:"total_pages"`
	TextChunks      int `json:"text_chunks"`
	ImageChunks     int `json:"image_chunks"`
	ExtractedFields int `json:"extracted_fields"`
}

type extractionReport struct {
	DocumentType clinical.DocumentType `json:"document_type"`
	Confidence   float64               `json:"confidence"`
	Stats        ExtractionStats       `json:"extraction_stats"`
}

// Document writes the vector store record, the markdown summary and the
// extraction report for rec into "{document_type}_{stem}" and returns that
// folder.
func (w *Writer) Document(filename string, rec *clinical.DocumentRecord, images []clinical.Image) (string, error) {
	stem := fileStem(filename)
	folder := filepath.Join(w.root, fmt.Sprintf("%s_%s", rec.DocumentType, stem))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create document folder: %w", err)
	}

	if err := writeJSON(filepath.Join(folder, stem+"_vector_db.json"), rec); err != nil {
		return "", err
	}

	var summary bytes.Buffer
	writeSummary(&summary, filename, rec, images)
	if err := os.WriteFile(filepath.Join(folder, stem+"_summary.md"), summary.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}

	fields, err := countFields(rec.ExtractedData)
	if err != nil {
		return "", err
	}
	report := extractionReport{
		DocumentType: rec.DocumentType,
		Confidence:   rec.TypeConfidence,
		Stats: ExtractionStats{
			TotalPages:      pageCount(rec),
			TextChunks:      len(rec.TextChunks),
			ImageChunks:     len(rec.ImageChunks),
			ExtractedFields: fields,
		},
	}
	if err := writeJSON(filepath.Join(folder, extractionReportFile), report); err != nil {
		return "", err
	}
	return folder, nil
}

// countFields returns the number of top-level fields the record serializes.
func countFields(r clinical.Record) (int, error) {
	if r == nil {
		return 0, nil
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return 0, fmt.Errorf("encode extracted data: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return 0, fmt.Errorf("decode extracted data: %w", err)
	}
	return len(fields), nil
}

func pageCount(rec *clinical.DocumentRecord) int {
	if n, ok := rec.Metadata[clinical.MetaPages].(int); ok {
		return n
	}
	return 0
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func fileStem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// titleCase renders "discharge_summary" as "Discharge Summary".
func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
