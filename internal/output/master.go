// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
)

const maxFailurePreview = 100

// DocumentIndex is the machine-readable batch summary.
type DocumentIndex struct {
	ProcessingDate string                       `json:"processing_date"`
	Statistics     clinical.Summary             `json:"statistics"`
	Documents      []clinical.ProcessedDocument `json:"documents"`
	Failed         []clinical.FailedDocument    `json:"failed"`
}

// Master writes MASTER_REPORT.md and document_index.json for a batch and
// returns the markdown report path.
func (w *Writer) Master(report clinical.Report) (string, error) {
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	now := w.now()

	var md bytes.Buffer
	w.writeMasterMarkdown(&md, report, now)
	mdPath := filepath.Join(w.root, masterReportFile)
	if err := os.WriteFile(mdPath, md.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write master report: %w", err)
	}

	index := DocumentIndex{
		ProcessingDate: now.Format(time.RFC3339),
		Statistics:     report.Summary(),
		Documents:      nonNil(report.Processed),
		Failed:         nonNil(report.Failed),
	}
	if err := writeJSON(filepath.Join(w.root, documentIndexFile), index); err != nil {
		return "", err
	}
	return mdPath, nil
}

func (w *Writer) writeMasterMarkdown(b *bytes.Buffer, report clinical.Report, now time.Time) {
	summary := report.Summary()
	types := report.TypesInOrder()

	fmt.Fprint(b, "# Clinical PDF Processing Report\n\n")
	fmt.Fprintf(b, "**Generated:** %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(b, "**Output Directory:** `%s`\n\n", w.root)

	fmt.Fprint(b, "## Summary Statistics\n\n")
	fmt.Fprintf(b, "- **Total Files Processed:** %d\n", summary.TotalProcessed)
	fmt.Fprintf(b, "- **Failed Files:** %d\n\n", summary.TotalFailed)

	fmt.Fprint(b, "### Document Type Distribution\n\n")
	for _, t := range types {
		fmt.Fprintf(b, "- **%s:** %d files\n", titleCase(string(t)), summary.ByType[t])
	}
	fmt.Fprint(b, "\n")

	for _, t := range types {
		fmt.Fprintf(b, "## %s Files\n\n", titleCase(string(t)))
		for _, d := range report.ByType(t) {
			fmt.Fprintf(b, "### %s\n", d.File)
			fmt.Fprintf(b, "- **Confidence:** %s\n", percent(d.Confidence))
			fmt.Fprintf(b, "- **Chunks:** %d\n", d.Chunks)
			fmt.Fprintf(b, "- **Folder:** `%s`\n\n", filepath.Base(d.Folder))
		}
	}

	if len(report.Failed) > 0 {
		fmt.Fprint(b, "## Failed Files\n\n")
		for _, f := range report.Failed {
			fmt.Fprintf(b, "- **%s:** %s\n", f.File, preview(f.Error, maxFailurePreview))
		}
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
