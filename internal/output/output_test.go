// SPDX-License-Identifier: Apache-2.0

package output_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
	"github.com/medlit/clinical-pdf-intel/internal/clinical/extractors"
	"github.com/medlit/clinical-pdf-intel/internal/output"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func process(t *testing.T, filename, text string, pages int) *clinical.DocumentRecord {
	t.Helper()
	p := clinical.NewProcessor(extractors.Default()...).WithClock(func() time.Time { return fixedNow })
	return p.Process(clinical.Input{Filename: filename, Text: text, PageCount: pages})
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var v map[string]any
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// ---------------------------------------------------------------------------
// Per-document outputs
// ---------------------------------------------------------------------------

func TestDocument_CaseReport(t *testing.T) {
	root := t.TempDir()
	rec := process(t, "/in/dengue.pdf",
		"A 34-year-old male presented with fever and was diagnosed with dengue fever. Platelets: 45,000. Platelets: 30,000.", 3)

	images := []clinical.Image{{Index: 1, Page: 2, Filename: "dengue_p2_1.png", Caption: "Petechial rash", ClinicalRelevance: "high"}}
	folder, err := output.NewWriter(root).Document("/in/dengue.pdf", rec, images)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "case_report_dengue"), folder)

	vdb := readJSON(t, filepath.Join(folder, "dengue_vector_db.json"))
	assert.Equal(t, rec.DocumentID, vdb["document_id"])
	assert.Equal(t, "case_report", vdb["document_type"])
	assert.EqualValues(t, 1, vdb["total_chunks"])
	extracted := vdb["extracted_data"].(map[string]any)
	assert.EqualValues(t, 34, extracted["patient"].(map[string]any)["age"])

	report := readJSON(t, filepath.Join(folder, "extraction_report.json"))
	assert.Equal(t, "case_report", report["document_type"])
	stats := report["extraction_stats"].(map[string]any)
	assert.EqualValues(t, 3, stats["total_pages"])
	assert.EqualValues(t, 1, stats["text_chunks"])
	assert.EqualValues(t, 0, stats["image_chunks"])
	assert.EqualValues(t, 7, stats["extracted_fields"])

	summary, err := os.ReadFile(filepath.Join(folder, "dengue_summary.md"))
	require.NoError(t, err)
	s := string(summary)
	assert.True(t, strings.HasPrefix(s, "# Case Report Summary\n"))
	assert.Contains(t, s, "**Type:** case_report (confidence: 45%)")
	assert.Contains(t, s, "**Processed:** 2024-03-01T09:30:00Z")
	assert.Contains(t, s, "## Patient Demographics\n- **Age:** 34\n- **Gender:** male")
	assert.Contains(t, s, "- **Platelets:** [45000 30000] (decreasing)")
	assert.Contains(t, s, "- **Primary Diagnosis:** dengue fever")
	assert.Contains(t, s, "- **Image 1** (Page 2): Petechial rash [high]")
}

func TestDocument_TypeSpecificSections(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		pages    int
		wantType clinical.DocumentType
		want     []string
	}{
		{
			name:     "lab report",
			text:     "Hemoglobin: 9.2 g/dL (12.0-16.0) L\nPotassium: 6.9 mmol/L (3.5-5.0) HH",
			pages:    1,
			wantType: clinical.LabReport,
			want:     []string{"## Abnormal Values", "- **Hemoglobin:** 9.2 g/dL", "## Critical Values\n- **Potassium:** 6.9 mmol/L"},
		},
		{
			name: "discharge summary",
			text: "Date of Admission: 2024-01-02\nDate of Discharge: 2024-01-09\n" +
				"Discharge Diagnosis: pneumonia\nHospital course uneventful\n" +
				"Discharge Medications: Amoxicillin 500 mg three times daily and Omeprazole 20 mg every morning for a week.",
			pages:    2,
			wantType: clinical.DischargeSummary,
			want:     []string{"## Admission\n- **Date:** 2024-01-02", "## Discharge\n- **Date:** 2024-01-09\n- **Diagnosis:** pneumonia", "- Amoxicillin 500 mg"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := process(t, "doc.txt", tt.text, tt.pages)
			require.Equal(t, tt.wantType, rec.DocumentType)

			folder, err := output.NewWriter(t.TempDir()).Document("doc.txt", rec, nil)
			require.NoError(t, err)
			summary, err := os.ReadFile(filepath.Join(folder, "doc_summary.md"))
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, string(summary), w)
			}
			assert.NotContains(t, string(summary), "Extracted Images")
		})
	}
}

// ---------------------------------------------------------------------------
// Batch outputs
// ---------------------------------------------------------------------------

func sampleReport() clinical.Report {
	return clinical.Report{}.
		AddProcessed(clinical.ProcessedDocument{File: "a.pdf", Type: clinical.LabReport, Confidence: 0.25, Folder: "/out/lab_report_a", Chunks: 1}).
		AddProcessed(clinical.ProcessedDocument{File: "b.pdf", Type: clinical.CaseReport, Confidence: 0.45, Folder: "/out/case_report_b", Chunks: 4}).
		AddProcessed(clinical.ProcessedDocument{File: "c.pdf", Type: clinical.LabReport, Confidence: 0.5, Folder: "/out/lab_report_c", Chunks: 2}).
		AddFailed("d.pdf", errors.New("read pdf: malformed PDF: "+strings.Repeat("x", 200)))
}

func TestMaster(t *testing.T) {
	root := t.TempDir()
	path, err := output.NewWriter(root).WithClock(func() time.Time { return fixedNow }).Master(sampleReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "MASTER_REPORT.md"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(raw)
	assert.Contains(t, md, "**Generated:** 2024-03-01 09:30:00")
	assert.Contains(t, md, "- **Total Files Processed:** 3")
	assert.Contains(t, md, "- **Failed Files:** 1")
	assert.Contains(t, md, "- **Lab Report:** 2 files\n- **Case Report:** 1 files")
	assert.Less(t, strings.Index(md, "## Lab Report Files"), strings.Index(md, "## Case Report Files"))
	assert.Contains(t, md, "### a.pdf\n- **Confidence:** 25%\n- **Chunks:** 1\n- **Folder:** `lab_report_a`")
	assert.Contains(t, md, "## Failed Files")
	assert.NotContains(t, md, strings.Repeat("x", 150))

	index := readJSON(t, filepath.Join(root, "document_index.json"))
	assert.Equal(t, "2024-03-01T09:30:00Z", index["processing_date"])
	stats := index["statistics"].(map[string]any)
	assert.EqualValues(t, 3, stats["total_processed"])
	assert.EqualValues(t, 1, stats["total_failed"])
	assert.Equal(t, map[string]any{"lab_report": 2.0, "case_report": 1.0}, stats["by_type"])
	assert.Len(t, index["documents"], 3)
	assert.Len(t, index["failed"], 1)
}

func TestMaster_EmptyBatch(t *testing.T) {
	root := t.TempDir()
	_, err := output.NewWriter(root).Master(clinical.Report{})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(root, "document_index.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"documents": []`)
	assert.Contains(t, string(raw), `"failed": []`)
}

func TestXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "batch.xlsx")
	require.NoError(t, output.WriteXLSX(path, sampleReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Documents")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"File", "Document Type", "Confidence", "Chunks", "Folder"}, rows[0])
	assert.Equal(t, "b.pdf", rows[2][0])
	assert.Equal(t, "case_report", rows[2][1])
	assert.Equal(t, "case_report_b", rows[2][4])

	failed, err := f.GetRows("Failed")
	require.NoError(t, err)
	require.Len(t, failed, 2)
	assert.Equal(t, "d.pdf", failed[1][0])
}
