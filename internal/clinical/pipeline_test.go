// SPDX-License-Identifier: Apache-2.0

package clinical_test

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
	"github.com/medlit/clinical-pdf-intel/internal/clinical/extractors"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newProcessor() *clinical.Processor {
	return clinical.NewProcessor(extractors.Default()...).WithClock(func() time.Time { return fixedNow })
}

// ---------------------------------------------------------------------------
// Processor.Process
// ---------------------------------------------------------------------------

func TestProcess_CaseReport(t *testing.T) {
	rec := newProcessor().Process(clinical.Input{
		Filename:  "/data/in/dengue_case.pdf",
		Text:      caseReportText,
		PageCount: 3,
	})

	assert.Equal(t, clinical.DocumentID("dengue_case.pdf"), rec.DocumentID)
	assert.Equal(t, clinical.CaseReport, rec.DocumentType)
	assert.InDelta(t, 0.45, rec.TypeConfidence, 1e-9)

	assert.Equal(t, rec.DocumentID, rec.Metadata[clinical.MetaDocID])
	assert.Equal(t, "/data/in/dengue_case.pdf", rec.Metadata[clinical.MetaFilename])
	assert.Equal(t, "case_report", rec.Metadata[clinical.MetaDocumentType])
	assert.Equal(t, 3, rec.Metadata[clinical.MetaPages])
	assert.Equal(t, "2024-03-01T12:00:00Z", rec.Metadata[clinical.MetaProcessedDate])
	assert.Equal(t, false, rec.Metadata[clinical.MetaHasImages])
	assert.Equal(t, 0, rec.Metadata[clinical.MetaImageCount])

	cr, ok := rec.ExtractedData.(extractors.CaseReportRecord)
	require.True(t, ok, "got %T", rec.ExtractedData)
	require.NotNil(t, cr.Patient.Age)
	assert.Equal(t, 34, *cr.Patient.Age)
	assert.Equal(t, "dengue fever", cr.Diagnostics.PrimaryDiagnosis)

	require.Len(t, rec.TextChunks, 1)
	assert.Equal(t, rec.DocumentID+"_0", rec.TextChunks[0].ID)
	assert.Empty(t, rec.ImageChunks)
	assert.Equal(t, 1, rec.TotalChunks)
}

func TestProcess_ExplicitDocumentIDWins(t *testing.T) {
	rec := newProcessor().Process(clinical.Input{DocumentID: "custom", Filename: "a.pdf", Text: labReportText, PageCount: 1})
	assert.Equal(t, "custom", rec.DocumentID)
	assert.Equal(t, "custom_0", rec.TextChunks[0].ID)
	assert.IsType(t, extractors.LabReportRecord{}, rec.ExtractedData)
}

func TestProcess_ResearchArticleUsesCaseReportStrategy(t *testing.T) {
	text := "Abstract. Introduction. Methods. Results. Discussion of the cohort"
	rec := newProcessor().Process(clinical.Input{Filename: "study.pdf", Text: text, PageCount: 8})
	assert.Equal(t, clinical.ResearchArticle, rec.DocumentType)
	assert.IsType(t, extractors.CaseReportRecord{}, rec.ExtractedData)
}

func TestProcess_EmptyText(t *testing.T) {
	rec := newProcessor().Process(clinical.Input{Filename: "blank.pdf"})
	assert.Equal(t, clinical.Unknown, rec.DocumentType)
	assert.Equal(t, 0.0, rec.TypeConfidence)
	assert.NotNil(t, rec.TextChunks)
	assert.Empty(t, rec.TextChunks)
	assert.Equal(t, 0, rec.TotalChunks)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"text_chunks":[]`)
}

func TestProcess_ImagesCountTowardsTotal(t *testing.T) {
	rec := newProcessor().Process(clinical.Input{
		Filename:  "img.pdf",
		Text:      caseReportText,
		PageCount: 3,
		Images:    []clinical.Image{{Index: 0, Page: 1, Filename: "p1.png", Caption: "rash"}},
	})
	assert.Equal(t, true, rec.Metadata[clinical.MetaHasImages])
	assert.Equal(t, 1, rec.Metadata[clinical.MetaImageCount])
	require.Len(t, rec.ImageChunks, 1)
	assert.Equal(t, len(rec.TextChunks)+1, rec.TotalChunks)
}

func TestProcess_SerializedShape(t *testing.T) {
	rec := newProcessor().Process(clinical.Input{Filename: "case.pdf", Text: caseReportText, PageCount: 3})
	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{
		"document_id", "document_type", "type_confidence", "document_metadata",
		"extracted_data", "text_chunks", "image_chunks", "total_chunks",
	} {
		assert.Contains(t, decoded, key)
	}

	chunk := decoded["text_chunks"].([]any)[0].(map[string]any)
	assert.Contains(t, chunk, "chunk_id")
	assert.Contains(t, chunk, "text")
	assert.Equal(t, "case_report", chunk["metadata"].(map[string]any)["document_type"])
}

// ---------------------------------------------------------------------------
// Extractor dispatch
// ---------------------------------------------------------------------------

func TestExtract_NoExtractorReturnsNil(t *testing.T) {
	p := clinical.NewProcessor()
	assert.Nil(t, p.Extract(clinical.CaseReport, caseReportText))
}

func TestExtract_FirstMatchingExtractorWins(t *testing.T) {
	p := clinical.NewProcessor(extractors.NewCaseReportExtractor(), extractors.NewLabReportExtractor())
	assert.IsType(t, extractors.LabReportRecord{}, p.Extract(clinical.LabReport, labReportText))
	assert.IsType(t, extractors.CaseReportRecord{}, p.Extract(clinical.Unknown, labReportText))
}

// catchAll handles every type and records nothing.
type catchAll struct{}

func (catchAll) CanHandle(clinical.DocumentType) bool { return true }
func (catchAll) Extract(string) clinical.Record       { return nil }
func (catchAll) Name() string                         { return "catch_all" }

func TestExtractorFor(t *testing.T) {
	tests := []struct {
		name      string
		processor *clinical.Processor
		docType   clinical.DocumentType
		want      string
		wantOK    bool
	}{
		{name: "default lab report", processor: newProcessor(), docType: clinical.LabReport, want: "lab_report", wantOK: true},
		{name: "default radiology falls to case report", processor: newProcessor(), docType: clinical.RadiologyReport, want: "case_report", wantOK: true},
		{
			name:      "custom list registered first wins",
			processor: clinical.NewProcessor(catchAll{}, extractors.NewLabReportExtractor()),
			docType:   clinical.LabReport,
			want:      "catch_all",
			wantOK:    true,
		},
		{
			name:      "no strategy for type",
			processor: clinical.NewProcessor(extractors.NewLabReportExtractor()),
			docType:   clinical.Textbook,
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, ok := tt.processor.ExtractorFor(tt.docType)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Nil(t, ex)
				return
			}
			assert.Equal(t, tt.want, ex.Name())
		})
	}
}

func TestRegisteredExtractors(t *testing.T) {
	assert.Equal(t,
		[]string{"textbook", "clinical_guideline", "discharge_summary", "lab_report", "case_report"},
		newProcessor().RegisteredExtractors())
}

func TestWithClassifier(t *testing.T) {
	reg, err := clinical.NewRegistry(clinical.TypeSignature{Type: clinical.LabReport, Keywords: []string{"fever"}, Weight: 1})
	require.NoError(t, err)
	p := newProcessor().WithClassifier(clinical.NewClassifier(reg))
	assert.Equal(t, clinical.LabReport, p.Classify("fever", 1).Type)
}

// ---------------------------------------------------------------------------
// DocumentID
// ---------------------------------------------------------------------------

func TestDocumentID(t *testing.T) {
	id := clinical.DocumentID("/some/dir/report.pdf")
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{12}$`), id)
	assert.Equal(t, id, clinical.DocumentID("report.pdf"))
	assert.Equal(t, id, clinical.DocumentID("report.txt"))
	assert.NotEqual(t, id, clinical.DocumentID("other.pdf"))
}
