// SPDX-License-Identifier: Apache-2.0

package clinical

// DocumentType identifies the clinical genre of a document.
type DocumentType string

const (
	CaseReport        DocumentType = "case_report"
	Textbook          DocumentType = "textbook"
	ClinicalGuideline DocumentType = "guideline"
	DischargeSummary  DocumentType = "discharge_summary"
	ResearchArticle   DocumentType = "research_article"
	LabReport         DocumentType = "lab_report"
	RadiologyReport   DocumentType = "radiology_report"
	Unknown           DocumentType = "unknown"
)

// AllDocumentTypes lists every document type, Unknown last.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		CaseReport, Textbook, ClinicalGuideline, DischargeSummary,
		ResearchArticle, LabReport, RadiologyReport, Unknown,
	}
}

// ParseDocumentType maps a wire value back to its DocumentType.
func ParseDocumentType(s string) (DocumentType, bool) {
	for _, t := range AllDocumentTypes() {
		if string(t) == s {
			return t, true
		}
	}
	return Unknown, false
}

func (t DocumentType) String() string {
	return string(t)
}

// ClassificationResult is the outcome of classifying one document.
type ClassificationResult struct {
	Type       DocumentType `json:"document_type"`
	Confidence float64      `json:"confidence"`
}

// Record is a type-specific structured record produced by an Extractor.
// Implementations serialize to the fixed JSON shape of their document type.
type Record interface {
	RecordType() string
}

// ChunkType distinguishes text chunks from image chunks.
type ChunkType string

const (
	ChunkText  ChunkType = "text"
	ChunkImage ChunkType = "image"
)

// Chunk is a bounded span of document text emitted for downstream indexing.
//
// Index, Type and DocumentType are also present in Metadata under
// chunk_index, chunk_type and document_type, which is the shape consumers
// of the serialized record read.
type Chunk struct {
	ID           string         `json:"chunk_id"`
	Text         string         `json:"text"`
	Index        int            `json:"-"`
	Type         ChunkType      `json:"-"`
	DocumentType DocumentType   `json:"-"`
	Metadata     map[string]any `json:"metadata"`
}

// Image describes an image annotated by an external image collaborator.
type Image struct {
	Index             int    `json:"index"`
	Page              int    `json:"page"`
	Filename          string `json:"filename"`
	Caption           string `json:"caption"`
	ClinicalRelevance string `json:"clinical_relevance"`
}

// Input is the raw material for one pipeline run.
type Input struct {
	DocumentID string
	Filename   string
	Text       string
	PageCount  int
	Images     []Image
}

// DocumentRecord is the aggregate handed to persistence for one document.
type DocumentRecord struct {
	DocumentID     string         `json:"document_id"`
	DocumentType   DocumentType   `json:"document_type"`
	TypeConfidence float64        `json:"type_confidence"`
	Metadata       map[string]any `json:"document_metadata"`
	ExtractedData  Record         `json:"extracted_data"`
	TextChunks     []Chunk        `json:"text_chunks"`
	ImageChunks    []Chunk        `json:"image_chunks"`
	TotalChunks    int            `json:"total_chunks"`
}
