// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
	"github.com/medlit/clinical-pdf-intel/internal/clinical/extractors"
)

// MetadataProcessClinicalDocument describes the process_clinical_document tool.
var MetadataProcessClinicalDocument = &mcp.Tool{
	Name: "process_clinical_document",
	Description: "Run the full clinical pipeline over document text: classify it, apply the " +
		"type-specific field extraction (demographics, timeline and lab trends for case reports; " +
		"chapters and disease definitions for textbooks; recommendations for guidelines; encounters " +
		"and medication lists for discharge summaries; flagged values for lab reports) and split the " +
		"text into overlapping chunks sized for vector indexing. Returns the complete document record.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"text"},
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Full plain text of the document",
			},
			"page_count": map[string]interface{}{
				"type":        "integer",
				"minimum":     0,
				"description": "Number of pages in the source document. Defaults to 1.",
			},
			"filename": map[string]interface{}{
				"type":        "string",
				"description": "Optional source file name. The document id is derived from its stem.",
			},
			"document_id": map[string]interface{}{
				"type":        "string",
				"description": "Optional explicit document id used as the chunk id prefix.",
			},
		},
	},
}

// InputProcessClinicalDocument is the input for the ProcessClinicalDocument tool.
type InputProcessClinicalDocument struct {
	Text       string `json:"text"`
	PageCount  *int   `json:"page_count,omitempty"`
	Filename   string `json:"filename"`
	DocumentID string `json:"document_id"`
}

// OutputProcessClinicalDocument is the output for the ProcessClinicalDocument tool.
type OutputProcessClinicalDocument struct {
	// Record is the classified, extracted and chunked document.
	Record *clinical.DocumentRecord `json:"record"`
	// Extractor is the name of the extraction strategy that was applied.
	Extractor string `json:"extractor"`
}

// defaultProcessor builds a Processor with all built-in extraction strategies.
// Strategy order matters: the case report strategy is last because it also
// serves every type without a dedicated strategy.
func defaultProcessor() *clinical.Processor {
	return clinical.NewProcessor(extractors.Default()...)
}

// ProcessClinicalDocument classifies, extracts and chunks the provided text.
func ProcessClinicalDocument(_ context.Context, _ *mcp.CallToolRequest, input InputProcessClinicalDocument) (*mcp.CallToolResult, OutputProcessClinicalDocument, error) {
	if input.Text == "" {
		return nil, OutputProcessClinicalDocument{}, fmt.Errorf("text is required")
	}
	pages, err := pageCount(input.PageCount)
	if err != nil {
		return nil, OutputProcessClinicalDocument{}, err
	}

	filename := input.Filename
	if filename == "" && input.DocumentID == "" {
		filename = "unknown"
	}

	p := defaultProcessor()
	rec := p.Process(clinical.Input{
		DocumentID: input.DocumentID,
		Filename:   filename,
		Text:       input.Text,
		PageCount:  pages,
	})

	var extractor string
	if ex, ok := p.ExtractorFor(rec.DocumentType); ok {
		extractor = ex.Name()
	}
	return nil, OutputProcessClinicalDocument{Record: rec, Extractor: extractor}, nil
}
