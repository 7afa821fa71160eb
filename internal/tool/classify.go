// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
)

// MetadataClassifyClinicalDocument describes the classify_clinical_document tool.
var MetadataClassifyClinicalDocument = &mcp.Tool{
	Name: "classify_clinical_document",
	Description: "Classify the text of a clinical document into one of: case_report, textbook, guideline, " +
		"discharge_summary, research_article, lab_report, radiology_report or unknown. " +
		"Only the first 3000 characters are inspected. The page count adjusts the score for types " +
		"with typical length bounds (textbooks are long, lab and radiology reports are short). " +
		"Confidence is in [0, 1]; results at or below 0.2 fall back to a heuristic type.",
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
		},
	},
}

// InputClassifyClinicalDocument is the input for the ClassifyClinicalDocument tool.
type InputClassifyClinicalDocument struct {
	Text      string `json:"text"`
	PageCount *int   `json:"page_count,omitempty"`
}

// OutputClassifyClinicalDocument is the output for the ClassifyClinicalDocument tool.
type OutputClassifyClinicalDocument struct {
	DocumentType clinical.DocumentType `json:"document_type"`
	Confidence   float64               `json:"confidence"`
	// ChunkSize and ChunkOverlap are the chunking parameters for the type.
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
}

// ClassifyClinicalDocument scores the text against every document type
// signature and returns the best match.
func ClassifyClinicalDocument(_ context.Context, _ *mcp.CallToolRequest, input InputClassifyClinicalDocument) (*mcp.CallToolResult, OutputClassifyClinicalDocument, error) {
	if input.Text == "" {
		return nil, OutputClassifyClinicalDocument{}, fmt.Errorf("text is required")
	}
	pages, err := pageCount(input.PageCount)
	if err != nil {
		return nil, OutputClassifyClinicalDocument{}, err
	}

	result := defaultProcessor().Classify(input.Text, pages)
	params := clinical.ChunkParamsFor(result.Type)
	return nil, OutputClassifyClinicalDocument{
		DocumentType: result.Type,
		Confidence:   result.Confidence,
		ChunkSize:    params.Size,
		ChunkOverlap: params.Overlap,
	}, nil
}

func pageCount(p *int) (int, error) {
	if p == nil {
		return 1, nil
	}
	if *p < 0 {
		return 0, fmt.Errorf("page_count must not be negative, got %d", *p)
	}
	return *p, nil
}
