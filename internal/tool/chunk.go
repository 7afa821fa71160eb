// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
)

// MetadataChunkClinicalText describes the chunk_clinical_text tool.
var MetadataChunkClinicalText = &mcp.Tool{
	Name: "chunk_clinical_text",
	Description: "Split clinical text into overlapping chunks for vector indexing. Chunk size and " +
		"overlap depend on the document type (lab reports 256/50, guidelines 400/100, textbooks " +
		"768/200, everything else 512/128 characters). When document_type is omitted the text is " +
		"classified first.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"text"},
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Plain text to chunk",
			},
			"document_type": map[string]interface{}{
				"type":        "string",
				"description": "Document type selecting the chunk parameters. If omitted, the text is classified.",
				"enum": []string{"case_report", "textbook", "guideline", "discharge_summary",
					"research_article", "lab_report", "radiology_report", "unknown"},
			},
			"document_id": map[string]interface{}{
				"type":        "string",
				"description": "Chunk id prefix. Defaults to \"unknown\".",
			},
		},
	},
}

// InputChunkClinicalText is the input for the ChunkClinicalText tool.
type InputChunkClinicalText struct {
	Text         string `json:"text"`
	DocumentType string `json:"document_type"`
	DocumentID   string `json:"document_id"`
}

// OutputChunkClinicalText is the output for the ChunkClinicalText tool.
type OutputChunkClinicalText struct {
	DocumentType clinical.DocumentType `json:"document_type"`
	ChunkSize    int                   `json:"chunk_size"`
	ChunkOverlap int                   `json:"chunk_overlap"`
	Chunks       []clinical.Chunk      `json:"chunks"`
	TotalChunks  int                   `json:"total_chunks"`
}

// ChunkClinicalText chunks the provided text with the parameters of its type.
func ChunkClinicalText(_ context.Context, _ *mcp.CallToolRequest, input InputChunkClinicalText) (*mcp.CallToolResult, OutputChunkClinicalText, error) {
	if input.Text == "" {
		return nil, OutputChunkClinicalText{}, fmt.Errorf("text is required")
	}

	var docType clinical.DocumentType
	if input.DocumentType == "" {
		docType = defaultProcessor().Classify(input.Text, 1).Type
	} else {
		t, ok := clinical.ParseDocumentType(input.DocumentType)
		if !ok {
			return nil, OutputChunkClinicalText{}, fmt.Errorf("unsupported document type %q", input.DocumentType)
		}
		docType = t
	}

	metadata := map[string]any{}
	if input.DocumentID != "" {
		metadata[clinical.MetaDocID] = input.DocumentID
	}

	chunks := clinical.BuildChunks(input.Text, docType, metadata)
	if chunks == nil {
		chunks = []clinical.Chunk{}
	}
	params := clinical.ChunkParamsFor(docType)
	return nil, OutputChunkClinicalText{
		DocumentType: docType,
		ChunkSize:    params.Size,
		ChunkOverlap: params.Overlap,
		Chunks:       chunks,
		TotalChunks:  len(chunks),
	}, nil
}
