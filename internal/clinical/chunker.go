// SPDX-License-Identifier: Apache-2.0

package clinical

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ChunkParams holds the size and overlap, in characters, used for one type.
type ChunkParams struct {
	Size    int
	Overlap int
}

var defaultChunkParams = ChunkParams{Size: 512, Overlap: 128}

var chunkParamsByType = map[DocumentType]ChunkParams{
	CaseReport:        {Size: 512, Overlap: 128},
	Textbook:          {Size: 768, Overlap: 200},
	ClinicalGuideline: {Size: 400, Overlap: 100},
	LabReport:         {Size: 256, Overlap: 50},
}

// ChunkParamsFor returns the chunking parameters for t.
func ChunkParamsFor(t DocumentType) ChunkParams {
	if p, ok := chunkParamsByType[t]; ok {
		return p
	}
	return defaultChunkParams
}

const sentenceDelimiter = ". "

// BuildChunks splits text into overlapping chunks sized for docType.
// Every chunk carries a copy of metadata plus its index, chunk type and
// document type. IDs are "{doc_id}_{index}".
func BuildChunks(text string, docType DocumentType, metadata map[string]any) []Chunk {
	params := ChunkParamsFor(docType)
	docID := documentIDFrom(metadata)

	units := strings.Split(strings.ReplaceAll(text, "\n", " "), sentenceDelimiter)

	var chunks []Chunk
	emit := func(buf string) {
		idx := len(chunks)
		chunks = append(chunks, Chunk{
			ID:           fmt.Sprintf("%s_%d", docID, idx),
			Text:         strings.TrimSpace(buf),
			Index:        idx,
			Type:         ChunkText,
			DocumentType: docType,
			Metadata:     chunkMetadata(metadata, idx, ChunkText, docType),
		})
	}

	var buf string
	for _, unit := range units {
		if strings.TrimSpace(unit) == "" {
			continue
		}
		if buf == "" || utf8.RuneCountInString(buf)+utf8.RuneCountInString(unit) < params.Size {
			buf += unit + sentenceDelimiter
			continue
		}
		emit(buf)
		if utf8.RuneCountInString(buf) > params.Overlap {
			buf = tailRunes(buf, params.Overlap) + unit + sentenceDelimiter
		} else {
			buf = unit + sentenceDelimiter
		}
	}
	if strings.TrimSpace(buf) != "" {
		emit(buf)
	}
	return chunks
}

// BuildImageChunks turns externally annotated images into image chunks.
func BuildImageChunks(images []Image, docType DocumentType, metadata map[string]any) []Chunk {
	docID := documentIDFrom(metadata)
	chunks := make([]Chunk, 0, len(images))
	for i, img := range images {
		md := chunkMetadata(metadata, i, ChunkImage, docType)
		md["image_path"] = img.Filename
		md["clinical_relevance"] = img.ClinicalRelevance
		md["page"] = img.Page
		chunks = append(chunks, Chunk{
			ID:           fmt.Sprintf("%s_img_%d", docID, img.Index),
			Text:         "Image: " + img.Caption,
			Index:        i,
			Type:         ChunkImage,
			DocumentType: docType,
			Metadata:     md,
		})
	}
	return chunks
}

func chunkMetadata(base map[string]any, idx int, ct ChunkType, docType DocumentType) map[string]any {
	md := make(map[string]any, len(base)+3)
	for k, v := range base {
		md[k] = v
	}
	md[MetaChunkIndex] = idx
	md[MetaChunkType] = string(ct)
	md[MetaDocumentType] = string(docType)
	return md
}

func documentIDFrom(metadata map[string]any) string {
	if id, ok := metadata[MetaDocID].(string); ok && id != "" {
		return id
	}
	return "unknown"
}

func tailRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
