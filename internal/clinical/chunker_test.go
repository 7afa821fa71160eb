// SPDX-License-Identifier: Apache-2.0

package clinical_test

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
)

// sentences builds n distinct 48 character sentences joined by ". ".
func sentences(n int) string {
	parts := make([]string, n)
	for i := range parts {
		s := fmt.Sprintf("sentence number %04d about platelet counts", i)
		parts[i] = s + strings.Repeat("x", 48-len(s))
	}
	return strings.Join(parts, ". ") + ". "
}

// ---------------------------------------------------------------------------
// BuildChunks
// ---------------------------------------------------------------------------

func TestBuildChunks_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n", ". . "} {
		chunks := clinical.BuildChunks(text, clinical.CaseReport, map[string]any{clinical.MetaDocID: "d"})
		assert.Empty(t, chunks, "text %q", text)
	}
}

func TestBuildChunks_IDsAndIndices(t *testing.T) {
	md := map[string]any{clinical.MetaDocID: "abc123", "filename": "x.pdf"}
	chunks := clinical.BuildChunks(sentences(40), clinical.CaseReport, md)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.Equal(t, fmt.Sprintf("abc123_%d", i), c.ID)
		assert.Equal(t, i, c.Index)
		assert.Equal(t, clinical.ChunkText, c.Type)
		assert.Equal(t, clinical.CaseReport, c.DocumentType)
		assert.Equal(t, i, c.Metadata[clinical.MetaChunkIndex])
		assert.Equal(t, "text", c.Metadata[clinical.MetaChunkType])
		assert.Equal(t, "case_report", c.Metadata[clinical.MetaDocumentType])
		assert.Equal(t, "x.pdf", c.Metadata["filename"])
		assert.NotEmpty(t, strings.TrimSpace(c.Text))
	}
	_, leaked := md[clinical.MetaChunkIndex]
	assert.False(t, leaked, "base metadata must not be mutated")
}

func TestBuildChunks_MissingDocIDUsesUnknown(t *testing.T) {
	chunks := clinical.BuildChunks("one. two. three", clinical.LabReport, nil)
	require.Len(t, chunks, 1)
	assert.Equal(t, "unknown_0", chunks[0].ID)
}

func TestBuildChunks_CoversEverySentence(t *testing.T) {
	text := sentences(60)
	chunks := clinical.BuildChunks(text, clinical.ClinicalGuideline, map[string]any{clinical.MetaDocID: "g"})

	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c.Text)
		joined.WriteString(" ")
	}
	for _, s := range strings.Split(text, ". ") {
		if s == "" {
			continue
		}
		assert.Contains(t, joined.String(), s)
	}
}

func TestBuildChunks_CountTracksStride(t *testing.T) {
	text := sentences(100)
	params := clinical.ChunkParamsFor(clinical.CaseReport)
	chunks := clinical.BuildChunks(text, clinical.CaseReport, map[string]any{clinical.MetaDocID: "c"})

	length := utf8.RuneCountInString(text)
	want := math.Ceil(float64(length) / float64(params.Size-params.Overlap))
	assert.InDelta(t, want, float64(len(chunks)), 2)
}

func TestBuildChunks_ConsecutiveChunksOverlap(t *testing.T) {
	chunks := clinical.BuildChunks(sentences(30), clinical.CaseReport, map[string]any{clinical.MetaDocID: "o"})
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		head := string([]rune(chunks[i].Text)[:20])
		assert.Contains(t, chunks[i-1].Text, head, "chunk %d should start inside chunk %d", i, i-1)
	}
}

func TestBuildChunks_ChunksStayNearSize(t *testing.T) {
	params := clinical.ChunkParamsFor(clinical.LabReport)
	chunks := clinical.BuildChunks(sentences(50), clinical.LabReport, map[string]any{clinical.MetaDocID: "l"})
	for _, c := range chunks {
		assert.Less(t, utf8.RuneCountInString(c.Text), params.Size+50)
	}
}

func TestBuildChunks_OversizeSentenceIsKept(t *testing.T) {
	long := strings.Repeat("a", 900)
	chunks := clinical.BuildChunks(long+". short tail", clinical.CaseReport, map[string]any{clinical.MetaDocID: "big"})
	require.NotEmpty(t, chunks)
	assert.True(t, strings.HasPrefix(chunks[0].Text, long))
}

func TestBuildChunks_NewlinesAreSpaces(t *testing.T) {
	chunks := clinical.BuildChunks("line one\nline two. next", clinical.CaseReport, map[string]any{clinical.MetaDocID: "n"})
	require.Len(t, chunks, 1)
	assert.NotContains(t, chunks[0].Text, "\n")
	assert.Contains(t, chunks[0].Text, "line one line two")
}

func TestBuildChunks_Deterministic(t *testing.T) {
	md := map[string]any{clinical.MetaDocID: "det"}
	text := sentences(45)
	assert.Equal(t, clinical.BuildChunks(text, clinical.Textbook, md), clinical.BuildChunks(text, clinical.Textbook, md))
}

func TestChunkParamsFor(t *testing.T) {
	tests := []struct {
		docType clinical.DocumentType
		want    clinical.ChunkParams
	}{
		{clinical.CaseReport, clinical.ChunkParams{Size: 512, Overlap: 128}},
		{clinical.Textbook, clinical.ChunkParams{Size: 768, Overlap: 200}},
		{clinical.ClinicalGuideline, clinical.ChunkParams{Size: 400, Overlap: 100}},
		{clinical.LabReport, clinical.ChunkParams{Size: 256, Overlap: 50}},
		{clinical.RadiologyReport, clinical.ChunkParams{Size: 512, Overlap: 128}},
		{clinical.Unknown, clinical.ChunkParams{Size: 512, Overlap: 128}},
	}
	for _, tt := range tests {
		t.Run(string(tt.docType), func(t *testing.T) {
			assert.Equal(t, tt.want, clinical.ChunkParamsFor(tt.docType))
		})
	}
}

// ---------------------------------------------------------------------------
// BuildImageChunks
// ---------------------------------------------------------------------------

func TestBuildImageChunks(t *testing.T) {
	images := []clinical.Image{
		{Index: 0, Page: 2, Filename: "img_p2_0.png", Caption: "Chest radiograph", ClinicalRelevance: "high"},
		{Index: 3, Page: 5, Filename: "img_p5_3.png", Caption: "Rash on forearm", ClinicalRelevance: "medium"},
	}
	chunks := clinical.BuildImageChunks(images, clinical.CaseReport, map[string]any{clinical.MetaDocID: "doc"})
	require.Len(t, chunks, 2)

	assert.Equal(t, "doc_img_0", chunks[0].ID)
	assert.Equal(t, "doc_img_3", chunks[1].ID)
	assert.Equal(t, "Image: Rash on forearm", chunks[1].Text)
	assert.Equal(t, clinical.ChunkImage, chunks[1].Type)
	assert.Equal(t, "img_p5_3.png", chunks[1].Metadata["image_path"])
	assert.Equal(t, "medium", chunks[1].Metadata["clinical_relevance"])
	assert.Equal(t, 5, chunks[1].Metadata["page"])
	assert.Equal(t, "image", chunks[1].Metadata[clinical.MetaChunkType])
}
