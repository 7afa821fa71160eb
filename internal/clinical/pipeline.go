// SPDX-License-Identifier: Apache-2.0

package clinical

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"
)

// Metadata keys shared by document and chunk metadata.
const (
	MetaDocID          = "doc_id"
	MetaFilename       = "filename"
	MetaDocumentType   = "document_type"
	MetaTypeConfidence = "type_confidence"
	MetaPages          = "pages"
	MetaProcessedDate  = "processed_date"
	MetaHasImages      = "has_images"
	MetaImageCount     = "image_count"
	MetaChunkIndex     = "chunk_index"
	MetaChunkType      = "chunk_type"
)

// Extractor is one type-specific field extraction strategy.
type Extractor interface {
	// CanHandle reports whether the strategy serves documents of type t.
	CanHandle(t DocumentType) bool
	Extract(text string) Record
	Name() string
}

// Processor sequences classification, extraction and chunking for a document.
type Processor struct {
	classifier *Classifier
	extractors []Extractor
	now        func() time.Time
}

// NewProcessor creates a Processor with the default registry and the given
// extractors. Extractors are consulted in order; the first that can handle
// the classified type is used.
func NewProcessor(extractors ...Extractor) *Processor {
	return &Processor{
		classifier: NewClassifier(nil),
		extractors: extractors,
		now:        time.Now,
	}
}

// WithClassifier replaces the classifier.
func (p *Processor) WithClassifier(c *Classifier) *Processor {
	p.classifier = c
	return p
}

// WithClock replaces the clock used for processed_date.
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// Classify exposes the processor's classifier.
func (p *Processor) Classify(text string, pageCount int) ClassificationResult {
	return p.classifier.Classify(text, pageCount)
}

// Extract applies the strategy selected for t. It returns nil when no
// registered extractor serves t.
func (p *Processor) Extract(t DocumentType, text string) Record {
	ex, ok := p.ExtractorFor(t)
	if !ok {
		return nil
	}
	return ex.Extract(text)
}

// Process runs the full classify -> extract -> chunk sequence.
func (p *Processor) Process(in Input) *DocumentRecord {
	result := p.classifier.Classify(in.Text, in.PageCount)

	docID := in.DocumentID
	if docID == "" {
		docID = DocumentID(in.Filename)
	}

	metadata := map[string]any{
		MetaDocID:          docID,
		MetaFilename:       in.Filename,
		MetaDocumentType:   string(result.Type),
		MetaTypeConfidence: result.Confidence,
		MetaPages:          in.PageCount,
		MetaProcessedDate:  p.now().Format(time.RFC3339),
		MetaHasImages:      len(in.Images) > 0,
		MetaImageCount:     len(in.Images),
	}

	textChunks := BuildChunks(in.Text, result.Type, metadata)
	if textChunks == nil {
		textChunks = []Chunk{}
	}
	imageChunks := BuildImageChunks(in.Images, result.Type, metadata)

	return &DocumentRecord{
		DocumentID:     docID,
		DocumentType:   result.Type,
		TypeConfidence: result.Confidence,
		Metadata:       metadata,
		ExtractedData:  p.Extract(result.Type, in.Text),
		TextChunks:     textChunks,
		ImageChunks:    imageChunks,
		TotalChunks:    len(textChunks) + len(imageChunks),
	}
}

// RegisteredExtractors returns the names of all registered extractors.
func (p *Processor) RegisteredExtractors() []string {
	names := make([]string, len(p.extractors))
	for i, ex := range p.extractors {
		names[i] = ex.Name()
	}
	return names
}

// ExtractorFor returns the first registered extractor that handles t.
func (p *Processor) ExtractorFor(t DocumentType) (Extractor, bool) {
	for _, ex := range p.extractors {
		if ex.CanHandle(t) {
			return ex, true
		}
	}
	return nil, false
}

// DocumentID derives a stable 12 hex digit id from a file name's stem.
func DocumentID(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	sum := md5.Sum([]byte(stem))
	return hex.EncodeToString(sum[:])[:12]
}
