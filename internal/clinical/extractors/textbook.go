// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
)

type TextbookRecord struct {
	DocumentType string             `json:"document_type"`
	Chapters     []Chapter          `json:"chapters"`
	Diseases     map[string]Disease `json:"diseases"`
	Treatments   TextbookTreatments `json:"treatments"`
	KeyConcepts  []KeyConcept       `json:"key_concepts"`
	Tables       []string           `json:"tables"`
	Figures      []string           `json:"figures"`
}

func (TextbookRecord) RecordType() string { return string(clinical.Textbook) }

type Chapter struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

type Disease struct {
	Definition string   `json:"definition"`
	Symptoms   []string `json:"symptoms"`
	Treatments []string `json:"treatments"`
}

type TextbookTreatments struct {
	General []string `json:"general,omitempty"`
}

const (
	ConceptDiagnosticCriteria = "diagnostic_criteria"
	ConceptKeyPoint           = "key_point"
)

type KeyConcept struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

var (
	chapterPattern = mustCI(`Chapter\s+(\d+)[:.]?\s*([^\n]{1,100})`)

	// disease names must be capitalized, so these stay case sensitive
	diseasePatterns = []*regexp.Regexp{
		regexp.MustCompile(`([A-Z][a-z]+(?:\s+[a-z]+)?)\s+is\s+(?:a|an)\s+([^.]+disease[^.]+)`),
		regexp.MustCompile(`([A-Z][a-z]+(?:\s+[a-z]+)?)\s+(?:syndrome|disorder)\s+characterized\s+by\s+([^.]+)`),
	}

	criteriaPattern = mustCI(`diagnostic\s+criteria[:\s]+([^.]{20,500})`)

	treatmentPatterns = []*regexp.Regexp{
		mustCI(`treatment\s+(?:includes|consists\s+of|involves)\s+([^.]+)`),
		mustCI(`first[\s\-]line\s+(?:treatment|therapy)\s+(?:is|includes)\s+([^.]+)`),
	}

	keyPointPatterns = []*regexp.Regexp{
		mustCI(`(?:key\s+points?|summary|important\s+points?)[:\s]+([^.]{20,500})`),
		mustCI(`(?:remember|note)\s+that\s+([^.]{20,200})`),
	}
)

// TextbookExtractor extracts chapter structure, disease definitions,
// treatments and key concepts.
type TextbookExtractor struct{}

func NewTextbookExtractor() *TextbookExtractor {
	return &TextbookExtractor{}
}

func (e *TextbookExtractor) Name() string {
	return "textbook"
}

func (e *TextbookExtractor) CanHandle(t clinical.DocumentType) bool {
	return t == clinical.Textbook
}

func (e *TextbookExtractor) Extract(text string) clinical.Record {
	rec := TextbookRecord{
		DocumentType: string(clinical.Textbook),
		Chapters:     []Chapter{},
		Diseases:     map[string]Disease{},
		KeyConcepts:  []KeyConcept{},
		Tables:       []string{},
		Figures:      []string{},
	}

	for _, m := range chapterPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		rec.Chapters = append(rec.Chapters, Chapter{Number: n, Title: strings.TrimSpace(m[2])})
	}

	for _, re := range diseasePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := m[1]
			if _, seen := rec.Diseases[name]; seen {
				continue
			}
			def, ok := bounded(m[2], maxParagraph)
			if !ok {
				continue
			}
			rec.Diseases[name] = Disease{Definition: def, Symptoms: []string{}, Treatments: []string{}}
		}
	}

	if m := criteriaPattern.FindStringSubmatch(text); m != nil {
		rec.KeyConcepts = append(rec.KeyConcepts, KeyConcept{
			Type:    ConceptDiagnosticCriteria,
			Content: strings.TrimSpace(m[1]),
		})
	}

	if general := allCaptures(text, treatmentPatterns, maxSingleLine-1); len(general) > 0 {
		rec.Treatments.General = general
	}

	for _, content := range allCaptures(text, keyPointPatterns, maxParagraph) {
		rec.KeyConcepts = append(rec.KeyConcepts, KeyConcept{Type: ConceptKeyPoint, Content: content})
	}
	return rec
}
