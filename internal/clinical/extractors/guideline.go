// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"regexp"
	"strings"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
)

type GuidelineRecord struct {
	DocumentType      string           `json:"document_type"`
	Recommendations   []Recommendation `json:"recommendations"`
	Algorithms        []string         `json:"algorithms"`
	EvidenceLevels    map[string]int   `json:"evidence_levels"`
	Contraindications []string         `json:"contraindications"`
	Monitoring        []string         `json:"monitoring"`
}

func (GuidelineRecord) RecordType() string { return "clinical_guideline" }

// Recommendation carries either the modal verb phrase that introduced it
// (Strength) or the evidence level it was graded with.
type Recommendation struct {
	Text          string `json:"text"`
	Strength      string `json:"strength,omitempty"`
	EvidenceLevel string `json:"evidence_level,omitempty"`
}

var (
	strengthPattern = mustCI(`(recommend(?:s|ed)?|should\s+be|must\s+be)\s+([^.]+)`)
	levelPattern    = mustCI(`Level\s+([A-C])\s+(?:evidence|recommendation)[:\s]+([^.]+)`)

	contraindicationPatterns = []*regexp.Regexp{
		mustCI(`contraindicated\s+in\s+([^.]+)`),
		mustCI(`should\s+not\s+be\s+(?:used|given)\s+(?:in|to)\s+([^.]+)`),
		mustCI(`avoid\s+(?:in|for)\s+([^.]+)`),
	}

	monitoringPatterns = []*regexp.Regexp{
		mustCI(`monitor\s+([^.]+)`),
		mustCI(`check\s+([^.]+)\s+(?:every|daily|weekly)`),
		mustCI(`follow[\s\-]up\s+([^.]+)`),
	}
)

// GuidelineExtractor extracts recommendations, contraindications and
// monitoring requirements.
type GuidelineExtractor struct{}

func NewGuidelineExtractor() *GuidelineExtractor {
	return &GuidelineExtractor{}
}

func (e *GuidelineExtractor) Name() string {
	return "clinical_guideline"
}

func (e *GuidelineExtractor) CanHandle(t clinical.DocumentType) bool {
	return t == clinical.ClinicalGuideline
}

func (e *GuidelineExtractor) Extract(text string) clinical.Record {
	rec := GuidelineRecord{
		DocumentType:    "clinical_guideline",
		Recommendations: []Recommendation{},
		Algorithms:      []string{},
		EvidenceLevels:  map[string]int{},
	}

	for _, m := range strengthPattern.FindAllStringSubmatch(text, -1) {
		body, ok := bounded(m[2], maxParagraph)
		if !ok {
			continue
		}
		rec.Recommendations = append(rec.Recommendations, Recommendation{
			Text:     body,
			Strength: strings.Join(strings.Fields(m[1]), " "),
		})
	}
	for _, m := range levelPattern.FindAllStringSubmatch(text, -1) {
		body, ok := bounded(m[2], maxParagraph)
		if !ok {
			continue
		}
		level := strings.ToUpper(m[1])
		rec.Recommendations = append(rec.Recommendations, Recommendation{Text: body, EvidenceLevel: level})
		rec.EvidenceLevels[level]++
	}

	rec.Contraindications = allCaptures(text, contraindicationPatterns, maxParagraph)
	rec.Monitoring = allCaptures(text, monitoringPatterns, maxShortItem-1)
	return rec
}
