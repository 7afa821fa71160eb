// SPDX-License-Identifier: Apache-2.0

package clinical

import (
	"fmt"
	"regexp"
)

// TypeSignature parametrizes classification for one document type.
// MinPages and MaxPages of zero mean the bound is not declared.
type TypeSignature struct {
	Type     DocumentType
	Keywords []string
	Patterns []*regexp.Regexp
	MinPages int
	MaxPages int
	Weight   float64
}

func (s TypeSignature) validate() error {
	if s.Weight <= 0 || s.Weight > 1 {
		return fmt.Errorf("signature %q: weight %v outside (0,1]", s.Type, s.Weight)
	}
	if s.Type != Unknown && len(s.Keywords)+len(s.Patterns) == 0 {
		return fmt.Errorf("signature %q: no keywords or patterns", s.Type)
	}
	return nil
}

// ci compiles a case-insensitive pattern.
func ci(expr string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + expr)
}

// defaultSignatures is the registration order used for scoring and tie-breaks.
var defaultSignatures = []TypeSignature{
	{
		Type: CaseReport,
		Keywords: []string{"case report", "case presentation", "we report", "we present",
			"a case of", "rare case", "unusual presentation"},
		Patterns: []*regexp.Regexp{
			ci(`[Aa]\s+\d{1,3}[\s\-]*year[\s\-]*old`),
			ci(`presented\s+with`),
			ci(`was\s+diagnosed\s+with`),
		},
		MaxPages: 15,
		Weight:   1.0,
	},
	{
		Type: Textbook,
		Keywords: []string{"chapter", "section", "learning objectives", "review questions",
			"summary", "key points", "bibliography", "references", "edition"},
		Patterns: []*regexp.Regexp{
			ci(`Chapter\s+\d+`),
			ci(`Section\s+\d+\.\d+`),
			ci(`Figure\s+\d+\.\d+`),
		},
		MinPages: 30,
		Weight:   0.8,
	},
	{
		Type: ClinicalGuideline,
		Keywords: []string{"guideline", "recommendation", "protocol", "consensus",
			"algorithm", "evidence level", "grade", "standard of care"},
		Patterns: []*regexp.Regexp{
			ci(`Level\s+[A-C]\s+evidence`),
			ci(`Grade\s+\d+[A-C]?\s+recommendation`),
			ci(`should\s+be\s+(?:considered|performed|avoided)`),
		},
		Weight: 0.9,
	},
	{
		Type: DischargeSummary,
		Keywords: []string{"discharge", "admission", "hospital course", "discharge diagnosis",
			"discharge medications", "follow up", "disposition"},
		Patterns: []*regexp.Regexp{
			ci(`Date\s+of\s+Admission`),
			ci(`Date\s+of\s+Discharge`),
			ci(`Discharge\s+Diagnosis`),
		},
		MaxPages: 10,
		Weight:   0.95,
	},
	{
		Type: ResearchArticle,
		Keywords: []string{"abstract", "introduction", "methods", "results", "discussion",
			"conclusion", "participants", "study design", "statistical analysis"},
		Patterns: []*regexp.Regexp{
			ci(`[Pp]\s*[<=]\s*0\.\d+`),
			ci(`[Nn]\s*=\s*\d+`),
			ci(`95%\s+CI`),
		},
		Weight: 0.85,
	},
	{
		Type: LabReport,
		Keywords: []string{"laboratory", "specimen", "reference range", "abnormal",
			"test name", "result", "units", "collected"},
		Patterns: []*regexp.Regexp{
			ci(`\d+\.\d+\s*-\s*\d+\.\d+`),
			// H/L flag closing the inspected window
			ci(`[HL]\s*$`),
			ci(`mg/dL|mmol/L|IU/mL`),
		},
		MaxPages: 5,
		Weight:   0.9,
	},
	{
		Type: RadiologyReport,
		Keywords: []string{"impression", "findings", "technique", "comparison",
			"indication", "ct", "mri", "xray", "ultrasound"},
		Patterns: []*regexp.Regexp{
			ci(`IMPRESSION:`),
			ci(`FINDINGS:`),
			ci(`TECHNIQUE:`),
		},
		MaxPages: 5,
		Weight:   0.95,
	},
}

// Registry is an ordered, read-only table of type signatures.
type Registry struct {
	signatures []TypeSignature
}

// NewRegistry validates the signatures and keeps them in the given order.
func NewRegistry(signatures ...TypeSignature) (*Registry, error) {
	for _, s := range signatures {
		if err := s.validate(); err != nil {
			return nil, err
		}
	}
	return &Registry{signatures: signatures}, nil
}

// DefaultRegistry returns the built-in clinical signatures.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultSignatures...)
	if err != nil {
		panic(err)
	}
	return r
}

// Signatures returns the signatures in registration order.
func (r *Registry) Signatures() []TypeSignature {
	out := make([]TypeSignature, len(r.signatures))
	copy(out, r.signatures)
	return out
}

// Lookup returns the signature registered for t.
func (r *Registry) Lookup(t DocumentType) (TypeSignature, bool) {
	for _, s := range r.signatures {
		if s.Type == t {
			return s, true
		}
	}
	return TypeSignature{}, false
}
