// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"regexp"
	"strings"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
)

type DischargeSummaryRecord struct {
	DocumentType   string                 `json:"document_type"`
	Admission      Encounter              `json:"admission"`
	Discharge      Encounter              `json:"discharge"`
	HospitalCourse string                 `json:"hospital_course"`
	Medications    DischargeMedicationSet `json:"medications"`
	FollowUp       []string               `json:"follow_up"`
}

func (DischargeSummaryRecord) RecordType() string { return string(clinical.DischargeSummary) }

type Encounter struct {
	Date      string `json:"date,omitempty"`
	Diagnosis string `json:"diagnosis,omitempty"`
}

type DischargeMedicationSet struct {
	Admission []DischargeMedication `json:"admission"`
	Discharge []DischargeMedication `json:"discharge"`
}

var (
	admissionDatePatterns = []*regexp.Regexp{
		mustCI(`admission\s+date[:\s]+([^\n]+)`),
		mustCI(`date\s+of\s+admission[:\s]+([^\n]+)`),
	}
	dischargeDatePatterns = []*regexp.Regexp{
		mustCI(`discharge\s+date[:\s]+([^\n]+)`),
		mustCI(`date\s+of\s+discharge[:\s]+([^\n]+)`),
	}
	admissionDiagnosisPatterns = []*regexp.Regexp{
		mustCI(`admission\s+diagnosis[:\s]+([^\n]+)`),
	}
	dischargeDiagnosisPatterns = []*regexp.Regexp{
		mustCI(`discharge\s+diagnosis[:\s]+([^\n]+)`),
	}

	hospitalCoursePattern = mustCI(`hospital\s+course[:\s]+([^.]{50,1000})`)
	followUpPattern       = mustCI(`follow[\s\-]up[:\s]+([^.]{20,500})`)

	// RE2 caps counted repetition at 1000, so the upper bound is applied
	// after matching.
	dischargeMedsHeader = mustCI(`discharge\s+medications?[:\s]+([^.]{50,})`)
	admissionMedsHeader = mustCI(`(?:admission|home)\s+medications?[:\s]+([^.]{50,})`)
)

// DischargeSummaryExtractor extracts encounter dates and diagnoses, the
// hospital course, medication lists and follow-up instructions.
type DischargeSummaryExtractor struct{}

func NewDischargeSummaryExtractor() *DischargeSummaryExtractor {
	return &DischargeSummaryExtractor{}
}

func (e *DischargeSummaryExtractor) Name() string {
	return "discharge_summary"
}

func (e *DischargeSummaryExtractor) CanHandle(t clinical.DocumentType) bool {
	return t == clinical.DischargeSummary
}

func (e *DischargeSummaryExtractor) Extract(text string) clinical.Record {
	rec := DischargeSummaryRecord{
		DocumentType: string(clinical.DischargeSummary),
		Medications: DischargeMedicationSet{
			Admission: []DischargeMedication{},
			Discharge: []DischargeMedication{},
		},
		FollowUp: []string{},
	}

	rec.Admission.Date, _ = firstCapture(text, admissionDatePatterns, maxSingleLine)
	rec.Discharge.Date, _ = firstCapture(text, dischargeDatePatterns, maxSingleLine)
	rec.Admission.Diagnosis, _ = firstCapture(text, admissionDiagnosisPatterns, maxSingleLine)
	rec.Discharge.Diagnosis, _ = firstCapture(text, dischargeDiagnosisPatterns, maxSingleLine)

	if m := hospitalCoursePattern.FindStringSubmatch(text); m != nil {
		rec.HospitalCourse = strings.TrimSpace(m[1])
	}

	if section, ok := medicationSection(text, dischargeMedsHeader); ok {
		rec.Medications.Discharge = parseSectionMedications(section)
	}
	if section, ok := medicationSection(text, admissionMedsHeader); ok {
		rec.Medications.Admission = parseSectionMedications(section)
	}

	if m := followUpPattern.FindStringSubmatch(text); m != nil {
		rec.FollowUp = append(rec.FollowUp, strings.TrimSpace(m[1]))
	}
	return rec
}
