// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
)

// CaseReportRecord is the structured view of a clinical case report.
type CaseReportRecord struct {
	DocumentType     string           `json:"document_type"`
	Patient          Patient          `json:"patient"`
	Timeline         Timeline         `json:"timeline"`
	ClinicalFindings ClinicalFindings `json:"clinical_findings"`
	Diagnostics      Diagnostics      `json:"diagnostics"`
	Interventions    Interventions    `json:"interventions"`
	Outcomes         Outcomes         `json:"outcomes"`
}

func (CaseReportRecord) RecordType() string { return string(clinical.CaseReport) }

type Patient struct {
	Age    *int   `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

type Timeline struct {
	OnsetDays    *int `json:"onset_days,omitempty"`
	IllnessDay   *int `json:"illness_day,omitempty"`
	DurationDays *int `json:"duration_days,omitempty"`
}

type ClinicalFindings struct {
	ChiefComplaint string `json:"chief_complaint,omitempty"`
}

type Diagnostics struct {
	Platelets        *LabSeries `json:"platelets,omitempty"`
	WBC              *LabSeries `json:"wbc,omitempty"`
	PrimaryDiagnosis string     `json:"primary_diagnosis,omitempty"`
}

type Interventions struct {
	Medications []Medication `json:"medications,omitempty"`
}

type Outcomes struct {
	Status string `json:"status,omitempty"`
}

const maxAge = 130

// timelineRule stores the integer in group 1 of re into one timeline field.
type timelineRule struct {
	re  *regexp.Regexp
	set func(*CaseReportRecord, int)
}

var (
	agePattern       = mustCI(`\b(\d{1,3})[\s\-]*year[\s\-]*old`)
	genderPattern    = mustCI(`\b(male|female|man|woman)\b`)
	complaintPattern = mustCI(`presented\s+with\s+([^.]{10,100})`)

	timelineRules = []timelineRule{
		{re: mustCI(`(\d+)\s*days?\s+(?:prior|before|ago)`), set: func(r *CaseReportRecord, n int) { r.Timeline.OnsetDays = &n }},
		{re: mustCI(`day\s+(\d+)\s+of\s+(?:admission|illness)`), set: func(r *CaseReportRecord, n int) { r.Timeline.IllnessDay = &n }},
		{re: mustCI(`(?:after|following)\s+(\d+)\s*days?`), set: func(r *CaseReportRecord, n int) { r.Timeline.DurationDays = &n }},
	}

	diagnosisPatterns = []*regexp.Regexp{
		mustCI(`(?:final\s+)?diagnosis\s*:?\s*([^.]+)`),
		mustCI(`diagnosed\s+with\s+([^.]+)`),
		mustCI(`consistent\s+with\s+([^.]+)`),
	}

	outcomePatterns = []*regexp.Regexp{
		mustCI(`(recovered|died|discharged|transferred)`),
		mustCI(`(complete\s+recovery|partial\s+recovery|death)`),
		mustCI(`(favorable\s+outcome|poor\s+outcome)`),
	}
)

// CaseReportExtractor extracts demographics, timeline, diagnostics,
// interventions and outcomes. It also serves research articles, radiology
// reports and unclassified documents.
type CaseReportExtractor struct{}

func NewCaseReportExtractor() *CaseReportExtractor {
	return &CaseReportExtractor{}
}

func (e *CaseReportExtractor) Name() string {
	return "case_report"
}

func (e *CaseReportExtractor) CanHandle(t clinical.DocumentType) bool {
	switch t {
	case clinical.CaseReport, clinical.ResearchArticle, clinical.RadiologyReport, clinical.Unknown:
		return true
	}
	return false
}

func (e *CaseReportExtractor) Extract(text string) clinical.Record {
	rec := CaseReportRecord{DocumentType: string(clinical.CaseReport)}

	if m := agePattern.FindStringSubmatch(text); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil && age <= maxAge {
			rec.Patient.Age = &age
		}
	}
	if m := genderPattern.FindStringSubmatch(text); m != nil {
		rec.Patient.Gender = strings.ToLower(m[1])
	}
	if m := complaintPattern.FindStringSubmatch(text); m != nil {
		rec.ClinicalFindings.ChiefComplaint = strings.TrimSpace(m[1])
	}

	for _, r := range timelineRules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		r.set(&rec, n)
	}

	rec.Diagnostics.Platelets = PlateletSeries(text)
	rec.Diagnostics.WBC = WBCSeries(text)
	if dx, ok := firstCapture(text, diagnosisPatterns, maxSingleLine); ok {
		rec.Diagnostics.PrimaryDiagnosis = dx
	}

	rec.Interventions.Medications = ParseMedications(text)

	if status, ok := firstCapture(text, outcomePatterns, maxSingleLine); ok {
		rec.Outcomes.Status = status
	}
	return rec
}
