// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
	"github.com/medlit/clinical-pdf-intel/internal/clinical/extractors"
)

// List caps applied to summary sections.
const (
	maxSummaryItems    = 10
	maxSummaryDiseases = 5
	maxSummaryConcepts = 5
	maxConceptPreview  = 200
	maxSummaryImages   = 10
)

func writeSummary(w io.Writer, filename string, rec *clinical.DocumentRecord, images []clinical.Image) {
	fmt.Fprintf(w, "# %s Summary\n\n", titleCase(string(rec.DocumentType)))
	fmt.Fprintf(w, "**Document:** %s\n", filename)
	fmt.Fprintf(w, "**Type:** %s (confidence: %s)\n", rec.DocumentType, percent(rec.TypeConfidence))
	fmt.Fprintf(w, "**Processed:** %v\n\n", rec.Metadata[clinical.MetaProcessedDate])

	switch data := rec.ExtractedData.(type) {
	case extractors.CaseReportRecord:
		if rec.DocumentType == clinical.CaseReport {
			writeCaseReportSummary(w, data)
		}
	case extractors.TextbookRecord:
		writeTextbookSummary(w, data)
	case extractors.GuidelineRecord:
		writeGuidelineSummary(w, data)
	case extractors.DischargeSummaryRecord:
		writeDischargeSummary(w, data)
	case extractors.LabReportRecord:
		writeLabReportSummary(w, data)
	}

	if len(images) > 0 {
		fmt.Fprint(w, "\n## Extracted Images\n\n")
		for _, img := range head(images, maxSummaryImages) {
			caption := img.Caption
			if caption == "" {
				caption = "No caption"
			}
			fmt.Fprintf(w, "- **Image %d** (Page %d): %s [%s]\n", img.Index, img.Page, caption, img.ClinicalRelevance)
		}
	}
}

func writeCaseReportSummary(w io.Writer, d extractors.CaseReportRecord) {
	if d.Patient.Age != nil || d.Patient.Gender != "" {
		fmt.Fprint(w, "## Patient Demographics\n")
		if d.Patient.Age != nil {
			fmt.Fprintf(w, "- **Age:** %d\n", *d.Patient.Age)
		}
		if d.Patient.Gender != "" {
			fmt.Fprintf(w, "- **Gender:** %s\n", d.Patient.Gender)
		}
		fmt.Fprint(w, "\n")
	}

	t := d.Timeline
	if t.OnsetDays != nil || t.IllnessDay != nil || t.DurationDays != nil {
		fmt.Fprint(w, "## Timeline\n")
		writeOptionalInt(w, "Onset Days", t.OnsetDays)
		writeOptionalInt(w, "Illness Day", t.IllnessDay)
		writeOptionalInt(w, "Duration Days", t.DurationDays)
		fmt.Fprint(w, "\n")
	}

	dx := d.Diagnostics
	if dx.Platelets != nil || dx.WBC != nil || dx.PrimaryDiagnosis != "" {
		fmt.Fprint(w, "## Diagnostics\n")
		if dx.Platelets != nil {
			fmt.Fprintf(w, "- **Platelets:** %v (%s)\n", dx.Platelets.Values, dx.Platelets.Trend)
		}
		if dx.WBC != nil {
			fmt.Fprintf(w, "- **WBC:** %v\n", dx.WBC.Values)
		}
		if dx.PrimaryDiagnosis != "" {
			fmt.Fprintf(w, "- **Primary Diagnosis:** %s\n", dx.PrimaryDiagnosis)
		}
		fmt.Fprint(w, "\n")
	}
}

func writeTextbookSummary(w io.Writer, d extractors.TextbookRecord) {
	if len(d.Chapters) > 0 {
		fmt.Fprint(w, "## Chapter Structure\n")
		for _, ch := range head(d.Chapters, maxSummaryItems) {
			fmt.Fprintf(w, "- Chapter %d: %s\n", ch.Number, ch.Title)
		}
		fmt.Fprint(w, "\n")
	}

	if len(d.Diseases) > 0 {
		fmt.Fprint(w, "## Disease Entities\n")
		names := make([]string, 0, len(d.Diseases))
		for name := range d.Diseases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range head(names, maxSummaryDiseases) {
			fmt.Fprintf(w, "### %s\n%s\n\n", name, d.Diseases[name].Definition)
		}
	}

	if len(d.KeyConcepts) > 0 {
		fmt.Fprint(w, "## Key Concepts\n")
		for _, c := range head(d.KeyConcepts, maxSummaryConcepts) {
			fmt.Fprintf(w, "- **%s:** %s\n", c.Type, preview(c.Content, maxConceptPreview))
		}
		fmt.Fprint(w, "\n")
	}
}

func writeGuidelineSummary(w io.Writer, d extractors.GuidelineRecord) {
	if len(d.Recommendations) > 0 {
		fmt.Fprint(w, "## Recommendations\n")
		for _, r := range head(d.Recommendations, maxSummaryItems) {
			if r.EvidenceLevel != "" {
				fmt.Fprintf(w, "- [%s] %s\n", r.EvidenceLevel, r.Text)
			} else {
				fmt.Fprintf(w, "- %s\n", r.Text)
			}
		}
		fmt.Fprint(w, "\n")
	}

	if len(d.Contraindications) > 0 {
		fmt.Fprint(w, "## Contraindications\n")
		for _, c := range head(d.Contraindications, maxSummaryDiseases) {
			fmt.Fprintf(w, "- %s\n", c)
		}
		fmt.Fprint(w, "\n")
	}
}

func writeDischargeSummary(w io.Writer, d extractors.DischargeSummaryRecord) {
	writeEncounter(w, "Admission", d.Admission)
	writeEncounter(w, "Discharge", d.Discharge)

	if len(d.Medications.Discharge) > 0 {
		fmt.Fprint(w, "## Discharge Medications\n")
		for _, m := range head(d.Medications.Discharge, maxSummaryItems) {
			fmt.Fprintf(w, "- %s %s\n", m.Name, m.Dose)
		}
		fmt.Fprint(w, "\n")
	}
}

func writeEncounter(w io.Writer, title string, e extractors.Encounter) {
	if e.Date == "" && e.Diagnosis == "" {
		return
	}
	fmt.Fprintf(w, "## %s\n", title)
	if e.Date != "" {
		fmt.Fprintf(w, "- **Date:** %s\n", e.Date)
	}
	if e.Diagnosis != "" {
		fmt.Fprintf(w, "- **Diagnosis:** %s\n", e.Diagnosis)
	}
	fmt.Fprint(w, "\n")
}

func writeLabReportSummary(w io.Writer, d extractors.LabReportRecord) {
	if len(d.AbnormalValues) > 0 {
		fmt.Fprint(w, "## Abnormal Values\n")
		for _, t := range head(d.AbnormalValues, maxSummaryItems) {
			fmt.Fprintf(w, "- **%s:** %s %s\n", t.Name, t.Value, t.Unit)
		}
		fmt.Fprint(w, "\n")
	}

	if len(d.CriticalValues) > 0 {
		fmt.Fprint(w, "## Critical Values\n")
		for _, t := range d.CriticalValues {
			fmt.Fprintf(w, "- **%s:** %s %s\n", t.Name, t.Value, t.Unit)
		}
		fmt.Fprint(w, "\n")
	}
}

func writeOptionalInt(w io.Writer, label string, v *int) {
	if v != nil {
		fmt.Fprintf(w, "- **%s:** %d\n", label, *v)
	}
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
