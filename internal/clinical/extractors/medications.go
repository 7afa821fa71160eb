// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"regexp"
)

// Medication is a drug mention with its dose split from the unit.
type Medication struct {
	Name string `json:"name"`
	Dose string `json:"dose"`
	Unit string `json:"unit"`
}

// DischargeMedication carries the dose and unit joined, e.g. "10 mg".
type DischargeMedication struct {
	Name string `json:"name"`
	Dose string `json:"dose"`
}

var medicationPatterns = []*regexp.Regexp{
	// drug-like suffixes
	mustCI(`([A-Z][a-z]+(?:in|ol|ide|ate|ine|one|am))\s+(\d+)\s*(mg|g|ml)\b`),
	mustCI(`(acetaminophen|ibuprofen|aspirin|paracetamol)\s+(\d+)\s*(mg)\b`),
}

// section lists are case sensitive so that only capitalized drug names match
var sectionMedicationPattern = regexp.MustCompile(`([A-Z][a-z]+(?:in|ol|ide|ate)?)\s+(\d+)\s*(mg|g)\b`)

// ParseMedications collects every medication mention, pattern by pattern.
// A drug matched by both patterns appears twice.
func ParseMedications(text string) []Medication {
	var meds []Medication
	for _, re := range medicationPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			meds = append(meds, Medication{Name: m[1], Dose: m[2], Unit: m[3]})
		}
	}
	return meds
}

// parseSectionMedications reads "Name 10 mg" entries out of a medication list.
func parseSectionMedications(section string) []DischargeMedication {
	meds := []DischargeMedication{}
	for _, m := range sectionMedicationPattern.FindAllStringSubmatch(section, -1) {
		meds = append(meds, DischargeMedication{Name: m[1], Dose: m[2] + " " + m[3]})
	}
	return meds
}

// medicationSection returns group 1 of header, truncated to maxMedicationRun
// characters, or false when header does not match. Minimum run lengths are
// part of the header pattern.
func medicationSection(text string, header *regexp.Regexp) (string, bool) {
	m := header.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return truncateRunes(m[1], maxMedicationRun), true
}
