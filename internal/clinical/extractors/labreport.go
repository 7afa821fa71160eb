// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"regexp"
	"strings"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
)

type LabReportRecord struct {
	DocumentType   string    `json:"document_type"`
	Tests          []LabTest `json:"tests"`
	AbnormalValues []LabTest `json:"abnormal_values"`
	CriticalValues []LabTest `json:"critical_values"`
}

func (LabReportRecord) RecordType() string { return string(clinical.LabReport) }

type LabTest struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Unit      string `json:"unit"`
	Reference string `json:"reference"`
	Flag      string `json:"flag,omitempty"`
}

// labLinePattern reads "Name: value unit (low-high) flag". Groups:
// 1 name, 2 value, 3 unit, 4 reference range, 5 flag.
var labLinePattern = regexp.MustCompile(
	`([A-Za-z][A-Za-z \t]*):[ \t]*(\d+(?:\.\d+)?)[ \t]*([a-zA-Z/%]+)?` +
		`[ \t]*(?:\(|Reference:)?[ \t]*(\d+(?:\.\d+)?[ \t]*-[ \t]*\d+(?:\.\d+)?)?[ \t]*\)?` +
		`[ \t]*((?:HH|LL|H|L)\b|\*|(?i:critical|abnormal))?`)

var bareFlags = map[string]bool{"H": true, "L": true, "HH": true, "LL": true}

// LabReportExtractor extracts test results and flags abnormal and critical
// values.
type LabReportExtractor struct{}

func NewLabReportExtractor() *LabReportExtractor {
	return &LabReportExtractor{}
}

func (e *LabReportExtractor) Name() string {
	return "lab_report"
}

func (e *LabReportExtractor) CanHandle(t clinical.DocumentType) bool {
	return t == clinical.LabReport
}

func (e *LabReportExtractor) Extract(text string) clinical.Record {
	rec := LabReportRecord{
		DocumentType:   string(clinical.LabReport),
		Tests:          []LabTest{},
		AbnormalValues: []LabTest{},
		CriticalValues: []LabTest{},
	}

	for _, m := range labLinePattern.FindAllStringSubmatch(text, -1) {
		test := LabTest{
			Name:      strings.TrimSpace(m[1]),
			Value:     m[2],
			Unit:      m[3],
			Reference: strings.Join(strings.Fields(m[4]), ""),
			Flag:      m[5],
		}
		// "Potassium: 6.1 H" parses the flag as a unit
		if test.Flag == "" && bareFlags[test.Unit] {
			test.Flag, test.Unit = test.Unit, ""
		}
		if test.Name == "" {
			continue
		}

		if isAbnormal(test) {
			rec.AbnormalValues = append(rec.AbnormalValues, test)
			if isCritical(test) {
				rec.CriticalValues = append(rec.CriticalValues, test)
			}
		}
		rec.Tests = append(rec.Tests, test)
	}
	return rec
}

func isAbnormal(t LabTest) bool {
	if t.Flag != "" {
		return true
	}
	name := strings.ToLower(t.Name)
	return strings.Contains(name, "abnormal") || strings.Contains(name, "critical")
}

func isCritical(t LabTest) bool {
	switch strings.ToLower(t.Flag) {
	case "critical", "hh", "ll":
		return true
	}
	return strings.Contains(strings.ToLower(t.Name), "critical")
}
