// SPDX-License-Identifier: Apache-2.0

// Package extractors holds the per-type field extraction strategies.
// Every strategy applies an ordered table of precompiled patterns to the full
// document text. Singular fields take the first acceptable match; repeatable
// fields collect every match in document order, duplicates included.
package extractors

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
)

// Capture length bounds, in characters.
const (
	maxSingleLine    = 200
	maxShortItem     = 100
	maxParagraph     = 500
	maxMedicationRun = 2000
)

// Default returns the built-in strategies in dispatch order. The case report
// strategy is last and also serves every type without a dedicated strategy.
func Default() []clinical.Extractor {
	return []clinical.Extractor{
		NewTextbookExtractor(),
		NewGuidelineExtractor(),
		NewDischargeSummaryExtractor(),
		NewLabReportExtractor(),
		NewCaseReportExtractor(),
	}
}

func mustCI(expr string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + expr)
}

// bounded trims s and reports whether it is non-empty and at most max characters.
func bounded(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > max {
		return "", false
	}
	return s, true
}

// firstCapture returns group 1 of the first pattern whose first match yields
// a capture within max characters. Later patterns are only tried when an
// earlier one fails to produce an acceptable capture.
func firstCapture(text string, patterns []*regexp.Regexp, max int) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := bounded(m[1], max); ok {
			return v, true
		}
	}
	return "", false
}

// allCaptures collects group 1 of every match of every pattern, pattern by
// pattern, dropping captures longer than max.
func allCaptures(text string, patterns []*regexp.Regexp, max int) []string {
	out := []string{}
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v, ok := bounded(m[1], max); ok {
				out = append(out, v)
			}
		}
	}
	return out
}

// parseCount parses an integer written with optional thousands separators.
func parseCount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

// truncateRunes cuts s to at most n characters.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
