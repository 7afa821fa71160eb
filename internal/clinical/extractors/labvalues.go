// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"regexp"
)

const (
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// LabSeries is a repeated numeric lab value in document order.
type LabSeries struct {
	Values []int  `json:"values"`
	Trend  string `json:"trend,omitempty"`
}

// plausibility is the closed range of accepted values for a series.
type plausibility struct {
	min, max int
}

func (p plausibility) accepts(v int) bool {
	return v >= p.min && v <= p.max
}

var (
	plateletPattern = mustCI(`platelet[s]?\s*[:=]?\s*([\d,]+)`)
	wbcPattern      = mustCI(`(?:WBC|white\s+blood\s+cell)[s]?\s*[:=]?\s*([\d,]+)`)

	plateletRange = plausibility{min: 1000, max: 1000000}
	wbcRange      = plausibility{min: 100, max: 100000}
)

// numericSeries returns every plausible value captured by re, in order.
// Unparseable or out-of-range captures are dropped silently.
func numericSeries(text string, re *regexp.Regexp, window plausibility) []int {
	var values []int
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		v, ok := parseCount(m[1])
		if !ok || !window.accepts(v) {
			continue
		}
		values = append(values, v)
	}
	return values
}

// trendOf compares only the first and last value.
func trendOf(values []int) string {
	if len(values) > 1 && values[len(values)-1] < values[0] {
		return TrendDecreasing
	}
	return TrendStable
}

// PlateletSeries extracts platelet counts with their trend.
func PlateletSeries(text string) *LabSeries {
	values := numericSeries(text, plateletPattern, plateletRange)
	if len(values) == 0 {
		return nil
	}
	return &LabSeries{Values: values, Trend: trendOf(values)}
}

// WBCSeries extracts white cell counts. No trend is reported.
func WBCSeries(text string) *LabSeries {
	values := numericSeries(text, wbcPattern, wbcRange)
	if len(values) == 0 {
		return nil
	}
	return &LabSeries{Values: values}
}
