// SPDX-License-Identifier: Apache-2.0

package clinical

import (
	"strings"
)

const (
	classificationWindow = 3000

	keywordScore = 1.0
	patternScore = 1.5

	belowMinPagesPenalty = 0.3
	aboveMaxPagesPenalty = 0.5

	minConfidence = 0.2

	textbookFallbackPages      = 50
	textbookFallbackConfidence = 0.6
	caseReportFallbackConf     = 0.4
)

// Classifier scores a document against every registered type signature.
type Classifier struct {
	registry *Registry
}

// NewClassifier creates a Classifier over the given registry.
// A nil registry selects DefaultRegistry.
func NewClassifier(registry *Registry) *Classifier {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Classifier{registry: registry}
}

// Classify returns the best matching type for text and its confidence.
// Only the first 3000 characters are inspected.
func (c *Classifier) Classify(text string, pageCount int) ClassificationResult {
	window := strings.ToLower(headRunes(text, classificationWindow))

	best := ClassificationResult{Type: Unknown}
	found := false
	for _, sig := range c.registry.signatures {
		if sig.Type == Unknown {
			continue
		}
		score, ok := scoreSignature(sig, window, pageCount)
		if !ok {
			continue
		}
		// strict comparison keeps the earlier registration on ties
		if !found || score > best.Confidence {
			best = ClassificationResult{Type: sig.Type, Confidence: score}
			found = true
		}
	}
	if found && best.Confidence > minConfidence {
		best.Confidence = clamp01(best.Confidence)
		return best
	}

	switch {
	case pageCount > textbookFallbackPages:
		return ClassificationResult{Type: Textbook, Confidence: textbookFallbackConfidence}
	case strings.Contains(window, "patient") && strings.Contains(window, "diagnosis"):
		return ClassificationResult{Type: CaseReport, Confidence: caseReportFallbackConf}
	}
	return ClassificationResult{Type: Unknown, Confidence: 0}
}

// scoreSignature reports the normalized score of one signature and whether
// anything matched at all.
func scoreSignature(sig TypeSignature, window string, pageCount int) (float64, bool) {
	score := 0.0
	matches := 0
	for _, kw := range sig.Keywords {
		if strings.Contains(window, kw) {
			score += keywordScore
			matches++
		}
	}
	for _, re := range sig.Patterns {
		if re.MatchString(window) {
			score += patternScore
			matches++
		}
	}
	if matches == 0 {
		return 0, false
	}

	if sig.MinPages > 0 && pageCount < sig.MinPages {
		score *= belowMinPagesPenalty
	}
	if sig.MaxPages > 0 && pageCount > sig.MaxPages {
		score *= aboveMaxPagesPenalty
	}

	score /= float64(len(sig.Keywords) + len(sig.Patterns))
	return score * sig.Weight, true
}

func headRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
