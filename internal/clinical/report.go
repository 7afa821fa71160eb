// SPDX-License-Identifier: Apache-2.0

package clinical

import "slices"

// ProcessedDocument records a successfully processed document.
type ProcessedDocument struct {
	File       string       `json:"file"`
	Type       DocumentType `json:"type"`
	Confidence float64      `json:"confidence"`
	Folder     string       `json:"folder,omitempty"`
	Chunks     int          `json:"chunks"`
}

// FailedDocument records a document that could not be processed.
type FailedDocument struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Report accumulates per-document outcomes for one batch run. It is a value
// owned by the caller: each Add returns the extended report.
type Report struct {
	Processed []ProcessedDocument `json:"documents"`
	Failed    []FailedDocument    `json:"failed"`
}

// AddProcessed returns r with a success outcome appended.
func (r Report) AddProcessed(doc ProcessedDocument) Report {
	r.Processed = append(slices.Clip(r.Processed), doc)
	return r
}

// AddFailed returns r with a failure outcome appended.
func (r Report) AddFailed(file string, err error) Report {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.Failed = append(slices.Clip(r.Failed), FailedDocument{File: file, Error: msg})
	return r
}

// Merge returns r followed by the outcomes of other. Each list is copied
// once, so folding a whole batch costs time linear in its size.
func (r Report) Merge(other Report) Report {
	r.Processed = slices.Concat(r.Processed, other.Processed)
	r.Failed = slices.Concat(r.Failed, other.Failed)
	return r
}

// Summary is the per-batch aggregate handed to reporting.
type Summary struct {
	TotalProcessed int                  `json:"total_processed"`
	ByType         map[DocumentType]int `json:"by_type"`
	TotalFailed    int                  `json:"total_failed"`
}

// Summary aggregates the outcomes recorded so far.
func (r Report) Summary() Summary {
	s := Summary{
		TotalProcessed: len(r.Processed),
		ByType:         make(map[DocumentType]int),
		TotalFailed:    len(r.Failed),
	}
	for _, d := range r.Processed {
		s.ByType[d.Type]++
	}
	return s
}

// TypesInOrder returns the document types present in the report, in the
// order they were first seen.
func (r Report) TypesInOrder() []DocumentType {
	seen := make(map[DocumentType]bool)
	var out []DocumentType
	for _, d := range r.Processed {
		if !seen[d.Type] {
			seen[d.Type] = true
			out = append(out, d.Type)
		}
	}
	return out
}

// ByType returns the processed documents of type t in recorded order.
func (r Report) ByType(t DocumentType) []ProcessedDocument {
	var out []ProcessedDocument
	for _, d := range r.Processed {
		if d.Type == t {
			out = append(out, d)
		}
	}
	return out
}
