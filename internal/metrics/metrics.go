// SPDX-License-Identifier: Apache-2.0

// Package metrics records batch counters for the node exporter textfile
// collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/medlit/clinical-pdf-intel/internal/clinical"
)

const namespace = "clinicalpdf"

// Recorder owns a private registry with the batch metrics.
type Recorder struct {
	registry   *prometheus.Registry
	processed  *prometheus.CounterVec
	failed     prometheus.Counter
	chunks     *prometheus.CounterVec
	confidence prometheus.Histogram
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "Documents processed successfully, by classified type.",
		}, []string{"document_type"}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_failed_total",
			Help:      "Documents that could not be processed.",
		}),
		chunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_emitted_total",
			Help:      "Text and image chunks emitted, by document type.",
		}, []string{"document_type"}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classification_confidence",
			Help:      "Confidence of the selected document type.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}),
	}
	r.registry.MustRegister(r.processed, r.failed, r.chunks, r.confidence)
	return r
}

// Processed records a successfully processed document.
func (r *Recorder) Processed(t clinical.DocumentType, confidence float64, chunks int) {
	r.processed.WithLabelValues(string(t)).Inc()
	r.chunks.WithLabelValues(string(t)).Add(float64(chunks))
	r.confidence.Observe(confidence)
}

// Failed records a failed document.
func (r *Recorder) Failed() {
	r.failed.Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the current values in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
