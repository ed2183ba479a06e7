package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics of the interview server
type Metrics struct {
	// Question resolution
	QuestionResolutions *prometheus.CounterVec
	MalformedDocuments  prometheus.Counter

	// Transcription proxy
	TranscriptionRequests prometheus.Counter
	TranscriptionFailures *prometheus.CounterVec
	TranscriptionDuration prometheus.Histogram
	UploadSize            prometheus.Histogram

	// HTTP API
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		QuestionResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_question_resolutions_total",
			Help: "Prompt list resolutions by the source that produced them",
		}, []string{"source"}),
		MalformedDocuments: factory.NewCounter(prometheus.CounterOpts{
			Name: "interview_questions_document_malformed_total",
			Help: "Prompt documents that were present but could not be used",
		}),

		TranscriptionRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "interview_transcription_requests_total",
			Help: "Total number of transcription requests relayed",
		}),
		TranscriptionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_transcription_failures_total",
			Help: "Failed transcription requests by error code",
		}, []string{"code"}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "interview_transcription_duration_seconds",
			Help:    "Duration of transcription calls",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~1.7 minutes
		}),
		UploadSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "interview_upload_size_bytes",
			Help:    "Size of uploaded answer recordings",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 12), // 16KB to ~32MB
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "interview_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// RecordResolution records which source produced the prompt list
func (m *Metrics) RecordResolution(source string) {
	if m == nil {
		return
	}
	m.QuestionResolutions.WithLabelValues(source).Inc()
}

// RecordMalformedDocument records a prompt document that fell through
func (m *Metrics) RecordMalformedDocument() {
	if m == nil {
		return
	}
	m.MalformedDocuments.Inc()
}

// RecordTranscription records one finished transcription call
func (m *Metrics) RecordTranscription(seconds float64, uploadBytes int64, failureCode string) {
	if m == nil {
		return
	}
	m.TranscriptionRequests.Inc()
	m.TranscriptionDuration.Observe(seconds)
	m.UploadSize.Observe(float64(uploadBytes))
	if failureCode != "" {
		m.TranscriptionFailures.WithLabelValues(failureCode).Inc()
	}
}
