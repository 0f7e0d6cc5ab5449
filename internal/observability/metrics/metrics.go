// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dicere"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Analysis pipeline metrics
	AnalysesTotal    prometheus.Counter
	AnalysesSuccess  prometheus.Counter
	AnalysesFailed   *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	FluencyScore     prometheus.Histogram

	// Upstream transcription service metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamErrors   *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	PollsTotal       *prometheus.CounterVec
	JobsCompleted    prometheus.Counter
	JobsFailed       prometheus.Counter

	// Audio metrics
	AudioBytesUploaded prometheus.Counter
	AudioUploadsTotal  prometheus.Counter

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		AnalysesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of analysis runs started",
		}),
		AnalysesSuccess: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_success_total",
			Help:      "Total number of analysis runs that produced a report",
		}),
		AnalysesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_failed_total",
			Help:      "Total number of failed analysis runs",
		}, []string{"stage"}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		FluencyScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fluency_score",
			Help:      "Distribution of composite fluency scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),

		UpstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total requests to the transcription service",
		}, []string{"operation"}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Total failed requests to the transcription service",
		}, []string{"operation"}),
		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_latency_seconds",
			Help:      "Transcription service request latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"operation"}),
		PollsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Total job status polls by observed status",
		}, []string{"status"}),
		JobsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_completed_total",
			Help:      "Total transcription jobs that reached completed",
		}),
		JobsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_failed_total",
			Help:      "Total transcription jobs that reached error",
		}),

		AudioBytesUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_uploaded_total",
			Help:      "Total audio bytes uploaded to the transcription service",
		}),
		AudioUploadsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_uploads_total",
			Help:      "Total audio uploads",
		}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordAnalysisStart records a new analysis run starting.
func (m *Metrics) RecordAnalysisStart() {
	m.AnalysesTotal.Inc()
}

// RecordAnalysisSuccess records a completed run with its duration and score.
func (m *Metrics) RecordAnalysisSuccess(durationSeconds float64, score int) {
	m.AnalysesSuccess.Inc()
	m.AnalysisDuration.Observe(durationSeconds)
	m.FluencyScore.Observe(float64(score))
}

// RecordAnalysisFailure records a failed run at the given pipeline stage.
func (m *Metrics) RecordAnalysisFailure(stage string, durationSeconds float64) {
	m.AnalysesFailed.WithLabelValues(stage).Inc()
	m.AnalysisDuration.Observe(durationSeconds)
}

// RecordUpstreamRequest records one request to the transcription service.
func (m *Metrics) RecordUpstreamRequest(operation string, err error, latencySeconds float64) {
	m.UpstreamRequests.WithLabelValues(operation).Inc()
	m.UpstreamLatency.WithLabelValues(operation).Observe(latencySeconds)
	if err != nil {
		m.UpstreamErrors.WithLabelValues(operation).Inc()
	}
}

// RecordPoll records one status poll with the status it observed.
func (m *Metrics) RecordPoll(status string) {
	m.PollsTotal.WithLabelValues(status).Inc()
}

// RecordJobCompleted records a transcription job reaching completed.
func (m *Metrics) RecordJobCompleted() {
	m.JobsCompleted.Inc()
}

// RecordJobFailed records a transcription job reaching error.
func (m *Metrics) RecordJobFailed() {
	m.JobsFailed.Inc()
}

// RecordAudioUploaded records one upload and its payload size.
func (m *Metrics) RecordAudioUploaded(bytes int) {
	m.AudioBytesUploaded.Add(float64(bytes))
	m.AudioUploadsTotal.Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic).Inc()
	}
}
