// Package pipeline sequences one analysis run: validate the audio payload,
// drive the transcription job to completion, score the transcript, and emit
// the finished report as an event.
package pipeline

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/b3at1/Dicere/internal/events"
	"github.com/b3at1/Dicere/internal/models"
	"github.com/b3at1/Dicere/internal/observability/metrics"
	"github.com/b3at1/Dicere/internal/service/scoring"
	"github.com/b3at1/Dicere/internal/service/transcriber"
)

// ErrEmptyAudio indicates the request carried no audio payload.
var ErrEmptyAudio = errors.New("no audio payload provided")

// ErrUnsupportedAudio indicates the payload is not recognizable as binary
// audio content.
var ErrUnsupportedAudio = errors.New("payload is not recognizable as audio content")

// Orchestrator runs analyses. Each run is independent; the orchestrator holds
// no per-run state, so concurrent runs need no coordination.
type Orchestrator struct {
	transcriber transcriber.Adapter
	publisher   *events.Publisher
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// New creates an orchestrator over the given transcription adapter and
// report publisher.
func New(adapter transcriber.Adapter, publisher *events.Publisher) *Orchestrator {
	return &Orchestrator{
		transcriber: adapter,
		publisher:   publisher,
		metrics:     metrics.DefaultMetrics,
		logger:      log.With().Str("component", "pipeline").Logger(),
	}
}

// Run performs one full analysis. On any failure no partial report is
// returned. Cancellation and deadlines come from ctx; the transcription wait
// is the only long-running step.
func (o *Orchestrator) Run(ctx context.Context, audio []byte) (*models.FluencyReport, error) {
	jobID := uuid.NewString()
	logger := o.logger.With().Str("jobId", jobID).Logger()
	start := time.Now()
	o.metrics.RecordAnalysisStart()

	if err := validateAudio(audio); err != nil {
		o.metrics.RecordAnalysisFailure("input", time.Since(start).Seconds())
		logger.Warn().Err(err).Msg("Rejected audio payload")
		return nil, err
	}

	logger.Info().Int("bytes", len(audio)).Msg("Starting analysis")

	transcript, err := o.transcriber.Transcribe(ctx, audio)
	if err != nil {
		o.metrics.RecordAnalysisFailure("transcription", time.Since(start).Seconds())
		logger.Error().Err(err).Msg("Transcription failed")
		return nil, err
	}

	report := scoring.Analyze(transcript)

	// Report publication is best-effort; a broker outage must not lose the
	// caller's result.
	if err := o.publisher.PublishReport(ctx, jobID, report); err != nil {
		logger.Warn().Err(err).Msg("Failed to publish report event")
	}

	o.metrics.RecordAnalysisSuccess(time.Since(start).Seconds(), report.Score)
	logger.Info().
		Int("score", report.Score).
		Float64("wpm", report.WPM).
		Int("fillers", report.FillersDetected).
		Int("longPauses", report.LongPauses).
		Dur("elapsed", time.Since(start)).
		Msg("Analysis completed")

	return report, nil
}

// validateAudio rejects empty payloads and payloads whose sniffed content
// type is clearly not binary audio (e.g. JSON or HTML posted by mistake).
func validateAudio(audio []byte) error {
	if len(audio) == 0 {
		return ErrEmptyAudio
	}
	contentType := http.DetectContentType(audio)
	switch {
	case strings.HasPrefix(contentType, "audio/"),
		strings.HasPrefix(contentType, "video/"),
		contentType == "application/octet-stream":
		return nil
	}
	return ErrUnsupportedAudio
}
