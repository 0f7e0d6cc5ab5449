// Package transcriber defines the interface for asynchronous transcription
// providers and the error taxonomy they surface.
package transcriber

import (
	"context"
	"errors"
	"fmt"

	"github.com/b3at1/Dicere/internal/models"
)

// Adapter runs one transcription job end to end against an external service:
// upload the audio, submit the job, and wait for a terminal status.
type Adapter interface {
	// Transcribe blocks until the job completes, fails, or ctx is done.
	// The returned transcript always has a completed status.
	Transcribe(ctx context.Context, audio []byte) (*models.Transcript, error)
}

// ErrMissingAPIKey indicates the provider credential is absent. Fatal, never
// retried.
var ErrMissingAPIKey = errors.New("transcription API key is not configured")

// ErrPollTimeout indicates the job was still pending when the configured
// polling deadline elapsed. The remote job may still finish later.
var ErrPollTimeout = errors.New("transcription job still pending past deadline")

// UpstreamError is a non-success HTTP response from the transcription
// service. The response body is captured verbatim for diagnostics.
type UpstreamError struct {
	Operation string // "upload", "submit" or "poll"
	Status    int
	Body      string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: upstream http %d: %s", e.Operation, e.Status, e.Body)
}

// TranscriptionError is a job that reached the terminal error status, carrying
// the upstream error message.
type TranscriptionError struct {
	JobID   string
	Message string
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription job %s failed: %s", e.JobID, e.Message)
}
