// Package assemblyai implements the transcriber adapter against the
// AssemblyAI v2 REST API: raw-byte upload, job submission with fixed analysis
// options, and status polling until the job reaches a terminal state.
package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/b3at1/Dicere/internal/models"
	"github.com/b3at1/Dicere/internal/observability/metrics"
	"github.com/b3at1/Dicere/internal/service/transcriber"
)

const (
	// DefaultBaseURL is the AssemblyAI v2 API root.
	DefaultBaseURL = "https://api.assemblyai.com/v2"

	// DefaultPollInterval is the fixed cadence for job status checks.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultPrimaryModel and DefaultFallbackModel are the speech models
	// requested on submission, in preference order.
	DefaultPrimaryModel  = "universal-3-pro"
	DefaultFallbackModel = "universal-2"
)

// Config holds the AssemblyAI client configuration.
type Config struct {
	APIKey        string
	BaseURL       string
	PollInterval  time.Duration
	PollTimeout   time.Duration // zero means wait until the job is terminal
	PrimaryModel  string
	FallbackModel string
}

// Client drives one transcription job through upload, submit and poll.
// It implements transcriber.Adapter. None of the remote calls is retried; a
// single failure anywhere surfaces immediately.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// New creates an AssemblyAI client, filling unset config fields with
// defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PrimaryModel == "" {
		cfg.PrimaryModel = DefaultPrimaryModel
	}
	if cfg.FallbackModel == "" {
		cfg.FallbackModel = DefaultFallbackModel
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     log.With().Str("component", "assemblyai").Logger(),
		metrics:    metrics.DefaultMetrics,
	}
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type submitRequest struct {
	AudioURL          string   `json:"audio_url"`
	Disfluencies      bool     `json:"disfluencies"`
	SpeakerLabels     bool     `json:"speaker_labels"`
	SpeechModels      []string `json:"speech_models"`
	SentimentAnalysis bool     `json:"sentiment_analysis"`
}

type submitResponse struct {
	ID string `json:"id"`
}

// transcriptEnvelope is the poll response: the transcript fields plus the
// upstream error message present on failed jobs.
type transcriptEnvelope struct {
	models.Transcript
	Error string `json:"error"`
}

// Transcribe runs the full job lifecycle and returns the completed
// transcript.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (*models.Transcript, error) {
	if c.cfg.APIKey == "" {
		return nil, transcriber.ErrMissingAPIKey
	}

	uploadURL, err := c.Upload(ctx, audio)
	if err != nil {
		return nil, err
	}

	jobID, err := c.Submit(ctx, uploadURL)
	if err != nil {
		return nil, err
	}

	return c.AwaitResult(ctx, jobID)
}

// Upload sends raw audio bytes to the upload endpoint and returns the
// temporary audio URL.
func (c *Client) Upload(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/upload", bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("authorization", c.cfg.APIKey)
	req.Header.Set("content-type", "application/octet-stream")

	var out uploadResponse
	if err := c.do(req, "upload", &out); err != nil {
		return "", err
	}

	c.metrics.RecordAudioUploaded(len(audio))
	c.logger.Debug().Int("bytes", len(audio)).Msg("Audio uploaded")
	return out.UploadURL, nil
}

// Submit requests transcription of an uploaded audio URL with the fixed
// analysis options and returns the job id.
func (c *Client) Submit(ctx context.Context, uploadURL string) (string, error) {
	payload, err := json.Marshal(submitRequest{
		AudioURL:          uploadURL,
		Disfluencies:      true, // required for um/uh detection downstream
		SpeakerLabels:     false,
		SpeechModels:      []string{c.cfg.PrimaryModel, c.cfg.FallbackModel},
		SentimentAnalysis: true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("authorization", c.cfg.APIKey)
	req.Header.Set("content-type", "application/json")

	var out submitResponse
	if err := c.do(req, "submit", &out); err != nil {
		return "", err
	}

	c.logger.Info().Str("jobId", out.ID).Msg("Transcription job submitted")
	return out.ID, nil
}

// AwaitResult polls the job status on a fixed interval until the job is
// terminal. The loop itself is unbounded; cancellation comes from ctx, and a
// configured PollTimeout converts a still-pending job into ErrPollTimeout.
func (c *Client) AwaitResult(ctx context.Context, jobID string) (*models.Transcript, error) {
	if c.cfg.PollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.PollTimeout)
		defer cancel()
	}

	for {
		env, err := c.getTranscript(ctx, jobID)
		if err != nil {
			// The deadline can also fire mid-request.
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: job %s", transcriber.ErrPollTimeout, jobID)
			}
			return nil, err
		}

		switch env.Status {
		case models.StatusCompleted:
			if env.Words == nil {
				return nil, fmt.Errorf("malformed poll response for job %s: completed without words", jobID)
			}
			c.metrics.RecordJobCompleted()
			return &env.Transcript, nil
		case models.StatusError:
			c.metrics.RecordJobFailed()
			return nil, &transcriber.TranscriptionError{JobID: jobID, Message: env.Error}
		}

		// Any other status is non-terminal; keep polling.
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: job %s", transcriber.ErrPollTimeout, jobID)
			}
			return nil, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

func (c *Client) getTranscript(ctx context.Context, jobID string) (*transcriptEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/transcript/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("authorization", c.cfg.APIKey)

	var env transcriptEnvelope
	if err := c.do(req, "poll", &env); err != nil {
		return nil, err
	}
	if env.Status == "" {
		return nil, fmt.Errorf("malformed poll response for job %s: missing status", jobID)
	}
	c.metrics.RecordPoll(string(env.Status))
	return &env, nil
}

// do executes a request, maps non-2xx responses to UpstreamError with the
// body captured, and decodes the JSON response into out.
func (c *Client) do(req *http.Request, operation string, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamRequest(operation, err, time.Since(start).Seconds())
		return fmt.Errorf("%s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		upErr := &transcriber.UpstreamError{Operation: operation, Status: resp.StatusCode, Body: string(body)}
		c.metrics.RecordUpstreamRequest(operation, upErr, time.Since(start).Seconds())
		c.logger.Error().
			Str("operation", operation).
			Int("status", resp.StatusCode).
			Msg("Upstream request failed")
		return upErr
	}
	c.metrics.RecordUpstreamRequest(operation, nil, time.Since(start).Seconds())

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s response decode: %w", operation, err)
	}
	return nil
}
