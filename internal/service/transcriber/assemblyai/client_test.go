package assemblyai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/b3at1/Dicere/internal/models"
	"github.com/b3at1/Dicere/internal/service/transcriber"
)

func testClient(baseURL string) *Client {
	return New(Config{
		APIKey:       "test-key",
		BaseURL:      baseURL,
		PollInterval: 10 * time.Millisecond,
	})
}

func TestClient_Transcribe_FullLifecycle(t *testing.T) {
	var polls int32
	var submitted submitRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("authorization"); got != "test-key" {
			t.Errorf("expected authorization header 'test-key', got %q", got)
		}

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/upload":
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/audio-1"})
		case r.Method == http.MethodPost && r.URL.Path == "/transcript":
			if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
				t.Errorf("failed to decode submit request: %v", err)
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "job-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/transcript/job-1":
			n := atomic.AddInt32(&polls, 1)
			if n <= 2 {
				json.NewEncoder(w).Encode(map[string]string{"status": "processing"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"status":         "completed",
				"text":           "um hello",
				"audio_duration": 2.5,
				"words": []map[string]any{
					{"text": "um", "start": 0, "end": 500},
					{"text": "hello", "start": 600, "end": 1000},
				},
				"sentiment_analysis_results": []map[string]any{
					{"sentiment": "NEUTRAL"},
				},
			})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	start := time.Now()
	tr, err := c.Transcribe(t.Context(), []byte("fake-audio-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two non-terminal polls mean exactly two interval waits before the
	// third, terminal poll.
	if got := atomic.LoadInt32(&polls); got != 3 {
		t.Errorf("expected exactly 3 polls, got %d", got)
	}
	if elapsed := time.Since(start); elapsed < 2*c.cfg.PollInterval {
		t.Errorf("expected at least two poll waits, elapsed %v", elapsed)
	}

	if tr.Status != models.StatusCompleted {
		t.Errorf("expected completed status, got %s", tr.Status)
	}
	if len(tr.Words) != 2 || tr.Words[0].Text != "um" || tr.Words[1].EndMs != 1000 {
		t.Errorf("unexpected words: %+v", tr.Words)
	}
	if tr.Text != "um hello" {
		t.Errorf("unexpected text: %q", tr.Text)
	}
	if tr.AudioDurationSec != 2.5 {
		t.Errorf("unexpected audio duration: %v", tr.AudioDurationSec)
	}
	if len(tr.SentimentSentences) != 1 || tr.SentimentSentences[0].Sentiment != models.SentimentNeutral {
		t.Errorf("unexpected sentiment sentences: %+v", tr.SentimentSentences)
	}

	// Fixed analysis options on submission.
	if !submitted.Disfluencies {
		t.Error("expected disfluencies enabled on submission")
	}
	if submitted.SpeakerLabels {
		t.Error("expected speaker labels disabled on submission")
	}
	if !submitted.SentimentAnalysis {
		t.Error("expected sentiment analysis enabled on submission")
	}
	wantModels := []string{DefaultPrimaryModel, DefaultFallbackModel}
	if len(submitted.SpeechModels) != 2 ||
		submitted.SpeechModels[0] != wantModels[0] ||
		submitted.SpeechModels[1] != wantModels[1] {
		t.Errorf("expected speech models %v, got %v", wantModels, submitted.SpeechModels)
	}
	if submitted.AudioURL != "https://cdn.example/audio-1" {
		t.Errorf("expected audio url from upload, got %q", submitted.AudioURL)
	}
}

func TestClient_Transcribe_MissingAPIKey(t *testing.T) {
	c := New(Config{BaseURL: "http://localhost:0"})

	_, err := c.Transcribe(t.Context(), []byte("audio"))
	if !errors.Is(err, transcriber.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestClient_Upload_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("bad api key"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Upload(t.Context(), []byte("audio"))

	var upstream *transcriber.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Operation != "upload" {
		t.Errorf("expected operation 'upload', got %q", upstream.Operation)
	}
	if upstream.Status != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", upstream.Status)
	}
	if upstream.Body != "bad api key" {
		t.Errorf("expected body captured, got %q", upstream.Body)
	}
}

func TestClient_Submit_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("invalid audio_url"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Submit(t.Context(), "https://cdn.example/audio-1")

	var upstream *transcriber.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Operation != "submit" {
		t.Errorf("expected operation 'submit', got %q", upstream.Operation)
	}
}

func TestClient_AwaitResult_JobError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"status": "error",
			"error":  "audio file is corrupted",
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.AwaitResult(t.Context(), "job-9")

	var jobErr *transcriber.TranscriptionError
	if !errors.As(err, &jobErr) {
		t.Fatalf("expected TranscriptionError, got %v", err)
	}
	if jobErr.JobID != "job-9" {
		t.Errorf("expected job id 'job-9', got %q", jobErr.JobID)
	}
	if jobErr.Message != "audio file is corrupted" {
		t.Errorf("expected upstream error message, got %q", jobErr.Message)
	}
}

func TestClient_AwaitResult_PollTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "processing"})
	}))
	defer srv.Close()

	c := New(Config{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		PollInterval: 10 * time.Millisecond,
		PollTimeout:  35 * time.Millisecond,
	})

	_, err := c.AwaitResult(t.Context(), "job-1")
	if !errors.Is(err, transcriber.ErrPollTimeout) {
		t.Errorf("expected ErrPollTimeout, got %v", err)
	}
}

func TestClient_AwaitResult_UnknownStatusKeepsPolling(t *testing.T) {
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&polls, 1) {
		case 1:
			json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
		case 2:
			// Unrecognized statuses are non-terminal.
			json.NewEncoder(w).Encode(map[string]string{"status": "warming_up"})
		default:
			json.NewEncoder(w).Encode(map[string]any{
				"status": "completed",
				"text":   "",
				"words":  []any{},
			})
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	tr, err := c.AwaitResult(t.Context(), "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.Words) != 0 {
		t.Errorf("expected empty words, got %+v", tr.Words)
	}
	if got := atomic.LoadInt32(&polls); got != 3 {
		t.Errorf("expected 3 polls, got %d", got)
	}
}

func TestClient_AwaitResult_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing status", `{"text": "hello"}`},
		{"completed without words", `{"status": "completed", "text": "hello"}`},
		{"not json", `<html>gateway error</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := testClient(srv.URL)
			if _, err := c.AwaitResult(t.Context(), "job-1"); err == nil {
				t.Error("expected error for malformed response")
			}
		})
	}
}

func TestClient_AwaitResult_Cancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "processing"})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 35*time.Millisecond)
	defer cancel()

	c := testClient(srv.URL)
	_, err := c.AwaitResult(ctx, "job-1")
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	// A caller-imposed deadline also surfaces as a poll timeout.
	if !errors.Is(err, transcriber.ErrPollTimeout) {
		t.Errorf("expected ErrPollTimeout, got %v", err)
	}
}
