package mock

import (
	"context"
	"testing"
	"time"

	"github.com/b3at1/Dicere/internal/models"
)

func TestAdapter_ReturnsCompletedTranscript(t *testing.T) {
	a := New()

	tr, err := a.Transcribe(context.Background(), []byte("audio"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Status != models.StatusCompleted {
		t.Errorf("expected completed status, got %s", tr.Status)
	}
	if tr.Words == nil {
		t.Error("expected non-nil words slice")
	}
}

func TestAdapter_CyclesThroughSamples(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < len(DefaultTranscripts); i++ {
		a := New()
		a.delay = 0
		tr, err := a.Transcribe(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		seen[tr.ID] = true
	}
	if len(seen) != len(DefaultTranscripts) {
		t.Errorf("expected %d distinct transcripts, got %d", len(DefaultTranscripts), len(seen))
	}
}

func TestAdapter_RespectsCancellation(t *testing.T) {
	a := New()
	a.delay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Transcribe(ctx, nil); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestNewWithTranscript(t *testing.T) {
	want := &models.Transcript{ID: "custom", Status: models.StatusCompleted, Words: []models.Word{}}
	a := NewWithTranscript(want)

	got, err := a.Transcribe(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("expected the provided transcript back, got %+v", got)
	}
}
