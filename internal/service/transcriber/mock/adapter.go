// Package mock provides a canned transcriber for running without API
// credentials. It cycles through sample transcripts with realistic word
// timings, fillers and sentiment so the full scoring path can be exercised
// locally.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/b3at1/Dicere/internal/models"
)

// DefaultTranscripts provides sample completed transcripts for simulation.
var DefaultTranscripts = []*models.Transcript{
	{
		ID:     "mock-1",
		Status: models.StatusCompleted,
		Text:   "Um, I think this product is, like, really useful.",
		Words: []models.Word{
			{Text: "Um,", StartMs: 0, EndMs: 400},
			{Text: "I", StartMs: 500, EndMs: 600},
			{Text: "think", StartMs: 650, EndMs: 950},
			{Text: "this", StartMs: 1000, EndMs: 1250},
			{Text: "product", StartMs: 1300, EndMs: 1800},
			{Text: "is,", StartMs: 1850, EndMs: 2050},
			{Text: "like,", StartMs: 2100, EndMs: 2400},
			{Text: "really", StartMs: 4200, EndMs: 4600},
			{Text: "useful.", StartMs: 4650, EndMs: 5200},
		},
		AudioDurationSec: 6,
		SentimentSentences: []models.SentimentSentence{
			{Sentiment: models.SentimentPositive},
		},
	},
	{
		ID:     "mock-2",
		Status: models.StatusCompleted,
		Text:   "This is terrible and I am very disappointed.",
		Words: []models.Word{
			{Text: "This", StartMs: 0, EndMs: 250},
			{Text: "is", StartMs: 300, EndMs: 450},
			{Text: "terrible", StartMs: 500, EndMs: 1100},
			{Text: "and", StartMs: 1150, EndMs: 1300},
			{Text: "I", StartMs: 1350, EndMs: 1450},
			{Text: "am", StartMs: 1500, EndMs: 1650},
			{Text: "very", StartMs: 1700, EndMs: 2000},
			{Text: "disappointed.", StartMs: 2050, EndMs: 2900},
		},
		AudioDurationSec: 3,
		SentimentSentences: []models.SentimentSentence{
			{Sentiment: models.SentimentNegative},
		},
	},
	{
		ID:               "mock-3",
		Status:           models.StatusCompleted,
		Text:             "",
		Words:            []models.Word{},
		AudioDurationSec: 1,
	},
}

// Adapter implements transcriber.Adapter with canned transcripts. Each call
// returns the next sample, after a short delay standing in for the remote
// job's processing time.
type Adapter struct {
	transcript *models.Transcript
	delay      time.Duration
}

var (
	transcriptCounter int
	counterMu         sync.Mutex
)

// New creates a mock adapter that cycles through the default transcripts.
func New() *Adapter {
	counterMu.Lock()
	idx := transcriptCounter % len(DefaultTranscripts)
	transcriptCounter++
	counterMu.Unlock()

	return &Adapter{
		transcript: DefaultTranscripts[idx],
		delay:      100 * time.Millisecond,
	}
}

// NewWithTranscript creates a mock adapter that always returns the given
// transcript immediately.
func NewWithTranscript(t *models.Transcript) *Adapter {
	return &Adapter{transcript: t}
}

// Transcribe returns the canned transcript once the simulated processing
// delay elapses, or fails early if ctx is done.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte) (*models.Transcript, error) {
	if a.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.delay):
		}
	}
	return a.transcript, nil
}
