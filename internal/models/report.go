// Package models defines the data structures for transcripts and fluency reports.
package models

// TranscriptStatus is the lifecycle state of a transcription job as reported
// by the external service.
type TranscriptStatus string

const (
	StatusQueued     TranscriptStatus = "queued"
	StatusProcessing TranscriptStatus = "processing"
	StatusCompleted  TranscriptStatus = "completed"
	StatusError      TranscriptStatus = "error"
)

// Terminal reports whether polling should stop at this status.
func (s TranscriptStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Word is a single recognized word with millisecond timestamps.
// Words arrive chronologically sorted and non-overlapping from the service.
type Word struct {
	Text       string  `json:"text"`
	StartMs    int64   `json:"start"`
	EndMs      int64   `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
}

// SentimentLabel is the per-sentence sentiment classification.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// SentimentSentence is one sentence as segmented by the external service,
// carrying its sentiment label.
type SentimentSentence struct {
	Text      string         `json:"text,omitempty"`
	StartMs   int64          `json:"start,omitempty"`
	EndMs     int64          `json:"end,omitempty"`
	Sentiment SentimentLabel `json:"sentiment"`
}

// Transcript is the terminal artifact of a transcription job. It is only
// handed to the analyzer once Status is completed.
type Transcript struct {
	ID                 string              `json:"id"`
	Status             TranscriptStatus    `json:"status"`
	Words              []Word              `json:"words"`
	Text               string              `json:"text"`
	AudioDurationSec   float64             `json:"audio_duration"`
	SentimentSentences []SentimentSentence `json:"sentiment_analysis_results"`
}

// PauseEvent records one inter-word silence exceeding the long-pause
// threshold. AfterWordIndex refers to the position in Transcript.Words.
type PauseEvent struct {
	AfterWordIndex int     `json:"after_word_index"`
	DurationSec    float64 `json:"duration"`
}

// CategoryScores holds the four 0-100 sub-scores of a fluency report.
type CategoryScores struct {
	Pacing    int `json:"pacing"`
	Fillers   int `json:"fillers"`
	Pauses    int `json:"pauses"`
	Sentiment int `json:"sentiment"`
}

// CategoryFeedback holds the human-readable feedback per category.
type CategoryFeedback struct {
	Pacing    string `json:"pacing"`
	Fillers   string `json:"fillers"`
	Pauses    string `json:"pauses"`
	Sentiment string `json:"sentiment"`
}

// SentimentStats summarizes the sentence-level sentiment counts.
type SentimentStats struct {
	NegativeSentences int `json:"negative_sentences"`
	TotalSentences    int `json:"total_sentences"`
}

// FluencyReport is the output of one analysis call. It is constructed once
// and owned by the caller after return.
type FluencyReport struct {
	Score            int              `json:"score"`
	WPM              float64          `json:"wpm"`
	FillersDetected  int              `json:"fillers_detected"`
	LongPauses       int              `json:"long_pauses"`
	CategoryScores   CategoryScores   `json:"category_scores"`
	CategoryFeedback CategoryFeedback `json:"category_feedback"`
	SentimentStats   SentimentStats   `json:"sentiment_stats"`
	Feedback         string           `json:"feedback"`
	TranscriptText   string           `json:"transcript_text"`
	Words            []Word           `json:"words"`
	DetailedPauses   []PauseEvent     `json:"detailed_pauses"`
}
