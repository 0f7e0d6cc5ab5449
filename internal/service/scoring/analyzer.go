// Package scoring turns a completed transcript into a fluency report.
// All analysis is pure: no I/O, no shared state, identical input yields an
// identical report. The thresholds and penalties below are part of the
// scoring contract and must not drift.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/b3at1/Dicere/internal/models"
)

const (
	// LongPauseThresholdSec is the inter-word gap above which a silence
	// counts as a long pause.
	LongPauseThresholdSec = 1.5

	// PausePenalty is deducted per long pause.
	PausePenalty = 15

	// MinWPM and MaxWPM bound the target pacing band.
	MinWPM = 130
	MaxWPM = 170

	// ActiveSpeechBufferMs pads the first-word-to-last-word window so short
	// clips don't report an artificially high WPM.
	ActiveSpeechBufferMs = 1000

	// NegativeRatioGate is the fraction of negative sentences above which
	// the sentiment penalty kicks in.
	NegativeRatioGate = 0.1

	heavyFillerPenalty   = 5
	likeFillerPenalty    = 3
	defaultFillerPenalty = 2
)

// fillerVocabulary is the fixed set of disfluency tokens, matched per word
// after normalization. Note "you know" is listed for parity with the scoring
// contract even though single-token matching can never produce it.
var fillerVocabulary = map[string]bool{
	"um": true, "umm": true, "uh": true, "huh": true, "uhh": true,
	"like": true, "hmm": true, "mhm": true, "you know": true,
	"actually": true, "basically": true, "right": true, "well": true,
}

// Analyze computes the fluency report for a completed transcript.
func Analyze(t *models.Transcript) *models.FluencyReport {
	fillers := detectFillers(t.Words)
	pauses := detectPauses(t.Words)

	wpm, wpmScore, wpmFeedback := scorePacing(t)
	fillerScore, fillerFeedback := scoreFillers(fillers)
	pauseScore, pauseFeedback := scorePauses(pauses)
	sentimentScore, sentimentFeedback, sentimentStats := scoreSentiment(t.SentimentSentences)

	overall := (wpmScore + fillerScore + pauseScore + sentimentScore) / 4
	feedback := strings.TrimSpace(wpmFeedback + " " + fillerFeedback + " " + pauseFeedback + " " + sentimentFeedback)

	return &models.FluencyReport{
		Score:           overall,
		WPM:             math.Round(wpm*10) / 10,
		FillersDetected: len(fillers),
		LongPauses:      len(pauses),
		CategoryScores: models.CategoryScores{
			Pacing:    wpmScore,
			Fillers:   fillerScore,
			Pauses:    pauseScore,
			Sentiment: sentimentScore,
		},
		CategoryFeedback: models.CategoryFeedback{
			Pacing:    wpmFeedback,
			Fillers:   fillerFeedback,
			Pauses:    pauseFeedback,
			Sentiment: sentimentFeedback,
		},
		SentimentStats: sentimentStats,
		Feedback:       feedback,
		TranscriptText: t.Text,
		Words:          t.Words,
		DetailedPauses: pauses,
	}
}

// normalizeToken lower-cases a word and strips periods and commas so that
// "Um," and "um" match the same vocabulary entry.
func normalizeToken(text string) string {
	clean := strings.ToLower(text)
	clean = strings.ReplaceAll(clean, ".", "")
	return strings.ReplaceAll(clean, ",", "")
}

func detectFillers(words []models.Word) []models.Word {
	var detected []models.Word
	for _, w := range words {
		if fillerVocabulary[normalizeToken(w.Text)] {
			detected = append(detected, w)
		}
	}
	return detected
}

func detectPauses(words []models.Word) []models.PauseEvent {
	var pauses []models.PauseEvent
	for i := 0; i < len(words)-1; i++ {
		gapSec := float64(words[i+1].StartMs-words[i].EndMs) / 1000.0
		if gapSec > LongPauseThresholdSec {
			pauses = append(pauses, models.PauseEvent{
				AfterWordIndex: i,
				DurationSec:    gapSec,
			})
		}
	}
	return pauses
}

// scorePacing computes WPM over the active-speech window (first word start to
// last word end, plus the breathing buffer). The raw clip duration is only
// used when there are no word timings at all.
func scorePacing(t *models.Transcript) (wpm float64, score int, feedback string) {
	durationSec := t.AudioDurationSec
	if len(t.Words) > 0 {
		adjustedMs := (t.Words[len(t.Words)-1].EndMs - t.Words[0].StartMs) + ActiveSpeechBufferMs
		if adjustedMs > 0 {
			durationSec = float64(adjustedMs) / 1000.0
		}
	}

	durationMin := 1.0
	if durationSec > 0 {
		durationMin = durationSec / 60.0
	}
	wpm = float64(len(t.Words)) / durationMin

	raw := 100.0
	feedback = "Perfect pacing."
	if wpm < MinWPM {
		raw = math.Max(0, 100-(MinWPM-wpm))
		feedback = fmt.Sprintf("Your pace is too slow. Aim for %d-%d WPM for the clearest speech.", MinWPM, MaxWPM)
	} else if wpm > MaxWPM {
		raw = math.Max(0, 100-(wpm-MaxWPM))
		feedback = fmt.Sprintf("Your pace is too fast. Slow down to %d-%d WPM for the clearest speech.", MinWPM, MaxWPM)
	}
	return wpm, int(math.Floor(raw)), feedback
}

// scoreFillers applies a weighted penalty: um/uh are the strongest hesitation
// signals, "like" sits in between, everything else costs the base rate.
func scoreFillers(detected []models.Word) (score int, feedback string) {
	penalty := 0
	for _, w := range detected {
		switch normalizeToken(w.Text) {
		case "um", "uh":
			penalty += heavyFillerPenalty
		case "like":
			penalty += likeFillerPenalty
		default:
			penalty += defaultFillerPenalty
		}
	}

	score = 100 - penalty
	if score < 0 {
		score = 0
	}

	switch {
	case score == 100:
		feedback = "Excellent! No filler words detected."
	case score > 80:
		feedback = "A few filler words were detected, try to reduce usage of them."
	default:
		feedback = fmt.Sprintf("High filler usage detected (%d found).", len(detected))
	}
	return score, feedback
}

func scorePauses(pauses []models.PauseEvent) (score int, feedback string) {
	// Re-filter against the threshold before penalizing; with the detection
	// threshold identical this counts every detected pause.
	penaltyCount := 0
	for _, p := range pauses {
		if p.DurationSec > LongPauseThresholdSec {
			penaltyCount++
		}
	}

	score = 100 - penaltyCount*PausePenalty
	if score < 0 {
		score = 0
	}

	switch {
	case score == 100 && len(pauses) == 0:
		feedback = "Flow is continuous, great job!"
	case score == 100:
		feedback = "A few pauses are natural, but be cognizant of them."
	case score > 70:
		feedback = "Awkward pauses detected, aim to talk with confidence."
	default:
		feedback = fmt.Sprintf("Minimize long silences (>%vs) to maintain engagement.", LongPauseThresholdSec)
	}
	return score, feedback
}

func scoreSentiment(sentences []models.SentimentSentence) (score int, feedback string, stats models.SentimentStats) {
	negative := 0
	total := len(sentences)
	score = 100

	if total > 0 {
		for _, s := range sentences {
			if s.Sentiment == models.SentimentNegative {
				negative++
			}
		}
		negRatio := float64(negative) / float64(total)
		if negRatio > NegativeRatioGate {
			score = 100 - int(negRatio*100)
			if score < 0 {
				score = 0
			}
		}
	}

	switch {
	case score >= 90:
		feedback = "Tone is positive and professional."
	case score > 70:
		feedback = "Tone is mostly okay, but some negativity detected."
	default:
		feedback = "Watch your tone - significant negative sentiment detected."
	}

	stats = models.SentimentStats{NegativeSentences: negative, TotalSentences: total}
	return score, feedback, stats
}
