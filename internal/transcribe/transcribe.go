package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/terminalsin/tunedub/internal/timing"
)

// transcription result with word-level timing
type Result struct {
	Transcript string            `json:"transcript"`
	Words      []timing.Word     `json:"words"`
	Sentences  []timing.Sentence `json:"sentences,omitempty"`
	Language   string            `json:"language,omitempty"`
	Duration   time.Duration     `json:"duration"`
	Confidence float64           `json:"confidence"` // average word confidence
}

// interface for audio transcription
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderDeepgram Provider = "deepgram"
	ProviderOpenAI   Provider = "openai"
)

// transcription options
type Options struct {
	Language    string // BCP-47 language tag of the audio (default en-US)
	Model       string
	Punctuate   bool
	Diarize     bool
	SmartFormat bool
}

// defaults matching the fixed option bundle the pipeline submits
func DefaultOptions() Options {
	return Options{
		Language:    "en-US",
		Punctuate:   true,
		Diarize:     true,
		SmartFormat: true,
	}
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderDeepgram:
		return NewDeepgramTranscriber(apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func averageConfidence(words []timing.Word) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Confidence
	}
	return sum / float64(len(words))
}
