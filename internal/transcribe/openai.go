package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/terminalsin/tunedub/internal/timing"
)

// implements Transcriber using OpenAI Audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// verbose_json response structure from Whisper
type whisperVerboseResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Words    []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word", "segment"},
	}

	if t.options.Language != "" {
		// whisper expects a bare ISO 639-1 code
		params.Language = openai.String(baseLanguage(t.options.Language))
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	return t.parseVerboseJSONResponse(resp.RawJSON())
}

func (t *OpenAITranscriber) parseVerboseJSONResponse(
	rawJSON string,
) (*Result, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var verboseResp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verboseResp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	transcript := strings.TrimSpace(verboseResp.Text)
	if transcript == "" {
		return nil, fmt.Errorf("no transcript in response")
	}

	words := make([]timing.Word, 0, len(verboseResp.Words))
	for _, w := range verboseResp.Words {
		words = append(words, timing.Word{
			Word:  strings.TrimSpace(w.Word),
			Start: w.Start,
			End:   w.End,
			// whisper does not report per-word confidence
			Confidence: 1.0,
		})
	}

	sentences := make([]timing.Sentence, 0, len(verboseResp.Segments))
	for _, seg := range verboseResp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		sentences = append(sentences, timing.Sentence{
			Text:  text,
			Start: seg.Start,
			End:   seg.End,
			Words: []timing.Word{},
		})
	}

	return &Result{
		Transcript: transcript,
		Words:      words,
		Sentences:  sentences,
		Language:   verboseResp.Language,
		Duration: time.Duration(
			verboseResp.Duration * float64(time.Second),
		),
		Confidence: averageConfidence(words),
	}, nil
}

func baseLanguage(tag string) string {
	if i := strings.IndexByte(tag, '-'); i > 0 {
		return strings.ToLower(tag[:i])
	}
	return strings.ToLower(tag)
}

func (t *OpenAITranscriber) Close() error {
	return nil
}
