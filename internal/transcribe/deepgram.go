package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/terminalsin/tunedub/internal/timing"
)

const defaultDeepgramBaseURL = "https://api.deepgram.com/v1"

// implements Transcriber using the Deepgram prerecorded listen API
type DeepgramTranscriber struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	options    Options
}

// subset of the Deepgram prerecorded response we consume
type deepgramResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
				Words      []struct {
					Word           string  `json:"word"`
					Start          float64 `json:"start"`
					End            float64 `json:"end"`
					Confidence     float64 `json:"confidence"`
					PunctuatedWord string  `json:"punctuated_word"`
				} `json:"words"`
				Paragraphs struct {
					Paragraphs []struct {
						Sentences []struct {
							Text  string  `json:"text"`
							Start float64 `json:"start"`
							End   float64 `json:"end"`
						} `json:"sentences"`
					} `json:"paragraphs"`
				} `json:"paragraphs"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func NewDeepgramTranscriber(
	apiKey string,
	opts Options,
) (*DeepgramTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	return &DeepgramTranscriber{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		apiKey:     apiKey,
		baseURL:    defaultDeepgramBaseURL,
		options:    opts,
	}, nil
}

// transcribes single audio file
func (t *DeepgramTranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*Result, error) {
	audio, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer audio.Close()

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		t.listenURL(),
		audio,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+t.apiKey)
	req.Header.Set("Content-Type", mimeTypeForAudio(audioPath))

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"transcription failed: status %d: %s",
			resp.StatusCode,
			truncate(string(body), 200),
		)
	}

	return t.parseResponse(body)
}

func (t *DeepgramTranscriber) listenURL() string {
	model := t.options.Model
	if model == "" {
		model = "nova-2"
	}
	language := t.options.Language
	if language == "" {
		language = "en-US"
	}

	query := url.Values{}
	query.Set("model", model)
	query.Set("language", language)
	query.Set("smart_format", fmt.Sprintf("%t", t.options.SmartFormat))
	query.Set("punctuate", fmt.Sprintf("%t", t.options.Punctuate))
	query.Set("diarize", fmt.Sprintf("%t", t.options.Diarize))
	query.Set("utterances", "true")
	query.Set("paragraphs", "true")

	return t.baseURL + "/listen?" + query.Encode()
}

func (t *DeepgramTranscriber) parseResponse(body []byte) (*Result, error) {
	var parsed deepgramResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse transcription response: %w", err)
	}

	if len(parsed.Results.Channels) == 0 {
		return nil, fmt.Errorf("no transcription results received")
	}
	channel := parsed.Results.Channels[0]
	if len(channel.Alternatives) == 0 {
		return nil, fmt.Errorf("no transcription alternatives found")
	}
	alt := channel.Alternatives[0]

	words := make([]timing.Word, 0, len(alt.Words))
	for _, w := range alt.Words {
		words = append(words, timing.Word{
			Word:           w.Word,
			Start:          w.Start,
			End:            w.End,
			Confidence:     w.Confidence,
			PunctuatedWord: w.PunctuatedWord,
		})
	}

	var sentences []timing.Sentence
	for _, paragraph := range alt.Paragraphs.Paragraphs {
		for _, s := range paragraph.Sentences {
			sentences = append(sentences, timing.Sentence{
				Text:  s.Text,
				Start: s.Start,
				End:   s.End,
				// sentence-level word alignment is not supplied by the
				// provider; an empty word list is an accepted degradation
				Words: []timing.Word{},
			})
		}
	}

	return &Result{
		Transcript: alt.Transcript,
		Words:      words,
		Sentences:  sentences,
		Language:   t.options.Language,
		Duration: time.Duration(
			parsed.Metadata.Duration * float64(time.Second),
		),
		Confidence: averageConfidence(words),
	}, nil
}

func mimeTypeForAudio(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a", ".mp4":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".webm":
		return "audio/webm"
	default:
		return "application/octet-stream"
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func (t *DeepgramTranscriber) Close() error {
	return nil
}
