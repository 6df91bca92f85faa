package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const deepgramFixture = `{
  "metadata": {"duration": 3.5},
  "results": {
    "channels": [{
      "alternatives": [{
        "transcript": "Hello world. How are you?",
        "confidence": 0.98,
        "words": [
          {"word": "hello", "start": 0.0, "end": 0.4, "confidence": 0.99, "punctuated_word": "Hello"},
          {"word": "world", "start": 0.5, "end": 0.9, "confidence": 0.97, "punctuated_word": "world."},
          {"word": "how", "start": 1.5, "end": 1.8, "confidence": 0.95, "punctuated_word": "How"},
          {"word": "are", "start": 1.9, "end": 2.1, "confidence": 0.96, "punctuated_word": "are"},
          {"word": "you", "start": 2.2, "end": 2.5, "confidence": 0.98, "punctuated_word": "you?"}
        ],
        "paragraphs": {
          "paragraphs": [{
            "sentences": [
              {"text": "Hello world.", "start": 0.0, "end": 0.9},
              {"text": "How are you?", "start": 1.5, "end": 2.5}
            ]
          }]
        }
      }]
    }]
  }
}`

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.wav")
	if err := os.WriteFile(path, []byte("RIFF....WAVE"), 0o644); err != nil {
		t.Fatalf("failed to write temp audio: %v", err)
	}
	return path
}

func TestDeepgramTranscribeParsesWordsAndSentences(t *testing.T) {
	var gotAuth, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(deepgramFixture))
		},
	))
	defer server.Close()

	transcriber, err := NewDeepgramTranscriber("test-key", DefaultOptions())
	if err != nil {
		t.Fatalf("NewDeepgramTranscriber error: %v", err)
	}
	transcriber.baseURL = server.URL

	result, err := transcriber.Transcribe(context.Background(), writeTempAudio(t))
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}

	if gotAuth != "Token test-key" {
		t.Errorf("unexpected auth header: %q", gotAuth)
	}
	for _, param := range []string{"model=nova-2", "punctuate=true", "paragraphs=true"} {
		if !strings.Contains(gotQuery, param) {
			t.Errorf("query missing %q: %s", param, gotQuery)
		}
	}

	if result.Transcript != "Hello world. How are you?" {
		t.Errorf("unexpected transcript: %q", result.Transcript)
	}
	if len(result.Words) != 5 {
		t.Fatalf("expected 5 words, got %d", len(result.Words))
	}
	if result.Words[0].PunctuatedWord != "Hello" {
		t.Errorf("unexpected punctuated word: %q", result.Words[0].PunctuatedWord)
	}
	if len(result.Sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(result.Sentences))
	}
	if result.Duration != 3500*time.Millisecond {
		t.Errorf("unexpected duration: %v", result.Duration)
	}

	wantConfidence := (0.99 + 0.97 + 0.95 + 0.96 + 0.98) / 5
	if diff := result.Confidence - wantConfidence; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("unexpected confidence: %f, want %f", result.Confidence, wantConfidence)
	}
}

func TestDeepgramTranscribeSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"err_msg":"invalid credentials"}`, http.StatusUnauthorized)
		},
	))
	defer server.Close()

	transcriber, err := NewDeepgramTranscriber("bad-key", DefaultOptions())
	if err != nil {
		t.Fatalf("NewDeepgramTranscriber error: %v", err)
	}
	transcriber.baseURL = server.URL

	_, err = transcriber.Transcribe(context.Background(), writeTempAudio(t))
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status code in error, got: %v", err)
	}
}

func TestDeepgramTranscribeRejectsEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results":{"channels":[]}}`))
		},
	))
	defer server.Close()

	transcriber, err := NewDeepgramTranscriber("test-key", DefaultOptions())
	if err != nil {
		t.Fatalf("NewDeepgramTranscriber error: %v", err)
	}
	transcriber.baseURL = server.URL

	if _, err := transcriber.Transcribe(context.Background(), writeTempAudio(t)); err == nil {
		t.Error("expected error for empty channel list")
	}
}

func TestFactoryReturnsDeepgramTranscriber(t *testing.T) {
	ctx := context.Background()
	transcriber, err := Factory(ctx, ProviderDeepgram, "fake-key", DefaultOptions())
	if err != nil {
		t.Fatalf("Factory(ProviderDeepgram) returned error: %v", err)
	}
	if _, ok := transcriber.(*DeepgramTranscriber); !ok {
		t.Errorf("expected *DeepgramTranscriber, got %T", transcriber)
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	ctx := context.Background()
	if _, err := Factory(ctx, Provider("whisper-cpp"), "fake-key", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
