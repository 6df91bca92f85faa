package synthesize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/terminalsin/tunedub/internal/markup"
)

const testDoc = markup.Document(`<speak><lang xml:lang="en-us">Hi</lang></speak>`)

func newTestSynthesizer(t *testing.T, server *httptest.Server) *ResembleSynthesizer {
	t.Helper()

	synth, err := NewResembleSynthesizer("test-key", Options{
		ProjectID:      "proj-1",
		DefaultVoiceID: "voice-1",
	})
	if err != nil {
		t.Fatalf("NewResembleSynthesizer error: %v", err)
	}
	synth.baseURL = server.URL
	synth.streamURL = server.URL + "/stream"
	synth.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return synth
}

func TestSynthesizeCompletesWithinBudget(t *testing.T) {
	var statusChecks atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("POST /clips", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"item":{"uuid":"clip-42"}}`))
	})
	mux.HandleFunc("GET /clips/clip-42", func(w http.ResponseWriter, r *http.Request) {
		n := statusChecks.Add(1)
		if n < 5 {
			_, _ = w.Write([]byte(`{"item":{"uuid":"clip-42"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"item":{"uuid":"clip-42","audio_src":"https://audio.example/clip-42.wav"}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	synth := newTestSynthesizer(t, server)
	var sleeps int
	synth.sleep = func(ctx context.Context, d time.Duration) error {
		if d != time.Second {
			t.Errorf("expected 1s poll interval, got %v", d)
		}
		sleeps++
		return nil
	}

	job, err := synth.Synthesize(context.Background(), testDoc, "")
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}

	if job.Status != StatusCompleted {
		t.Errorf("expected completed status, got %s", job.Status)
	}
	if job.AudioURL != "https://audio.example/clip-42.wav" {
		t.Errorf("unexpected audio URL: %q", job.AudioURL)
	}
	if got := statusChecks.Load(); got != 5 {
		t.Errorf("expected exactly 5 status checks, got %d", got)
	}
	if sleeps != 5 {
		t.Errorf("expected 5 sleeps, got %d", sleeps)
	}
}

func TestSynthesizeBudgetExhaustedReturnsProcessing(t *testing.T) {
	var statusChecks atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("POST /clips", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"item":{"uuid":"clip-slow"}}`))
	})
	mux.HandleFunc("GET /clips/clip-slow", func(w http.ResponseWriter, r *http.Request) {
		statusChecks.Add(1)
		_, _ = w.Write([]byte(`{"item":{"uuid":"clip-slow"}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	synth := newTestSynthesizer(t, server)

	job, err := synth.Synthesize(context.Background(), testDoc, "")
	if err != nil {
		t.Fatalf("expected no error for exhausted budget, got %v", err)
	}

	if job.Status != StatusProcessing {
		t.Errorf("expected processing status, got %s", job.Status)
	}
	if job.ID != "clip-slow" {
		t.Errorf("expected job ID for later re-polling, got %q", job.ID)
	}
	if job.AudioURL != "" {
		t.Errorf("expected no audio reference, got %q", job.AudioURL)
	}
	if got := statusChecks.Load(); got != 30 {
		t.Errorf("expected exactly 30 status checks, got %d", got)
	}
}

func TestSynthesizeCancelledContextAbortsPolling(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /clips", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"item":{"uuid":"clip-ctx"}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	synth := newTestSynthesizer(t, server)
	synth.sleep = sleepContext

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := synth.Synthesize(ctx, testDoc, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSubmitClassifiesAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
		},
	))
	defer server.Close()

	synth := newTestSynthesizer(t, server)

	_, err := synth.Submit(context.Background(), testDoc, "")
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	if provErr.Kind != ErrorKindAuth {
		t.Errorf("expected auth error kind, got %s", provErr.Kind)
	}
}

func TestStreamAccumulatesChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			flusher := w.(http.Flusher)
			for i := 0; i < 3; i++ {
				fmt.Fprintf(w, "chunk-%d|", i)
				flusher.Flush()
			}
		},
	))
	defer server.Close()

	synth := newTestSynthesizer(t, server)

	audio, err := synth.Stream(context.Background(), testDoc, "")
	if err != nil {
		t.Fatalf("Stream error: %v", err)
	}
	if string(audio) != "chunk-0|chunk-1|chunk-2|" {
		t.Errorf("chunks assembled out of order: %q", audio)
	}
}

func TestStreamEmptyBodyIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	))
	defer server.Close()

	synth := newTestSynthesizer(t, server)

	if _, err := synth.Stream(context.Background(), testDoc, ""); !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("expected ErrEmptyAudio, got %v", err)
	}
}

func TestStreamClassifiesRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "slow down", http.StatusTooManyRequests)
		},
	))
	defer server.Close()

	synth := newTestSynthesizer(t, server)

	_, err := synth.Stream(context.Background(), testDoc, "")
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	if provErr.Kind != ErrorKindRateLimit {
		t.Errorf("expected rate_limit error kind, got %s", provErr.Kind)
	}
}

func TestCheckStatusNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no such clip", http.StatusNotFound)
		},
	))
	defer server.Close()

	synth := newTestSynthesizer(t, server)

	_, err := synth.CheckStatus(context.Background(), "missing")
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	if provErr.Kind != ErrorKindNotFound {
		t.Errorf("expected not_found error kind, got %s", provErr.Kind)
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorKind
	}{
		{http.StatusUnauthorized, ErrorKindAuth},
		{http.StatusForbidden, ErrorKindAuth},
		{http.StatusNotFound, ErrorKindNotFound},
		{http.StatusTooManyRequests, ErrorKindRateLimit},
		{http.StatusInternalServerError, ErrorKindServer},
		{http.StatusBadGateway, ErrorKindServer},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.code); got != tt.want {
			t.Errorf("classifyStatus(%d) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestSubmitRequiresVoiceID(t *testing.T) {
	synth, err := NewResembleSynthesizer("test-key", Options{ProjectID: "p"})
	if err != nil {
		t.Fatalf("NewResembleSynthesizer error: %v", err)
	}

	if _, err := synth.Submit(context.Background(), testDoc, ""); err == nil {
		t.Error("expected error when no voice ID is configured")
	}
}

func TestSubmitSendsAuthHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"item":{"uuid":"clip-h"}}`))
		},
	))
	defer server.Close()

	synth := newTestSynthesizer(t, server)

	if _, err := synth.Submit(context.Background(), testDoc, ""); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if !strings.Contains(gotAuth, `Token token="test-key"`) {
		t.Errorf("unexpected auth header: %q", gotAuth)
	}
}
