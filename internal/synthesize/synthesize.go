package synthesize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/terminalsin/tunedub/internal/markup"
)

// lifecycle state of a remote synthesis job
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// remote synthesis job. A job returned with StatusProcessing after the poll
// budget is exhausted is not a failure; callers re-check later by ID.
type Job struct {
	ID       string
	Status   Status
	AudioURL string
}

// Synthesizer converts a markup document into audio via a remote provider.
type Synthesizer interface {
	// Submit creates a synthesis job and returns without waiting for it.
	Submit(ctx context.Context, doc markup.Document, voiceID string) (*Job, error)

	// CheckStatus fetches the current state of a previously submitted job.
	CheckStatus(ctx context.Context, jobID string) (*Job, error)

	// Synthesize submits a job and polls until it completes or the poll
	// budget is exhausted, in which case the job is returned with
	// StatusProcessing and no audio reference.
	Synthesize(ctx context.Context, doc markup.Document, voiceID string) (*Job, error)

	// Stream performs a single blocking call that yields the audio bytes.
	Stream(ctx context.Context, doc markup.Document, voiceID string) ([]byte, error)
}

// poll loop policy
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:    time.Second,
		MaxAttempts: 30,
	}
}

var ErrEmptyAudio = errors.New("no audio bytes generated")

// upstream failure classification
type ErrorKind string

const (
	ErrorKindAuth      ErrorKind = "auth"
	ErrorKindNotFound  ErrorKind = "not_found"
	ErrorKindRateLimit ErrorKind = "rate_limit"
	ErrorKindServer    ErrorKind = "server"
	ErrorKindNetwork   ErrorKind = "network"
)

// classified error from the synthesis provider
type ProviderError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf(
			"synthesis provider error (%s, status %d): %s",
			e.Kind, e.StatusCode, e.Message,
		)
	}
	return fmt.Sprintf("synthesis provider error (%s): %s", e.Kind, e.Message)
}

func classifyStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrorKindAuth
	case code == http.StatusNotFound:
		return ErrorKindNotFound
	case code == http.StatusTooManyRequests:
		return ErrorKindRateLimit
	case code >= 500:
		return ErrorKindServer
	default:
		return ErrorKindServer
	}
}

func networkError(err error) *ProviderError {
	return &ProviderError{
		Kind:    ErrorKindNetwork,
		Message: err.Error(),
	}
}
