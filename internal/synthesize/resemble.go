package synthesize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/terminalsin/tunedub/internal/markup"
)

const (
	defaultResembleBaseURL   = "https://app.resemble.ai/api/v2"
	defaultResembleStreamURL = "https://f.cluster.resemble.ai/stream"
)

// synthesizer options
type Options struct {
	ProjectID      string
	DefaultVoiceID string
	Poll           PollConfig
}

// implements Synthesizer using the Resemble clips API
type ResembleSynthesizer struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	streamURL  string
	options    Options

	// sleep is replaced in tests to avoid real delays
	sleep func(ctx context.Context, d time.Duration) error
}

type resembleClipItem struct {
	UUID     string `json:"uuid"`
	AudioSrc string `json:"audio_src"`
}

type resembleClipResponse struct {
	Item *resembleClipItem `json:"item"`
}

func NewResembleSynthesizer(
	apiKey string,
	opts Options,
) (*ResembleSynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if opts.ProjectID == "" {
		return nil, fmt.Errorf("project ID is required")
	}

	if opts.Poll.Interval <= 0 {
		opts.Poll.Interval = DefaultPollConfig().Interval
	}
	if opts.Poll.MaxAttempts <= 0 {
		opts.Poll.MaxAttempts = DefaultPollConfig().MaxAttempts
	}

	return &ResembleSynthesizer{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		apiKey:     apiKey,
		baseURL:    defaultResembleBaseURL,
		streamURL:  defaultResembleStreamURL,
		options:    opts,
		sleep:      sleepContext,
	}, nil
}

// Submit creates a clip and returns the job without polling.
func (s *ResembleSynthesizer) Submit(
	ctx context.Context,
	doc markup.Document,
	voiceID string,
) (*Job, error) {
	if doc == "" {
		return nil, fmt.Errorf("markup document is required")
	}
	if voiceID == "" {
		voiceID = s.options.DefaultVoiceID
	}
	if voiceID == "" {
		return nil, fmt.Errorf("voice ID is required")
	}

	payload := map[string]any{
		"data": map[string]any{
			"body":         string(doc),
			"voice_uuid":   voiceID,
			"is_public":    false,
			"is_archived":  false,
			"project_uuid": s.options.ProjectID,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode clip request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/clips",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build clip request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, s.providerError(resp)
	}

	var parsed resembleClipResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse clip response: %w", err)
	}
	if parsed.Item == nil || parsed.Item.UUID == "" {
		return nil, fmt.Errorf("unexpected response from synthesis provider")
	}

	job := &Job{ID: parsed.Item.UUID, Status: StatusPending}
	if parsed.Item.AudioSrc != "" {
		job.Status = StatusCompleted
		job.AudioURL = parsed.Item.AudioSrc
	}
	return job, nil
}

// CheckStatus fetches the clip by ID. The clip is considered completed once
// the provider exposes an audio reference for it.
func (s *ResembleSynthesizer) CheckStatus(
	ctx context.Context,
	jobID string,
) (*Job, error) {
	if jobID == "" {
		return nil, fmt.Errorf("job ID is required")
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		s.baseURL+"/clips/"+jobID,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.providerError(resp)
	}

	var parsed resembleClipResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}
	if parsed.Item == nil {
		return nil, &ProviderError{
			Kind:    ErrorKindNotFound,
			Message: "clip not found or invalid response format",
		}
	}

	job := &Job{ID: jobID, Status: StatusProcessing}
	if parsed.Item.AudioSrc != "" {
		job.Status = StatusCompleted
		job.AudioURL = parsed.Item.AudioSrc
	}
	return job, nil
}

// Synthesize submits a clip and polls its status on a fixed interval until
// the audio is available or the attempt budget is exhausted. Exhausting the
// budget is not an error: the job is returned still processing and can be
// re-checked later by ID.
func (s *ResembleSynthesizer) Synthesize(
	ctx context.Context,
	doc markup.Document,
	voiceID string,
) (*Job, error) {
	job, err := s.Submit(ctx, doc, voiceID)
	if err != nil {
		return nil, err
	}
	if job.Status == StatusCompleted {
		return job, nil
	}

	for attempt := 0; attempt < s.options.Poll.MaxAttempts; attempt++ {
		if err := s.sleep(ctx, s.options.Poll.Interval); err != nil {
			return nil, err
		}

		polled, err := s.CheckStatus(ctx, job.ID)
		if err != nil {
			// transient status-check failures consume an attempt but do
			// not abort the loop; the clip may still complete
			continue
		}
		if polled.Status == StatusCompleted && polled.AudioURL != "" {
			return polled, nil
		}
	}

	return &Job{ID: job.ID, Status: StatusProcessing}, nil
}

// Stream performs the blocking streaming call and assembles the chunked
// response into one contiguous buffer. Any failure discards partial audio.
func (s *ResembleSynthesizer) Stream(
	ctx context.Context,
	doc markup.Document,
	voiceID string,
) ([]byte, error) {
	if doc == "" {
		return nil, fmt.Errorf("markup document is required")
	}
	if voiceID == "" {
		voiceID = s.options.DefaultVoiceID
	}
	if voiceID == "" {
		return nil, fmt.Errorf("voice ID is required")
	}

	payload := map[string]any{
		"data":         string(doc),
		"voice_uuid":   voiceID,
		"project_uuid": s.options.ProjectID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stream request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.streamURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build stream request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.providerError(resp)
	}

	// chunks are copied into the accumulator as they arrive; the buffer is
	// only handed to the caller once the stream ends cleanly
	var audio bytes.Buffer
	chunk := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			audio.Write(chunk[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, networkError(err)
		}
	}

	if audio.Len() == 0 {
		return nil, ErrEmptyAudio
	}
	return audio.Bytes(), nil
}

func (s *ResembleSynthesizer) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Token token=%q", s.apiKey))
}

func (s *ResembleSynthesizer) providerError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &ProviderError{
		Kind:       classifyStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    string(bytes.TrimSpace(body)),
	}
}

// DownloadAudio fetches synthesized audio bytes from the reference returned
// by a completed job.
func DownloadAudio(ctx context.Context, audioURL string) ([]byte, error) {
	if audioURL == "" {
		return nil, fmt.Errorf("audio URL is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ProviderError{
			Kind:       classifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Message:    string(bytes.TrimSpace(body)),
		}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}
	return audio, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
