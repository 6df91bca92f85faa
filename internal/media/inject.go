package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	ffmpegbin "github.com/terminalsin/tunedub/internal/ffmpeg"
)

// how the remux reconciles video and audio durations
type Strategy int

const (
	// re-encode the video with its last frame held until the audio ends
	StrategyPadVideo Strategy = iota

	// copy the video stream untouched and trim to the shorter track
	StrategyDirectMux
)

func (s Strategy) String() string {
	switch s {
	case StrategyPadVideo:
		return "pad_video"
	case StrategyDirectMux:
		return "direct_mux"
	default:
		return "unknown"
	}
}

// reconciliation decision for one inject run
type Plan struct {
	Strategy    Strategy
	PadDuration time.Duration
}

// PlanReconciliation decides how to combine the tracks. When the new audio
// outlasts the video, the video is extended by freezing its final frame for
// the difference; otherwise the streams are muxed directly.
func PlanReconciliation(videoDuration, audioDuration time.Duration) Plan {
	if audioDuration > videoDuration {
		return Plan{
			Strategy:    StrategyPadVideo,
			PadDuration: audioDuration - videoDuration,
		}
	}
	return Plan{Strategy: StrategyDirectMux}
}

// outcome of an audio injection
type InjectResult struct {
	OutputPath    string
	VideoDuration time.Duration
	AudioDuration time.Duration
	Extended      bool
	Plan          Plan
	Steps         []string
}

// replaces the audio track of a video with the given audio file. Durations
// are probed first so the output never cuts the new audio short.
func (p *DefaultProcessor) InjectAudio(
	ctx context.Context,
	videoPath, audioPath, outputPath string,
) (*InjectResult, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	videoDuration, err := p.Duration(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe video duration: %w", err)
	}
	audioDuration, err := p.Duration(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe audio duration: %w", err)
	}

	plan := PlanReconciliation(videoDuration, audioDuration)
	result := &InjectResult{
		OutputPath:    outputPath,
		VideoDuration: videoDuration,
		AudioDuration: audioDuration,
		Extended:      plan.Strategy == StrategyPadVideo,
		Plan:          plan,
	}
	result.Steps = append(result.Steps, fmt.Sprintf(
		"Probed durations (video: %.2fs, audio: %.2fs)",
		videoDuration.Seconds(), audioDuration.Seconds(),
	))

	args := []string{
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v",
		"-map", "1:a",
	}

	switch plan.Strategy {
	case StrategyPadVideo:
		pad := plan.PadDuration.Seconds()
		args = append(args,
			"-c:v", "libx264",
			"-c:a", "aac",
			"-shortest",
			"-vf", fmt.Sprintf("tpad=stop_mode=clone:stop_duration=%.3f", pad),
			"-avoid_negative_ts", "make_zero",
		)
		result.Steps = append(result.Steps, fmt.Sprintf(
			"Video extended by %.2fs to fit the new audio", pad,
		))
	case StrategyDirectMux:
		args = append(args,
			"-c:v", "copy",
			"-c:a", "aac",
			"-shortest",
		)
		result.Steps = append(result.Steps, "Video stream copied without re-encoding")
	}

	args = append(args, "-y", outputPath)

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// do not leave a truncated output file behind
		_ = os.Remove(outputPath)
		return nil, fmt.Errorf(
			"%w: %v: %s", ErrRemux, err, tailLines(stderr.String(), 5),
		)
	}

	result.Steps = append(result.Steps, "Audio injected into video")
	return result, nil
}

// keeps the last n lines of ffmpeg stderr for error reporting
func tailLines(s string, n int) string {
	lines := bytes.Split(bytes.TrimSpace([]byte(s)), []byte("\n"))
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return string(bytes.Join(lines, []byte("\n")))
}
