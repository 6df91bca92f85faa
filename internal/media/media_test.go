package media

import (
	"testing"
	"time"
)

func TestPlanReconciliation(t *testing.T) {
	tests := []struct {
		name     string
		video    time.Duration
		audio    time.Duration
		strategy Strategy
		pad      time.Duration
	}{
		{
			name:     "audio longer pads video",
			video:    10 * time.Second,
			audio:    15 * time.Second,
			strategy: StrategyPadVideo,
			pad:      5 * time.Second,
		},
		{
			name:     "audio shorter muxes directly",
			video:    10 * time.Second,
			audio:    8 * time.Second,
			strategy: StrategyDirectMux,
		},
		{
			name:     "equal durations mux directly",
			video:    10 * time.Second,
			audio:    10 * time.Second,
			strategy: StrategyDirectMux,
		},
		{
			name:     "sub-second overhang still pads",
			video:    10 * time.Second,
			audio:    10*time.Second + 250*time.Millisecond,
			strategy: StrategyPadVideo,
			pad:      250 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanReconciliation(tt.video, tt.audio)
			if plan.Strategy != tt.strategy {
				t.Errorf("strategy = %s, want %s", plan.Strategy, tt.strategy)
			}
			if plan.PadDuration != tt.pad {
				t.Errorf("pad = %v, want %v", plan.PadDuration, tt.pad)
			}
		})
	}
}

func TestStrategyString(t *testing.T) {
	if StrategyPadVideo.String() != "pad_video" {
		t.Errorf("unexpected name: %s", StrategyPadVideo)
	}
	if StrategyDirectMux.String() != "direct_mux" {
		t.Errorf("unexpected name: %s", StrategyDirectMux)
	}
}

func TestIsMediaFile(t *testing.T) {
	tests := []struct {
		path  string
		video bool
		audio bool
	}{
		{"clip.mp4", true, false},
		{"clip.MOV", true, false},
		{"track.wav", false, true},
		{"track.mp3", false, true},
		{"notes.txt", false, false},
		{"archive.zip", false, false},
	}

	for _, tt := range tests {
		if got := IsVideoFile(tt.path); got != tt.video {
			t.Errorf("IsVideoFile(%q) = %v, want %v", tt.path, got, tt.video)
		}
		if got := IsAudioFile(tt.path); got != tt.audio {
			t.Errorf("IsAudioFile(%q) = %v, want %v", tt.path, got, tt.audio)
		}
		if got := IsMediaFile(tt.path); got != (tt.video || tt.audio) {
			t.Errorf("IsMediaFile(%q) = %v", tt.path, got)
		}
	}
}

func TestTailLines(t *testing.T) {
	out := tailLines("a\nb\nc\nd\ne\nf", 3)
	if out != "d\ne\nf" {
		t.Errorf("unexpected tail: %q", out)
	}

	out = tailLines("only", 5)
	if out != "only" {
		t.Errorf("unexpected tail: %q", out)
	}
}
