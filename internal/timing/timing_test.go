package timing

import (
	"errors"
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyzeEmptyInput(t *testing.T) {
	analysis, err := Analyze(nil)
	if err != nil {
		t.Fatalf("Analyze(nil) returned error: %v", err)
	}
	if analysis.AverageSpeakingRate != 0 {
		t.Errorf("expected rate 0, got %f", analysis.AverageSpeakingRate)
	}
	if len(analysis.SignificantPauses) != 0 ||
		len(analysis.SpeechSegments) != 0 ||
		len(analysis.FastSections) != 0 ||
		len(analysis.SlowSections) != 0 {
		t.Error("expected empty collections for empty input")
	}
}

func TestAnalyzeSinglePause(t *testing.T) {
	words := []Word{
		{Word: "hello", Start: 0, End: 1, Confidence: 0.9},
		{Word: "world", Start: 1.5, End: 2, Confidence: 0.9},
	}

	analysis, err := Analyze(words)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if len(analysis.SignificantPauses) != 1 {
		t.Fatalf("expected 1 pause, got %d", len(analysis.SignificantPauses))
	}
	pause := analysis.SignificantPauses[0]
	if !approxEqual(pause.Duration, 0.5) {
		t.Errorf("expected pause duration 0.5, got %f", pause.Duration)
	}
	if pause.AfterWord != "hello" || pause.Position != 0 {
		t.Errorf("unexpected pause: %+v", pause)
	}

	if len(analysis.SpeechSegments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(analysis.SpeechSegments))
	}
	for i, seg := range analysis.SpeechSegments {
		if seg.WordsCount != 1 {
			t.Errorf("segment %d: expected 1 word, got %d", i, seg.WordsCount)
		}
	}
}

func TestAnalyzeNoPauses(t *testing.T) {
	words := []Word{
		{Word: "one", Start: 0, End: 0.5},
		{Word: "two", Start: 0.7, End: 1.2},
		{Word: "three", Start: 1.5, End: 2.0},
	}

	analysis, err := Analyze(words)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if len(analysis.SignificantPauses) != 0 {
		t.Errorf("expected no pauses, got %d", len(analysis.SignificantPauses))
	}
	if len(analysis.SpeechSegments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(analysis.SpeechSegments))
	}
	seg := analysis.SpeechSegments[0]
	if seg.WordsCount != 3 || seg.StartIndex != 0 || seg.EndIndex != 2 {
		t.Errorf("unexpected segment: %+v", seg)
	}
	if seg.Text != "one two three" {
		t.Errorf("unexpected segment text: %q", seg.Text)
	}
}

// segments must partition the full index range with no gaps or overlaps
func TestSegmentsPartitionWordSequence(t *testing.T) {
	tests := []struct {
		name  string
		words []Word
	}{
		{
			name: "no pauses",
			words: []Word{
				{Word: "a", Start: 0, End: 0.2},
				{Word: "b", Start: 0.3, End: 0.5},
			},
		},
		{
			name: "pauses between every word",
			words: []Word{
				{Word: "a", Start: 0, End: 0.2},
				{Word: "b", Start: 1, End: 1.2},
				{Word: "c", Start: 2, End: 2.2},
			},
		},
		{
			name: "mixed gaps",
			words: []Word{
				{Word: "a", Start: 0, End: 0.2},
				{Word: "b", Start: 0.25, End: 0.5},
				{Word: "c", Start: 1.5, End: 1.8},
				{Word: "d", Start: 1.9, End: 2.1},
				{Word: "e", Start: 3.0, End: 3.4},
			},
		},
		{
			name: "single word",
			words: []Word{
				{Word: "solo", Start: 0, End: 0.4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := Analyze(tt.words)
			if err != nil {
				t.Fatalf("Analyze returned error: %v", err)
			}

			next := 0
			for i, seg := range analysis.SpeechSegments {
				if seg.StartIndex != next {
					t.Errorf(
						"segment %d starts at %d, expected %d",
						i, seg.StartIndex, next,
					)
				}
				if seg.EndIndex < seg.StartIndex {
					t.Errorf("segment %d has end before start: %+v", i, seg)
				}
				if seg.WordsCount != seg.EndIndex-seg.StartIndex+1 {
					t.Errorf("segment %d word count mismatch: %+v", i, seg)
				}
				next = seg.EndIndex + 1
			}
			if next != len(tt.words) {
				t.Errorf(
					"segments cover indices up to %d, want %d",
					next, len(tt.words),
				)
			}
		})
	}
}

func TestAnalyzeSingleWordSegmentRate(t *testing.T) {
	// zero-duration word must not divide by zero
	words := []Word{
		{Word: "hi", Start: 1, End: 1},
	}

	analysis, err := Analyze(words)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(analysis.SpeechSegments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(analysis.SpeechSegments))
	}
	if analysis.SpeechSegments[0].SpeakingRate != 0 {
		t.Errorf(
			"expected sentinel rate 0, got %f",
			analysis.SpeechSegments[0].SpeakingRate,
		)
	}
}

func TestAnalyzeFastSlowClassification(t *testing.T) {
	// overall: 8 words over 8s -> 1 word/sec average.
	// first segment: 4 words in 1s (fast), second: 4 words in 6.5s (slow).
	words := []Word{
		{Word: "w1", Start: 0.0, End: 0.25},
		{Word: "w2", Start: 0.25, End: 0.5},
		{Word: "w3", Start: 0.5, End: 0.75},
		{Word: "w4", Start: 0.75, End: 1.0},
		{Word: "w5", Start: 1.5, End: 3.0},
		{Word: "w6", Start: 3.1, End: 5.0},
		{Word: "w7", Start: 5.1, End: 7.0},
		{Word: "w8", Start: 7.1, End: 8.0},
	}

	analysis, err := Analyze(words)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if len(analysis.FastSections) != 1 {
		t.Fatalf("expected 1 fast section, got %d", len(analysis.FastSections))
	}
	if analysis.FastSections[0].StartIndex != 0 {
		t.Errorf("unexpected fast section: %+v", analysis.FastSections[0])
	}
	if len(analysis.SlowSections) != 1 {
		t.Fatalf("expected 1 slow section, got %d", len(analysis.SlowSections))
	}
	if analysis.SlowSections[0].StartIndex != 4 {
		t.Errorf("unexpected slow section: %+v", analysis.SlowSections[0])
	}
}

func TestAnalyzeRejectsMalformedTiming(t *testing.T) {
	tests := []struct {
		name  string
		words []Word
	}{
		{
			name: "end before start",
			words: []Word{
				{Word: "bad", Start: 2, End: 1},
			},
		},
		{
			name: "non-monotonic starts",
			words: []Word{
				{Word: "a", Start: 5, End: 6},
				{Word: "b", Start: 1, End: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Analyze(tt.words)
			if !errors.Is(err, ErrInvalidTiming) {
				t.Errorf("expected ErrInvalidTiming, got %v", err)
			}
		})
	}
}

func TestAnalyzeUsesPunctuatedWordInOutput(t *testing.T) {
	words := []Word{
		{Word: "hello", PunctuatedWord: "Hello,", Start: 0, End: 1},
		{Word: "world", PunctuatedWord: "world.", Start: 2, End: 3},
	}

	analysis, err := Analyze(words)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if analysis.SignificantPauses[0].AfterWord != "Hello," {
		t.Errorf(
			"expected punctuated word in pause, got %q",
			analysis.SignificantPauses[0].AfterWord,
		)
	}
	if analysis.SpeechSegments[0].Text != "Hello," {
		t.Errorf(
			"expected punctuated segment text, got %q",
			analysis.SpeechSegments[0].Text,
		)
	}
}

func TestAnalyzeWithConfigCustomThreshold(t *testing.T) {
	words := []Word{
		{Word: "a", Start: 0, End: 1},
		{Word: "b", Start: 1.4, End: 2},
	}

	// gap of 0.4 is a pause at the default threshold but not at 0.5
	cfg := DefaultConfig()
	cfg.PauseThreshold = 0.5

	analysis, err := AnalyzeWithConfig(words, cfg)
	if err != nil {
		t.Fatalf("AnalyzeWithConfig returned error: %v", err)
	}
	if len(analysis.SignificantPauses) != 0 {
		t.Errorf(
			"expected no pauses at 0.5s threshold, got %d",
			len(analysis.SignificantPauses),
		)
	}
}
