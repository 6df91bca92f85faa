package timing

import (
	"errors"
	"fmt"
	"strings"
)

// single transcribed word with start/end offsets in seconds
type Word struct {
	Word           string  `json:"word"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Confidence     float64 `json:"confidence"`
	PunctuatedWord string  `json:"punctuatedWord,omitempty"`
}

// Display returns the punctuated form when the provider supplied one.
func (w Word) Display() string {
	if w.PunctuatedWord != "" {
		return w.PunctuatedWord
	}
	return w.Word
}

// sentence-level grouping; the word list may be empty when the provider
// does not supply sentence-level alignment
type Sentence struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

// gap between two consecutive words that exceeds the pause threshold
type Pause struct {
	AfterWord string  `json:"afterWord"`
	Duration  float64 `json:"duration"`
	Position  int     `json:"position"`
}

// maximal run of words with no internal pause above the threshold
type Segment struct {
	StartIndex   int     `json:"startIndex"`
	EndIndex     int     `json:"endIndex"`
	WordsCount   int     `json:"wordsCount"`
	Duration     float64 `json:"duration"`
	SpeakingRate float64 `json:"speakingRate"`
	Text         string  `json:"text"`
}

// aggregate timing analysis of a word sequence
type Analysis struct {
	AverageSpeakingRate float64   `json:"averageSpeakingRate"`
	SignificantPauses   []Pause   `json:"significantPauses"`
	SpeechSegments      []Segment `json:"speechSegments"`
	FastSections        []Segment `json:"fastSections"`
	SlowSections        []Segment `json:"slowSections"`
}

// analysis policy knobs
type Config struct {
	PauseThreshold float64 // inter-word gap in seconds that counts as a pause
	FastMultiplier float64 // segments faster than avg*FastMultiplier are fast
	SlowMultiplier float64 // segments slower than avg*SlowMultiplier are slow
}

func DefaultConfig() Config {
	return Config{
		PauseThreshold: 0.3,
		FastMultiplier: 1.2,
		SlowMultiplier: 0.8,
	}
}

var ErrInvalidTiming = errors.New("invalid timing data")

// Analyze computes the timing analysis with default thresholds.
func Analyze(words []Word) (*Analysis, error) {
	return AnalyzeWithConfig(words, DefaultConfig())
}

// AnalyzeWithConfig is a pure function of the word sequence. Words must be
// ordered by start time with end >= start; empty input yields a zero-valued
// analysis rather than an error.
func AnalyzeWithConfig(words []Word, cfg Config) (*Analysis, error) {
	if cfg.PauseThreshold <= 0 {
		cfg.PauseThreshold = DefaultConfig().PauseThreshold
	}
	if cfg.FastMultiplier <= 0 {
		cfg.FastMultiplier = DefaultConfig().FastMultiplier
	}
	if cfg.SlowMultiplier <= 0 {
		cfg.SlowMultiplier = DefaultConfig().SlowMultiplier
	}

	analysis := &Analysis{
		SignificantPauses: []Pause{},
		SpeechSegments:    []Segment{},
		FastSections:      []Segment{},
		SlowSections:      []Segment{},
	}

	if len(words) == 0 {
		return analysis, nil
	}

	if err := validateWords(words); err != nil {
		return nil, err
	}

	analysis.AverageSpeakingRate = rate(
		len(words),
		words[len(words)-1].End-words[0].Start,
	)

	for i := 0; i < len(words)-1; i++ {
		gap := words[i+1].Start - words[i].End
		if gap > cfg.PauseThreshold {
			analysis.SignificantPauses = append(analysis.SignificantPauses, Pause{
				AfterWord: words[i].Display(),
				Duration:  gap,
				Position:  i,
			})
		}
	}

	// partition the word index space at each pause; the word before the
	// pause closes its segment, the word after opens the next
	segmentStart := 0
	for _, pause := range analysis.SignificantPauses {
		analysis.SpeechSegments = append(
			analysis.SpeechSegments,
			buildSegment(words, segmentStart, pause.Position),
		)
		segmentStart = pause.Position + 1
	}
	if segmentStart < len(words) {
		analysis.SpeechSegments = append(
			analysis.SpeechSegments,
			buildSegment(words, segmentStart, len(words)-1),
		)
	}

	for _, seg := range analysis.SpeechSegments {
		if seg.SpeakingRate > analysis.AverageSpeakingRate*cfg.FastMultiplier {
			analysis.FastSections = append(analysis.FastSections, seg)
		}
		if seg.SpeakingRate < analysis.AverageSpeakingRate*cfg.SlowMultiplier {
			analysis.SlowSections = append(analysis.SlowSections, seg)
		}
	}

	return analysis, nil
}

func buildSegment(words []Word, start, end int) Segment {
	span := words[start : end+1]

	texts := make([]string, len(span))
	for i, w := range span {
		texts[i] = w.Display()
	}

	duration := span[len(span)-1].End - span[0].Start

	return Segment{
		StartIndex:   start,
		EndIndex:     end,
		WordsCount:   len(span),
		Duration:     duration,
		SpeakingRate: rate(len(span), duration),
		Text:         strings.Join(texts, " "),
	}
}

// rate guards against near-zero durations (single-word segments) by
// returning a sentinel rate of 0
func rate(wordCount int, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(wordCount) / duration
}

func validateWords(words []Word) error {
	for i, w := range words {
		if w.End < w.Start {
			return fmt.Errorf(
				"%w: word %d (%q) ends at %.3fs before it starts at %.3fs",
				ErrInvalidTiming, i, w.Word, w.End, w.Start,
			)
		}
		if i > 0 && w.Start < words[i-1].Start {
			return fmt.Errorf(
				"%w: word %d (%q) starts at %.3fs before previous word at %.3fs",
				ErrInvalidTiming, i, w.Word, w.Start, words[i-1].Start,
			)
		}
	}
	return nil
}
