package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/terminalsin/tunedub/internal/logging"
	"github.com/terminalsin/tunedub/internal/markup"
	"github.com/terminalsin/tunedub/internal/media"
	"github.com/terminalsin/tunedub/internal/synthesize"
	"github.com/terminalsin/tunedub/internal/timing"
	"github.com/terminalsin/tunedub/internal/transcribe"
	"github.com/terminalsin/tunedub/internal/translate"
)

// pipeline stage names used to tag failures
type Stage string

const (
	StageExtraction    Stage = "extraction"
	StageTranscription Stage = "transcription"
	StageAnalysis      Stage = "analysis"
	StageMarkup        Stage = "markup"
	StageTranslation   Stage = "translation"
	StageSynthesis     Stage = "synthesis"
	StageInjection     Stage = "injection"
)

// StageError wraps a failure with the stage it occurred in and the step log
// accumulated up to that point.
type StageError struct {
	Stage Stage
	Steps []string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ShouldSkipTranslation reports whether the target language makes the
// translation stage a no-op. English targets and an absent target both skip.
func ShouldSkipTranslation(targetLanguage string) bool {
	switch strings.ToLower(strings.TrimSpace(targetLanguage)) {
	case "", "english", "en":
		return true
	default:
		return false
	}
}

// Orchestrator runs the end-to-end dubbing pipelines. The translator and
// synthesizer are optional; stages whose component is absent are skipped
// where the pipeline allows it.
type Orchestrator struct {
	transcriber transcribe.Transcriber
	generator   markup.Generator
	translator  translate.Translator
	synthesizer synthesize.Synthesizer
	media       media.Processor
	logger      *logging.Logger

	timingConfig timing.Config

	// download fetches completed synthesis audio; replaced in tests
	download func(ctx context.Context, audioURL string) ([]byte, error)
}

// orchestrator components
type Components struct {
	Transcriber  transcribe.Transcriber
	Generator    markup.Generator
	Translator   translate.Translator
	Synthesizer  synthesize.Synthesizer
	Media        media.Processor
	Logger       *logging.Logger
	TimingConfig *timing.Config
}

func New(c Components) (*Orchestrator, error) {
	if c.Generator == nil {
		return nil, fmt.Errorf("markup generator is required")
	}
	if c.Logger == nil {
		c.Logger = logging.NewNopLogger()
	}
	if c.Media == nil {
		c.Media = media.NewProcessor()
	}

	cfg := timing.DefaultConfig()
	if c.TimingConfig != nil {
		cfg = *c.TimingConfig
	}

	return &Orchestrator{
		transcriber:  c.Transcriber,
		generator:    c.Generator,
		translator:   c.Translator,
		synthesizer:  c.Synthesizer,
		media:        c.Media,
		logger:       c.Logger,
		timingConfig: cfg,
		download:     synthesize.DownloadAudio,
	}, nil
}

// result of the text pipeline
type TextResult struct {
	Markup         markup.Document
	TargetLanguage string
	Job            *synthesize.Job
	Steps          []string
}

// result of the audio pipeline
type AudioResult struct {
	Transcription  *transcribe.Result
	Analysis       *timing.Analysis
	Markup         markup.Document
	TargetLanguage string
	Job            *synthesize.Job
	Steps          []string
}

// result of the video pipeline
type VideoResult struct {
	AudioResult
	Inject     *media.InjectResult
	OutputPath string
}

// ProcessText converts plain text into speech markup, optionally translates
// it, and synthesizes audio when a synthesizer is configured.
func (o *Orchestrator) ProcessText(
	ctx context.Context,
	text, targetLanguage, voiceID string,
) (*TextResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &StageError{
			Stage: StageMarkup,
			Err:   fmt.Errorf("input text is empty"),
		}
	}

	result := &TextResult{TargetLanguage: targetLanguage}

	o.logger.Infow("generating speech markup", "chars", len(text))
	doc, err := o.generator.FromText(ctx, text)
	if err != nil {
		return nil, o.fail(StageMarkup, result.Steps, err)
	}
	result.Markup = doc
	result.Steps = append(result.Steps, "SSML markup generated")

	doc, steps, err := o.translateStage(ctx, doc, targetLanguage, result.Steps)
	result.Steps = steps
	if err != nil {
		return nil, err
	}
	result.Markup = doc

	job, steps, err := o.synthesisStage(ctx, doc, voiceID, result.Steps)
	result.Steps = steps
	if err != nil {
		return nil, err
	}
	result.Job = job

	return result, nil
}

// ProcessAudio transcribes an audio file, analyzes its timing, generates
// timing-aware markup, optionally translates, and synthesizes new audio.
func (o *Orchestrator) ProcessAudio(
	ctx context.Context,
	audioPath, targetLanguage, voiceID string,
) (*AudioResult, error) {
	result := &AudioResult{TargetLanguage: targetLanguage}

	if o.transcriber == nil {
		return nil, o.fail(
			StageTranscription,
			result.Steps,
			fmt.Errorf("no transcriber configured"),
		)
	}

	o.logger.Infow("transcribing audio", "path", audioPath)
	transcription, err := o.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, o.fail(StageTranscription, result.Steps, err)
	}
	result.Transcription = transcription
	result.Steps = append(result.Steps, "Audio transcribed")

	analysis, err := timing.AnalyzeWithConfig(transcription.Words, o.timingConfig)
	if err != nil {
		return nil, o.fail(StageAnalysis, result.Steps, err)
	}
	result.Analysis = analysis
	result.Steps = append(result.Steps, fmt.Sprintf(
		"Timing analyzed (%d pauses, %d segments)",
		len(analysis.SignificantPauses), len(analysis.SpeechSegments),
	))

	o.logger.Infow("generating timing-aware markup",
		"words", len(transcription.Words),
	)
	doc, err := o.generator.FromTranscript(
		ctx, transcription.Transcript, transcription.Words, analysis,
	)
	if err != nil {
		return nil, o.fail(StageMarkup, result.Steps, err)
	}
	result.Markup = doc
	result.Steps = append(result.Steps, "SSML markup generated")

	doc, steps, err := o.translateStage(ctx, doc, targetLanguage, result.Steps)
	result.Steps = steps
	if err != nil {
		return nil, err
	}
	result.Markup = doc

	job, steps, err := o.synthesisStage(ctx, doc, voiceID, result.Steps)
	result.Steps = steps
	if err != nil {
		return nil, err
	}
	result.Job = job

	return result, nil
}

// ProcessVideo runs the full dubbing pipeline: extract the audio track, run
// the audio pipeline on it, then inject the synthesized audio back into the
// video with durations reconciled.
func (o *Orchestrator) ProcessVideo(
	ctx context.Context,
	videoPath, targetLanguage, voiceID, outputPath string,
) (*VideoResult, error) {
	result := &VideoResult{}
	result.TargetLanguage = targetLanguage

	if o.synthesizer == nil {
		return nil, o.fail(
			StageSynthesis,
			result.Steps,
			fmt.Errorf("no synthesizer configured"),
		)
	}
	if !media.IsVideoFile(videoPath) {
		return nil, o.fail(
			StageExtraction,
			result.Steps,
			fmt.Errorf("not a recognized video container: %s", videoPath),
		)
	}

	tempDir, err := os.MkdirTemp("", "tunedub-*")
	if err != nil {
		return nil, o.fail(StageExtraction, result.Steps, err)
	}
	defer os.RemoveAll(tempDir)

	extractedPath := filepath.Join(tempDir, "extracted.wav")
	o.logger.Infow("extracting audio", "video", videoPath)
	err = o.media.ExtractAudio(
		ctx, videoPath, extractedPath, media.DefaultExtractOptions(),
	)
	if err != nil {
		return nil, o.fail(StageExtraction, result.Steps, err)
	}
	result.Steps = append(result.Steps, "Audio extracted from video")

	audioResult, err := o.ProcessAudio(ctx, extractedPath, targetLanguage, voiceID)
	if err != nil {
		var stageErr *StageError
		if errors.As(err, &stageErr) {
			stageErr.Steps = append(result.Steps, stageErr.Steps...)
			return nil, stageErr
		}
		return nil, err
	}
	audioResult.Steps = append(result.Steps, audioResult.Steps...)
	result.AudioResult = *audioResult

	if result.Job == nil || result.Job.Status != synthesize.StatusCompleted {
		return nil, o.fail(
			StageSynthesis,
			result.Steps,
			fmt.Errorf("synthesis did not complete within the poll budget"),
		)
	}

	o.logger.Infow("downloading synthesized audio", "job", result.Job.ID)
	audio, err := o.download(ctx, result.Job.AudioURL)
	if err != nil {
		return nil, o.fail(StageSynthesis, result.Steps, err)
	}

	dubbedPath := filepath.Join(tempDir, "dubbed.wav")
	if err := os.WriteFile(dubbedPath, audio, 0644); err != nil {
		return nil, o.fail(StageSynthesis, result.Steps, err)
	}

	o.logger.Infow("injecting audio", "output", outputPath)
	inject, err := o.media.InjectAudio(ctx, videoPath, dubbedPath, outputPath)
	if err != nil {
		return nil, o.fail(StageInjection, result.Steps, err)
	}
	result.Inject = inject
	result.OutputPath = inject.OutputPath
	result.Steps = append(result.Steps, inject.Steps...)

	return result, nil
}

func (o *Orchestrator) translateStage(
	ctx context.Context,
	doc markup.Document,
	targetLanguage string,
	steps []string,
) (markup.Document, []string, error) {
	if ShouldSkipTranslation(targetLanguage) {
		steps = append(steps,
			"Translation skipped (English or no target language specified)",
		)
		return doc, steps, nil
	}

	if o.translator == nil {
		return doc, steps, o.fail(
			StageTranslation,
			steps,
			fmt.Errorf("no translator configured for target language %q", targetLanguage),
		)
	}

	o.logger.Infow("translating markup", "target", targetLanguage)
	translated, err := o.translator.TranslateMarkup(ctx, doc, targetLanguage)
	if err != nil {
		return doc, steps, o.fail(StageTranslation, steps, err)
	}
	if !markup.SameStructure(doc, translated) {
		o.logger.Warnw("translation altered markup structure",
			"target", targetLanguage,
		)
	}

	steps = append(steps, fmt.Sprintf("Translated to %s", targetLanguage))
	return translated, steps, nil
}

func (o *Orchestrator) synthesisStage(
	ctx context.Context,
	doc markup.Document,
	voiceID string,
	steps []string,
) (*synthesize.Job, []string, error) {
	if o.synthesizer == nil {
		return nil, steps, nil
	}

	o.logger.Infow("synthesizing speech")
	job, err := o.synthesizer.Synthesize(ctx, doc, voiceID)
	if err != nil {
		return nil, steps, o.fail(StageSynthesis, steps, err)
	}

	if job.Status == synthesize.StatusCompleted {
		steps = append(steps, "Speech synthesis completed")
	} else {
		steps = append(steps, fmt.Sprintf(
			"Speech synthesis still processing (job %s)", job.ID,
		))
	}
	return job, steps, nil
}

func (o *Orchestrator) fail(stage Stage, steps []string, err error) error {
	o.logger.Errorw("pipeline stage failed", "stage", string(stage), "error", err)
	return &StageError{Stage: stage, Steps: steps, Err: err}
}
