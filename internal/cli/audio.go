package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/terminalsin/tunedub/internal/config"
	"github.com/terminalsin/tunedub/internal/media"
	"github.com/terminalsin/tunedub/internal/pipeline"
)

var audioCmd = &cobra.Command{
	Use:   "audio [audio_file]",
	Short: "Re-voice an audio file through the dubbing pipeline",
	Long: `Transcribe an audio file with word-level timing, generate timing-aware
SSML markup from it, optionally translate, and synthesize a new voice track.

Examples:
  tunedub audio podcast.mp3
  tunedub audio speech.wav --target-language japanese
  tunedub audio speech.wav --provider openai --voice 55ab4bba`,
	Args: cobra.ExactArgs(1),
	RunE: runAudio,
}

func init() {
	rootCmd.AddCommand(audioCmd)

	audioCmd.Flags().
		StringP("provider", "p", "deepgram", "Transcription provider (deepgram, openai)")
	audioCmd.Flags().
		String("model", "", "Transcription model (provider default if empty)")
	audioCmd.Flags().
		StringP("language", "l", "", "Language of the source audio (BCP-47, e.g., en-US)")
	audioCmd.Flags().
		String("markup-provider", "openai", "Markup generation provider (openai, gemini)")
	audioCmd.Flags().
		String("markup-model", "", "Model for markup generation (provider default if empty)")
	audioCmd.Flags().
		String("translate-provider", "openai", "Translation provider (openai, anthropic)")
	audioCmd.Flags().
		String("translate-model", "", "Model for translation (provider default if empty)")
	audioCmd.Flags().
		Bool("no-synthesis", false, "Stop after markup generation and translation")
}

func runAudio(cmd *cobra.Command, args []string) error {
	audioPath := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return fmt.Errorf("audio file not found: %s", audioPath)
	}
	if !media.IsAudioFile(audioPath) {
		return fmt.Errorf("unsupported file type: %s (expected an audio file)", audioPath)
	}

	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	language, _ := cmd.Flags().GetString("language")
	markupProvider, _ := cmd.Flags().GetString("markup-provider")
	markupModel, _ := cmd.Flags().GetString("markup-model")
	translateProvider, _ := cmd.Flags().GetString("translate-provider")
	translateModel, _ := cmd.Flags().GetString("translate-model")
	noSynthesis, _ := cmd.Flags().GetBool("no-synthesis")
	targetLang, _ := cmd.Flags().GetString("target-language")
	voiceID, _ := cmd.Flags().GetString("voice")
	outputPath, _ := cmd.Flags().GetString("output")

	cfg := config.FromEnv()

	transcriber, err := newTranscriber(ctx, cfg, provider, model, language)
	if err != nil {
		return err
	}
	generator, err := newGenerator(ctx, cfg, markupProvider, markupModel)
	if err != nil {
		return err
	}
	translator, err := newTranslator(ctx, cfg, targetLang, translateProvider, translateModel)
	if err != nil {
		return err
	}

	components := pipeline.Components{
		Transcriber: transcriber,
		Generator:   generator,
		Translator:  translator,
		Logger:      logger,
	}
	if !noSynthesis && cfg.RequireSynthesis() == nil {
		synthesizer, err := newSynthesizer(cfg)
		if err != nil {
			return err
		}
		components.Synthesizer = synthesizer
	}

	orchestrator, err := pipeline.New(components)
	if err != nil {
		return err
	}

	result, err := orchestrator.ProcessAudio(ctx, audioPath, targetLang, voiceID)
	if err != nil {
		return err
	}

	fmt.Println("Audio processed successfully:")
	printSteps(result.Steps)
	fmt.Printf("\nTranscript: %s\n", result.Transcription.Transcript)
	fmt.Printf("  Words: %d\n", len(result.Transcription.Words))
	fmt.Printf("  Confidence: %.2f\n", result.Transcription.Confidence)
	fmt.Printf("  Speaking rate: %.2f words/s\n", result.Analysis.AverageSpeakingRate)

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(result.Markup), 0644); err != nil {
			return fmt.Errorf("failed to write markup: %w", err)
		}
		fmt.Printf("Markup written to %s\n", outputPath)
	}

	printJob(result.Job)
	return nil
}
