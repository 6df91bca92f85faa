package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/terminalsin/tunedub/internal/config"
	"github.com/terminalsin/tunedub/internal/media"
	"github.com/terminalsin/tunedub/internal/pipeline"
)

var videoCmd = &cobra.Command{
	Use:   "video [video_file]",
	Short: "Dub a video file with a synthesized voice track",
	Long: `Run the full dubbing pipeline on a video file: extract the audio track,
transcribe it with word-level timing, generate timing-aware SSML markup,
optionally translate, synthesize a new voice, and inject it back into the
video. When the new audio outlasts the video, the final frame is held so
nothing is cut short.

Examples:
  tunedub video talk.mp4
  tunedub video talk.mp4 --target-language spanish -o talk_es.mp4
  tunedub video talk.mp4 --voice 55ab4bba --provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runVideo,
}

func init() {
	rootCmd.AddCommand(videoCmd)

	videoCmd.Flags().
		StringP("provider", "p", "deepgram", "Transcription provider (deepgram, openai)")
	videoCmd.Flags().
		String("model", "", "Transcription model (provider default if empty)")
	videoCmd.Flags().
		StringP("language", "l", "", "Language of the source audio (BCP-47, e.g., en-US)")
	videoCmd.Flags().
		String("markup-provider", "openai", "Markup generation provider (openai, gemini)")
	videoCmd.Flags().
		String("markup-model", "", "Model for markup generation (provider default if empty)")
	videoCmd.Flags().
		String("translate-provider", "openai", "Translation provider (openai, anthropic)")
	videoCmd.Flags().
		String("translate-model", "", "Model for translation (provider default if empty)")
}

func runVideo(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if !media.IsVideoFile(videoPath) {
		return fmt.Errorf("unsupported file type: %s (expected a video file)", videoPath)
	}

	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	language, _ := cmd.Flags().GetString("language")
	markupProvider, _ := cmd.Flags().GetString("markup-provider")
	markupModel, _ := cmd.Flags().GetString("markup-model")
	translateProvider, _ := cmd.Flags().GetString("translate-provider")
	translateModel, _ := cmd.Flags().GetString("translate-model")
	targetLang, _ := cmd.Flags().GetString("target-language")
	voiceID, _ := cmd.Flags().GetString("voice")
	outputPath, _ := cmd.Flags().GetString("output")

	if outputPath == "" {
		base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
		outputPath = base + "_dubbed.mp4"
	}

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
	synthesizer, err := newSynthesizer(cfg)
	if err != nil {
		return err
	}

	orchestrator, err := pipeline.New(pipeline.Components{
		Transcriber: transcriber,
		Generator:   generator,
		Translator:  translator,
		Synthesizer: synthesizer,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	result, err := orchestrator.ProcessVideo(ctx, videoPath, targetLang, voiceID, outputPath)
	if err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(result.OutputPath)
	fmt.Println("Video dubbed successfully:")
	printSteps(result.Steps)
	fmt.Printf("\nOutput: %s\n", absOutput)
	if result.Inject != nil {
		fmt.Printf("  Strategy: %s\n", result.Inject.Plan.Strategy)
		if result.Inject.Extended {
			fmt.Printf(
				"  Video extended by %.2fs to fit the new audio\n",
				result.Inject.Plan.PadDuration.Seconds(),
			)
		}
	}

	return nil
}
