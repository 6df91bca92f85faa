package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/terminalsin/tunedub/internal/config"
	"github.com/terminalsin/tunedub/internal/media"
	"github.com/terminalsin/tunedub/internal/timing"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [audio_file]",
	Short: "Transcribe an audio file with word-level timing",
	Long: `Transcribe an audio file and print the transcript together with the
timing analysis used by the markup generator: average speaking rate,
significant pauses, and fast or slow speech segments.

Examples:
  tunedub transcribe speech.wav
  tunedub transcribe podcast.mp3 --provider openai
  tunedub transcribe speech.wav -o transcript.txt --words`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().
		StringP("provider", "p", "deepgram", "Transcription provider (deepgram, openai)")
	transcribeCmd.Flags().
		String("model", "", "Transcription model (provider default if empty)")
	transcribeCmd.Flags().
		StringP("language", "l", "", "Language of the source audio (BCP-47, e.g., en-US)")
	transcribeCmd.Flags().
		Bool("words", false, "Print per-word timing data")
	transcribeCmd.Flags().
		Bool("json", false, "Emit the full transcription result as JSON")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	audioPath := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return fmt.Errorf("audio file not found: %s", audioPath)
	}
	if !media.IsMediaFile(audioPath) {
		return fmt.Errorf("unsupported file type: %s", audioPath)
	}

	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	language, _ := cmd.Flags().GetString("language")
	showWords, _ := cmd.Flags().GetBool("words")
	asJSON, _ := cmd.Flags().GetBool("json")
	outputPath, _ := cmd.Flags().GetString("output")

	cfg := config.FromEnv()
	transcriber, err := newTranscriber(ctx, cfg, provider, model, language)
	if err != nil {
		return err
	}

	logger.Infow("Transcribing audio",
		"input", audioPath,
		"provider", provider,
	)

	result, err := transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	analysis, err := timing.Analyze(result.Words)
	if err != nil {
		return fmt.Errorf("timing analysis failed: %w", err)
	}

	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		if outputPath != "" {
			if err := os.WriteFile(outputPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write transcript: %w", err)
			}
			fmt.Printf("Transcript written to %s\n", outputPath)
			return nil
		}
		fmt.Println(string(data))
		return nil
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(result.Transcript), 0644); err != nil {
			return fmt.Errorf("failed to write transcript: %w", err)
		}
		fmt.Printf("Transcript written to %s\n", outputPath)
	} else {
		fmt.Printf("Transcript: %s\n", result.Transcript)
	}

	fmt.Printf("  Words: %d\n", len(result.Words))
	fmt.Printf("  Duration: %s\n", result.Duration)
	fmt.Printf("  Confidence: %.2f\n", result.Confidence)
	fmt.Printf("  Speaking rate: %.2f words/s\n", analysis.AverageSpeakingRate)
	fmt.Printf("  Significant pauses: %d\n", len(analysis.SignificantPauses))
	fmt.Printf("  Speech segments: %d\n", len(analysis.SpeechSegments))

	if showWords {
		fmt.Println("\nWord timing:")
		for _, word := range result.Words {
			fmt.Printf(
				"  %q %.2fs-%.2fs (confidence %.2f)\n",
				word.Display(), word.Start, word.End, word.Confidence,
			)
		}
	}

	return nil
}
