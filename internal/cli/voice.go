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
	"github.com/terminalsin/tunedub/internal/markup"
	"github.com/terminalsin/tunedub/internal/synthesize"
)

var voiceCmd = &cobra.Command{
	Use:   "voice [markup_file]",
	Short: "Synthesize speech from an SSML markup document",
	Long: `Synthesize speech from an SSML markup document using the configured
voice provider.

By default the clip is submitted and polled until the audio is ready or the
poll budget runs out; a job still processing after that can be re-checked
with the status command. With --stream the audio is generated in a single
blocking call and written directly to the output file.

Examples:
  tunedub voice script.ssml
  tunedub voice script.ssml --voice 55ab4bba -o speech.wav
  tunedub voice script.ssml --stream -o speech.wav
  tunedub voice script.ssml --no-wait`,
	Args: cobra.ExactArgs(1),
	RunE: runVoice,
}

func init() {
	rootCmd.AddCommand(voiceCmd)

	voiceCmd.Flags().
		Bool("stream", false, "Stream audio in one blocking call instead of submit and poll")
	voiceCmd.Flags().
		Bool("no-wait", false, "Submit the job and exit without polling")
}

func runVoice(cmd *cobra.Command, args []string) error {
	markupPath := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stream, _ := cmd.Flags().GetBool("stream")
	noWait, _ := cmd.Flags().GetBool("no-wait")
	voiceID, _ := cmd.Flags().GetString("voice")
	outputPath, _ := cmd.Flags().GetString("output")

	data, err := os.ReadFile(markupPath)
	if err != nil {
		return fmt.Errorf("failed to read markup file: %w", err)
	}

	doc := markup.Document(data)
	if err := markup.Validate(doc); err != nil {
		return fmt.Errorf("input is not a valid markup document: %w", err)
	}

	cfg := config.FromEnv()
	synthesizer, err := newSynthesizer(cfg)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(markupPath, filepath.Ext(markupPath)) + ".wav"
	}

	if stream {
		logger.Infow("Streaming synthesis", "input", markupPath)

		audio, err := synthesizer.Stream(ctx, doc, voiceID)
		if err != nil {
			return fmt.Errorf("streaming synthesis failed: %w", err)
		}
		if err := os.WriteFile(outputPath, audio, 0644); err != nil {
			return fmt.Errorf("failed to write audio: %w", err)
		}

		absOutput, _ := filepath.Abs(outputPath)
		fmt.Printf("Audio written to %s (%d bytes)\n", absOutput, len(audio))
		return nil
	}

	if noWait {
		job, err := synthesizer.Submit(ctx, doc, voiceID)
		if err != nil {
			return fmt.Errorf("synthesis submission failed: %w", err)
		}
		printJob(job)
		return nil
	}

	logger.Infow("Synthesizing speech", "input", markupPath)

	job, err := synthesizer.Synthesize(ctx, doc, voiceID)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}
	printJob(job)

	if job.Status != synthesize.StatusCompleted {
		return nil
	}

	audio, err := synthesize.DownloadAudio(ctx, job.AudioURL)
	if err != nil {
		return fmt.Errorf("failed to download audio: %w", err)
	}
	if err := os.WriteFile(outputPath, audio, 0644); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Audio written to %s (%d bytes)\n", absOutput, len(audio))
	return nil
}
