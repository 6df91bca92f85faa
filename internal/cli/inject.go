package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/terminalsin/tunedub/internal/media"
)

var injectCmd = &cobra.Command{
	Use:   "inject [video_file] [audio_file]",
	Short: "Replace the audio track of a video",
	Long: `Replace the audio track of a video file with the given audio file.

Durations are reconciled before muxing: when the audio outlasts the video,
the final frame is held until the audio ends; otherwise the video stream is
copied untouched.

Examples:
  tunedub inject talk.mp4 dubbed.wav
  tunedub inject talk.mp4 dubbed.wav -o talk_dubbed.mp4`,
	Args: cobra.ExactArgs(2),
	RunE: runInject,
}

func init() {
	rootCmd.AddCommand(injectCmd)
}

func runInject(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	audioPath := args[1]

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
		outputPath = base + "_dubbed" + filepath.Ext(videoPath)
	}

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return fmt.Errorf("audio file not found: %s", audioPath)
	}

	logger.Infow("Injecting audio",
		"video", videoPath,
		"audio", audioPath,
		"output", outputPath,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	processor := media.NewProcessor()
	result, err := processor.InjectAudio(ctx, videoPath, audioPath, outputPath)
	if err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(result.OutputPath)
	fmt.Printf("Audio injected successfully: %s\n", absOutput)
	printSteps(result.Steps)
	fmt.Printf("  Strategy: %s\n", result.Plan.Strategy)
	if result.Extended {
		fmt.Printf(
			"  Video extended by %.2fs to fit the new audio\n",
			result.Plan.PadDuration.Seconds(),
		)
	}

	return nil
}
