package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/terminalsin/tunedub/internal/config"
	"github.com/terminalsin/tunedub/internal/synthesize"
)

var statusCmd = &cobra.Command{
	Use:   "status [job_id]",
	Short: "Check the status of a synthesis job",
	Long: `Check the status of a previously submitted synthesis job. When the
job has completed, the audio can be downloaded with --download.

Examples:
  tunedub status 3f1c9a2e
  tunedub status 3f1c9a2e --download -o speech.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().
		Bool("download", false, "Download the audio if the job has completed")
}

func runStatus(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	download, _ := cmd.Flags().GetBool("download")
	outputPath, _ := cmd.Flags().GetString("output")

	cfg := config.FromEnv()
	synthesizer, err := newSynthesizer(cfg)
	if err != nil {
		return err
	}

	job, err := synthesizer.CheckStatus(ctx, jobID)
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}
	printJob(job)

	if !download || job.Status != synthesize.StatusCompleted {
		return nil
	}

	if outputPath == "" {
		outputPath = jobID + ".wav"
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
