package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/terminalsin/tunedub/internal/config"
	"github.com/terminalsin/tunedub/internal/markup"
	"github.com/terminalsin/tunedub/internal/timing"
	"github.com/terminalsin/tunedub/internal/transcribe"
)

var markupCmd = &cobra.Command{
	Use:   "markup [text...]",
	Short: "Generate SSML markup from plain text",
	Long: `Generate an SSML markup document from plain text without running the
rest of the pipeline. The document is wrapped in the mandatory <speak> and
<lang> tags and can be fed to the voice command later.

With --transcript, a JSON transcription result (as produced by
"tunedub transcribe --json") is used instead, and the document is generated
from the word-level timing data.

Examples:
  tunedub markup "Hello there, how are you?"
  tunedub markup --file script.txt -o script.ssml
  tunedub markup --transcript speech.json -o speech.ssml
  tunedub markup "Bonjour" --lang-code fr-fr --provider gemini`,
	Args: cobra.ArbitraryArgs,
	RunE: runMarkup,
}

func init() {
	rootCmd.AddCommand(markupCmd)

	markupCmd.Flags().
		String("file", "", "Read input text from a file instead of arguments")
	markupCmd.Flags().
		String("transcript", "", "Generate timing-aware markup from a JSON transcription result")
	markupCmd.Flags().
		StringP("provider", "p", "openai", "Markup generation provider (openai, gemini)")
	markupCmd.Flags().
		String("model", "", "Model for markup generation (provider default if empty)")
	markupCmd.Flags().
		String("lang-code", "", "xml:lang code for the markup wrapper (default en-us)")
}

func runMarkup(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	filePath, _ := cmd.Flags().GetString("file")
	transcriptPath, _ := cmd.Flags().GetString("transcript")
	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	langCode, _ := cmd.Flags().GetString("lang-code")
	outputPath, _ := cmd.Flags().GetString("output")

	cfg := config.FromEnv()
	generator, err := newMarkupGenerator(ctx, cfg, provider, model, langCode)
	if err != nil {
		return err
	}

	var doc markup.Document
	if transcriptPath != "" {
		data, err := os.ReadFile(transcriptPath)
		if err != nil {
			return fmt.Errorf("failed to read transcript file: %w", err)
		}
		var result transcribe.Result
		if err := json.Unmarshal(data, &result); err != nil {
			return fmt.Errorf("failed to parse transcript file: %w", err)
		}

		analysis, err := timing.Analyze(result.Words)
		if err != nil {
			return fmt.Errorf("timing analysis failed: %w", err)
		}

		logger.Infow("Generating timing-aware markup",
			"provider", provider,
			"words", len(result.Words),
		)

		doc, err = generator.FromTranscript(
			ctx, result.Transcript, result.Words, analysis,
		)
		if err != nil {
			return fmt.Errorf("markup generation failed: %w", err)
		}
	} else {
		var text string
		if filePath != "" {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			text = string(data)
		} else {
			text = strings.Join(args, " ")
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("no input text: pass text as arguments or use --file")
		}

		logger.Infow("Generating markup",
			"provider", provider,
			"chars", len(text),
		)

		doc, err = generator.FromText(ctx, text)
		if err != nil {
			return fmt.Errorf("markup generation failed: %w", err)
		}
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(doc), 0644); err != nil {
			return fmt.Errorf("failed to write markup: %w", err)
		}
		fmt.Printf("Markup written to %s\n", outputPath)
		return nil
	}

	fmt.Println(doc)
	return nil
}
