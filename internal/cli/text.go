package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/terminalsin/tunedub/internal/config"
	"github.com/terminalsin/tunedub/internal/pipeline"
)

var textCmd = &cobra.Command{
	Use:   "text [text...]",
	Short: "Convert text to speech markup and synthesize audio",
	Long: `Convert plain text into SSML markup, optionally translate it, and
synthesize audio with the configured voice.

Synthesis is skipped when no Resemble credentials are configured; the
generated markup is still printed or written to the output path.

Examples:
  tunedub text "Hello there, how are you today?"
  tunedub text "Hello world" --target-language spanish
  tunedub text "Hello world" --voice 55ab4bba -o greeting.ssml
  tunedub text --file script.txt --no-synthesis`,
	Args: cobra.ArbitraryArgs,
	RunE: runText,
}

func init() {
	rootCmd.AddCommand(textCmd)

	textCmd.Flags().
		String("file", "", "Read input text from a file instead of arguments")
	textCmd.Flags().
		String("markup-provider", "openai", "Markup generation provider (openai, gemini)")
	textCmd.Flags().
		String("markup-model", "", "Model for markup generation (provider default if empty)")
	textCmd.Flags().
		String("translate-provider", "openai", "Translation provider (openai, anthropic)")
	textCmd.Flags().
		String("translate-model", "", "Model for translation (provider default if empty)")
	textCmd.Flags().
		Bool("no-synthesis", false, "Stop after markup generation and translation")
}

func runText(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	filePath, _ := cmd.Flags().GetString("file")
	markupProvider, _ := cmd.Flags().GetString("markup-provider")
	markupModel, _ := cmd.Flags().GetString("markup-model")
	translateProvider, _ := cmd.Flags().GetString("translate-provider")
	translateModel, _ := cmd.Flags().GetString("translate-model")
	noSynthesis, _ := cmd.Flags().GetBool("no-synthesis")
	targetLang, _ := cmd.Flags().GetString("target-language")
	voiceID, _ := cmd.Flags().GetString("voice")
	outputPath, _ := cmd.Flags().GetString("output")

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

	cfg := config.FromEnv()

	generator, err := newGenerator(ctx, cfg, markupProvider, markupModel)
	if err != nil {
		return err
	}
	translator, err := newTranslator(ctx, cfg, targetLang, translateProvider, translateModel)
	if err != nil {
		return err
	}

	components := pipeline.Components{
		Generator:  generator,
		Translator: translator,
		Logger:     logger,
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

	result, err := orchestrator.ProcessText(ctx, text, targetLang, voiceID)
	if err != nil {
		return err
	}

	fmt.Println("Text processed successfully:")
	printSteps(result.Steps)

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(result.Markup), 0644); err != nil {
			return fmt.Errorf("failed to write markup: %w", err)
		}
		fmt.Printf("Markup written to %s\n", outputPath)
	} else {
		fmt.Printf("\n%s\n\n", result.Markup)
	}

	printJob(result.Job)
	return nil
}
