package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/terminalsin/tunedub/internal/config"
	"github.com/terminalsin/tunedub/internal/markup"
)

var translateCmd = &cobra.Command{
	Use:   "translate [markup_file]",
	Short: "Translate an SSML markup document to another language",
	Long: `Translate the text content of an SSML markup document while preserving
all tags and attributes exactly as they are.

Examples:
  tunedub translate script.ssml --target-language spanish
  tunedub translate script.ssml -t japanese -o script_ja.ssml
  tunedub translate script.ssml -t french --provider anthropic`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("provider", "p", "openai", "Translation provider (openai, anthropic)")
	translateCmd.Flags().
		String("model", "", "Model for translation (provider default if empty)")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	markupPath := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	targetLang, _ := cmd.Flags().GetString("target-language")
	outputPath, _ := cmd.Flags().GetString("output")

	if targetLang == "" {
		return fmt.Errorf("target language is required: use --target-language")
	}

	data, err := os.ReadFile(markupPath)
	if err != nil {
		return fmt.Errorf("failed to read markup file: %w", err)
	}

	doc := markup.Document(data)
	if err := markup.Validate(doc); err != nil {
		return fmt.Errorf("input is not a valid markup document: %w", err)
	}

	cfg := config.FromEnv()
	translator, err := newTranslator(ctx, cfg, targetLang, provider, model)
	if err != nil {
		return err
	}
	if translator == nil {
		fmt.Println("Nothing to translate: target language is English")
		return nil
	}

	logger.Infow("Translating markup",
		"input", markupPath,
		"target", targetLang,
		"provider", provider,
	)

	translated, err := translator.TranslateMarkup(ctx, doc, targetLang)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	if !markup.SameStructure(doc, translated) {
		logger.Warnw("translation altered markup structure", "target", targetLang)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(translated), 0644); err != nil {
			return fmt.Errorf("failed to write translated markup: %w", err)
		}
		fmt.Printf("Translated markup written to %s\n", outputPath)
		return nil
	}

	fmt.Println(translated)
	return nil
}
