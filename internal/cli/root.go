package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terminalsin/tunedub/internal/config"
	"github.com/terminalsin/tunedub/internal/logging"
	"github.com/terminalsin/tunedub/internal/markup"
	"github.com/terminalsin/tunedub/internal/pipeline"
	"github.com/terminalsin/tunedub/internal/synthesize"
	"github.com/terminalsin/tunedub/internal/transcribe"
	"github.com/terminalsin/tunedub/internal/translate"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tunedub",
	Short: "AI-powered speech markup and dubbing pipeline",
	Long: `Tunedub converts text, audio, and video into natural synthesized speech.

Audio and video inputs are transcribed with word-level timing, turned into
timing-aware SSML markup, optionally translated, and re-voiced. For video,
the new audio track is injected back into the original file with durations
reconciled.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("target-language", "t", "", "Target language for translation (e.g., spanish, japanese)")
	rootCmd.PersistentFlags().
		String("voice", "", "Voice ID for synthesis (or set RESEMBLE_DEFAULT_VOICE_ID env var)")
}

// shared constructors wiring environment credentials into pipeline components

func newGenerator(
	ctx context.Context,
	cfg config.Config,
	provider, model string,
) (markup.Generator, error) {
	return newMarkupGenerator(ctx, cfg, provider, model, "")
}

func newMarkupGenerator(
	ctx context.Context,
	cfg config.Config,
	provider, model, langCode string,
) (markup.Generator, error) {
	p := markup.Provider(provider)
	var apiKey string
	switch p {
	case markup.ProviderOpenAI:
		apiKey = cfg.OpenAIAPIKey
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required: set OPENAI_API_KEY")
		}
	case markup.ProviderGemini:
		apiKey = cfg.GeminiAPIKey
		if apiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required: set GEMINI_API_KEY")
		}
	default:
		return nil, fmt.Errorf("unsupported markup provider: %s", provider)
	}
	return markup.Factory(ctx, p, apiKey, markup.Options{
		Model:        model,
		LanguageCode: langCode,
	})
}

func newTranslator(
	ctx context.Context,
	cfg config.Config,
	targetLanguage, provider, model string,
) (translate.Translator, error) {
	if pipeline.ShouldSkipTranslation(targetLanguage) {
		return nil, nil
	}

	p := translate.Provider(provider)
	var apiKey string
	switch p {
	case translate.ProviderOpenAI:
		apiKey = cfg.OpenAIAPIKey
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required: set OPENAI_API_KEY")
		}
	case translate.ProviderAnthropic:
		apiKey = cfg.AnthropicAPIKey
		if apiKey == "" {
			return nil, fmt.Errorf("Anthropic API key is required: set ANTHROPIC_API_KEY")
		}
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
	return translate.Factory(ctx, p, apiKey, translate.Options{Model: model})
}

func newTranscriber(
	ctx context.Context,
	cfg config.Config,
	provider, model, language string,
) (transcribe.Transcriber, error) {
	if err := cfg.RequireTranscription(provider); err != nil {
		return nil, err
	}

	opts := transcribe.DefaultOptions()
	if model != "" {
		opts.Model = model
	}
	if language != "" {
		opts.Language = language
	}

	p := transcribe.Provider(provider)
	apiKey := cfg.DeepgramAPIKey
	if p == transcribe.ProviderOpenAI {
		apiKey = cfg.OpenAIAPIKey
	}
	return transcribe.Factory(ctx, p, apiKey, opts)
}

func newSynthesizer(cfg config.Config) (synthesize.Synthesizer, error) {
	if err := cfg.RequireSynthesis(); err != nil {
		return nil, err
	}
	return synthesize.NewResembleSynthesizer(cfg.ResembleAPIKey, synthesize.Options{
		ProjectID:      cfg.ResembleProjectID,
		DefaultVoiceID: cfg.ResembleVoiceID,
	})
}

func printSteps(steps []string) {
	for _, step := range steps {
		fmt.Printf("  - %s\n", step)
	}
}

func printJob(job *synthesize.Job) {
	if job == nil {
		return
	}
	fmt.Printf("Synthesis job: %s (%s)\n", job.ID, job.Status)
	if job.AudioURL != "" {
		fmt.Printf("  Audio: %s\n", job.AudioURL)
	} else if job.Status == synthesize.StatusProcessing {
		fmt.Printf("  Check later with: tunedub status %s\n", job.ID)
	}
}
