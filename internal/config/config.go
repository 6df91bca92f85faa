package config

import (
	"fmt"
	"os"
)

// provider credentials and defaults, loaded once from the environment and
// passed explicitly into component constructors
type Config struct {
	DeepgramAPIKey  string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string

	ResembleAPIKey    string
	ResembleProjectID string
	ResembleVoiceID   string
}

func FromEnv() Config {
	return Config{
		DeepgramAPIKey:    os.Getenv("DEEPGRAM_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		ResembleAPIKey:    os.Getenv("RESEMBLE_API_KEY"),
		ResembleProjectID: os.Getenv("RESEMBLE_PROJECT_ID"),
		ResembleVoiceID:   os.Getenv("RESEMBLE_DEFAULT_VOICE_ID"),
	}
}

// RequireSynthesis verifies the Resemble credentials needed to generate voice.
func (c Config) RequireSynthesis() error {
	if c.ResembleAPIKey == "" {
		return fmt.Errorf("Resemble API key is required: set RESEMBLE_API_KEY")
	}
	if c.ResembleProjectID == "" {
		return fmt.Errorf("Resemble project ID is required: set RESEMBLE_PROJECT_ID")
	}
	return nil
}

// RequireTranscription verifies credentials for the chosen transcription provider.
func (c Config) RequireTranscription(provider string) error {
	switch provider {
	case "deepgram":
		if c.DeepgramAPIKey == "" {
			return fmt.Errorf("Deepgram API key is required: set DEEPGRAM_API_KEY")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OpenAI API key is required: set OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported transcription provider: %s", provider)
	}
	return nil
}
