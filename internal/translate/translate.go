package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/terminalsin/tunedub/internal/markup"
)

// Translator rewrites the text content of a markup document into the target
// language. The tag and attribute skeleton must be preserved verbatim; the
// component cannot self-verify this, so callers relying on it should compare
// structures with markup.SameStructure.
type Translator interface {
	TranslateMarkup(
		ctx context.Context,
		doc markup.Document,
		targetLanguage string,
	) (markup.Document, error)
}

// translation service provider
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	Model string
}

var ErrEmptyTranslation = errors.New("empty translation received")

// creates Translator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAITranslator(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// SystemPrompt is the instruction shared by all providers.
const SystemPrompt = "You are an expert translator who specializes in " +
	"preserving SSML markup while translating text content. You must " +
	"maintain all SSML tags and attributes exactly as they are, only " +
	"translating the text content within the tags."

// BuildPrompt creates the translation request for LLM providers.
func BuildPrompt(doc markup.Document, targetLanguage string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(
		"Translate the following SSML markup to %s. IMPORTANT:\n",
		targetLanguage,
	))
	sb.WriteString("- Preserve ALL SSML tags exactly as they are\n")
	sb.WriteString("- Only translate the actual text content within the tags\n")
	sb.WriteString("- Do not modify any SSML attributes or tag structure\n")
	sb.WriteString("- Return only the translated SSML markup\n\n")
	sb.WriteString("Original SSML:\n")
	sb.WriteString(string(doc))
	sb.WriteString("\n\nTranslated SSML:")

	return sb.String()
}

// finalize trims provider output and rejects empty or structurally invalid
// documents.
func finalize(raw string) (markup.Document, error) {
	raw = stripCodeFences(raw)
	if raw == "" {
		return "", ErrEmptyTranslation
	}

	doc := markup.Document(raw)
	if err := markup.Validate(doc); err != nil {
		return "", fmt.Errorf("translated markup failed validation: %w", err)
	}

	return doc, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```xml")
	s = strings.TrimPrefix(s, "```ssml")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
