package markup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/terminalsin/tunedub/internal/timing"
)

// Generator converts plain text, or a transcript plus timing analysis, into
// a speech markup document
type Generator interface {
	FromText(ctx context.Context, text string) (Document, error)
	FromTranscript(
		ctx context.Context,
		transcript string,
		words []timing.Word,
		analysis *timing.Analysis,
	) (Document, error)
}

// markup generation provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// generation options
type Options struct {
	Model        string
	LanguageCode string // xml:lang value for the mandatory wrapper (default en-us)
}

var ErrNoMarkupGenerated = errors.New("no markup generated")

// creates a generator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Generator, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIGenerator(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiGenerator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported markup provider: %s", provider)
	}
}

func (o Options) languageCode() string {
	if o.LanguageCode != "" {
		return o.LanguageCode
	}
	return DefaultLanguageCode
}

// BuildTextPrompt creates the instruction for converting plain text into a
// markup document.
func BuildTextPrompt(text, langCode string) string {
	var sb strings.Builder

	sb.WriteString("Convert the following text into SSML markup for speech synthesis.\n")
	sb.WriteString("Output exclusively the SSML:\n")
	sb.WriteString("- Do not add ``` at the beginning or end of the output.\n")
	sb.WriteString("- Do not add any other text or comments to the output.\n")
	sb.WriteString("- Strictly follow the format of the SSML elements.\n")
	sb.WriteString("- Do not add any xml attributes to <speak> or </speak>.\n")
	sb.WriteString(fmt.Sprintf(
		"- After the <speak> tag, add <lang xml:lang=\"%s\"> and </lang> tags. "+
			"THIS IS MANDATORY AND SHOULD WRAP THE ENTIRE OUTPUT.\n",
		langCode,
	))
	sb.WriteString("- Be generous with emotions and intonation tags.\n\n")
	sb.WriteString("Supported elements: speak, prosody, emphasis, say-as, sub, break, language.\n\n")
	sb.WriteString("Text: ")
	sb.WriteString(text)
	sb.WriteString("\n\nSSML:")

	return sb.String()
}

// BuildTimingSystemPrompt creates the system instruction for the
// timing-aware variant.
func BuildTimingSystemPrompt(langCode string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert SSML generator specializing in creating natural ")
	sb.WriteString("speech markup from audio transcriptions with precise timing data.\n\n")
	sb.WriteString("Convert the following transcript into SSML markup, using the provided ")
	sb.WriteString("timing information to create natural speech patterns with appropriate ")
	sb.WriteString("pacing, pauses, and prosody.\n\n")
	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString("1. Create SSML markup that preserves the natural timing and pacing from the original audio\n")
	sb.WriteString("2. Use <break> tags for pauses longer than 0.3 seconds\n")
	sb.WriteString("3. Use <prosody rate=\"...\"> for sections notably faster or slower than average\n")
	sb.WriteString("4. Use <emphasis> for high-confidence words that may have been stressed\n")
	sb.WriteString("5. Use <prosody pitch=\"...\"> subtly to indicate natural intonation patterns\n")
	sb.WriteString(fmt.Sprintf(
		"6. Wrap everything in <speak> and <lang xml:lang=\"%s\"> tags as required. "+
			"THIS IS MANDATORY AND SHOULD WRAP THE ENTIRE OUTPUT.\n",
		langCode,
	))
	sb.WriteString("7. Be generous with prosody annotations to match the original speech patterns\n")
	sb.WriteString("8. Consider the confidence scores - lower confidence words might need special handling\n")
	sb.WriteString("9. Do not add ``` at the beginning or end of the output.\n")
	sb.WriteString("10. Do not add any other text or comments to the output.\n\n")
	sb.WriteString("Generate ONLY the SSML markup, no explanations or additional text:")

	return sb.String()
}

// BuildTimingUserPrompt renders the transcript together with the computed
// analysis and per-word timing lines.
func BuildTimingUserPrompt(
	transcript string,
	words []timing.Word,
	analysis *timing.Analysis,
) string {
	var sb strings.Builder

	sb.WriteString("TRANSCRIPT (ONLY RESPOND WITH SSML MARKUP TEXT. NOTHING ELSE):\n")
	sb.WriteString(transcript)
	sb.WriteString("\n\nTIMING ANALYSIS:\n")
	sb.WriteString(fmt.Sprintf(
		"- Average speaking rate: %.2f words per second\n",
		analysis.AverageSpeakingRate,
	))
	sb.WriteString(fmt.Sprintf(
		"- Detected pauses: %d significant pauses\n",
		len(analysis.SignificantPauses),
	))
	sb.WriteString(fmt.Sprintf(
		"- Speech segments: %d segments\n",
		len(analysis.SpeechSegments),
	))
	sb.WriteString("\nWORD-LEVEL TIMING DATA:\n")

	for i, word := range words {
		pause := 0.0
		if i < len(words)-1 {
			pause = words[i+1].Start - word.End
		}
		sb.WriteString(fmt.Sprintf(
			"%q (%.2fs-%.2fs, confidence: %.2f, pause after: %.2fs)\n",
			word.Display(), word.Start, word.End, word.Confidence, pause,
		))
	}

	return sb.String()
}

// finalizeDocument trims provider output, enforces the wrapper invariant by
// repairing documents that are missing it, and rejects empty completions.
func finalizeDocument(raw, langCode string) (Document, error) {
	raw = stripCodeFences(raw)
	if raw == "" {
		return "", ErrNoMarkupGenerated
	}

	doc := Repair(Document(raw), langCode)
	if err := Validate(doc); err != nil {
		return "", fmt.Errorf("generated markup failed validation: %w", err)
	}

	return doc, nil
}

// removes markdown code fences some models insist on adding
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```xml")
	s = strings.TrimPrefix(s, "```ssml")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
