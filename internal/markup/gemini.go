package markup

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/terminalsin/tunedub/internal/timing"
)

// implements Generator using Google Gemini
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiGenerator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiGenerator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (g *GeminiGenerator) FromText(
	ctx context.Context,
	text string,
) (Document, error) {
	if text == "" {
		return "", fmt.Errorf("text input is required")
	}

	prompt := BuildTextPrompt(text, g.options.languageCode())

	return g.generate(ctx, []*genai.Part{genai.NewPartFromText(prompt)})
}

func (g *GeminiGenerator) FromTranscript(
	ctx context.Context,
	transcript string,
	words []timing.Word,
	analysis *timing.Analysis,
) (Document, error) {
	if transcript == "" {
		return "", fmt.Errorf("transcript is required")
	}
	if analysis == nil {
		return "", fmt.Errorf("timing analysis is required")
	}

	parts := []*genai.Part{
		genai.NewPartFromText(BuildTimingSystemPrompt(g.options.languageCode())),
		genai.NewPartFromText(BuildTimingUserPrompt(transcript, words, analysis)),
	}

	return g.generate(ctx, parts)
}

func (g *GeminiGenerator) generate(
	ctx context.Context,
	parts []*genai.Part,
) (Document, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("markup generation failed: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini: %w", ErrNoMarkupGenerated)
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					responseText += part.Text
				}
			}
		}
	}

	return finalizeDocument(responseText, g.options.languageCode())
}

func (g *GeminiGenerator) Close() error {
	return nil
}
