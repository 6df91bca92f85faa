package markup

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/terminalsin/tunedub/internal/timing"
)

// implements Generator using OpenAI Chat Completions
type OpenAIGenerator struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAIGenerator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "gpt-4o"
	}

	return &OpenAIGenerator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (g *OpenAIGenerator) FromText(
	ctx context.Context,
	text string,
) (Document, error) {
	if text == "" {
		return "", fmt.Errorf("text input is required")
	}

	prompt := BuildTextPrompt(text, g.options.languageCode())

	completion, err := g.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model:       g.model,
			Temperature: openai.Float(0.3),
		},
	)
	if err != nil {
		return "", fmt.Errorf("markup generation failed: %w", err)
	}

	return g.parseResponse(completion)
}

func (g *OpenAIGenerator) FromTranscript(
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

	completion, err := g.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(
					BuildTimingSystemPrompt(g.options.languageCode()),
				),
				openai.UserMessage(
					BuildTimingUserPrompt(transcript, words, analysis),
				),
			},
			Model:       g.model,
			Temperature: openai.Float(0.3),
			MaxTokens:   openai.Int(4000),
		},
	)
	if err != nil {
		return "", fmt.Errorf("timing-aware markup generation failed: %w", err)
	}

	return g.parseResponse(completion)
}

func (g *OpenAIGenerator) parseResponse(
	completion *openai.ChatCompletion,
) (Document, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI: %w", ErrNoMarkupGenerated)
	}

	return finalizeDocument(
		completion.Choices[0].Message.Content,
		g.options.languageCode(),
	)
}

func (g *OpenAIGenerator) Close() error {
	return nil
}
