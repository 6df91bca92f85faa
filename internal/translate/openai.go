package translate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/terminalsin/tunedub/internal/markup"
)

// implements Translator using OpenAI Chat Completions
type OpenAITranslator struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAITranslator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "gpt-4o"
	}

	return &OpenAITranslator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *OpenAITranslator) TranslateMarkup(
	ctx context.Context,
	doc markup.Document,
	targetLanguage string,
) (markup.Document, error) {
	if doc == "" || targetLanguage == "" {
		return "", fmt.Errorf("markup document and target language are required")
	}

	completion, err := t.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(SystemPrompt),
				openai.UserMessage(BuildPrompt(doc, targetLanguage)),
			},
			Model:       t.model,
			Temperature: openai.Float(0.3),
		},
	)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI: %w", ErrEmptyTranslation)
	}

	translated, err := finalize(completion.Choices[0].Message.Content)
	if err != nil {
		return "", fmt.Errorf(
			"%w (response: %s)",
			err,
			truncateString(completion.Choices[0].Message.Content, 200),
		)
	}

	return translated, nil
}

func (t *OpenAITranslator) Close() error {
	return nil
}
