package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/terminalsin/tunedub/internal/config"
)

func TestNewTranslatorSkipsEnglishTargets(t *testing.T) {
	tests := []string{"", "english", "English", "en", " EN "}

	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			translator, err := newTranslator(
				context.Background(), config.Config{}, target, "openai", "",
			)
			if err != nil {
				t.Fatalf("newTranslator(%q) error: %v", target, err)
			}
			if translator != nil {
				t.Errorf("expected nil translator for target %q", target)
			}
		})
	}
}

func TestNewTranslatorRequiresCredentials(t *testing.T) {
	_, err := newTranslator(
		context.Background(), config.Config{}, "spanish", "openai", "",
	)
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("expected missing credential error, got %v", err)
	}

	_, err = newTranslator(
		context.Background(), config.Config{}, "spanish", "anthropic", "",
	)
	if err == nil || !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Errorf("expected missing credential error, got %v", err)
	}
}

func TestNewGeneratorRejectsUnknownProvider(t *testing.T) {
	_, err := newGenerator(
		context.Background(), config.Config{}, "whisper", "",
	)
	if err == nil || !strings.Contains(err.Error(), "unsupported markup provider") {
		t.Errorf("expected unsupported provider error, got %v", err)
	}
}
