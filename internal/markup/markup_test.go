package markup

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestValidateAcceptsWrappedDocument(t *testing.T) {
	doc := Document(`<speak><lang xml:lang="en-us">Hello <break time="300ms"/> world.</lang></speak>`)
	if err := Validate(doc); err != nil {
		t.Errorf("Validate returned error for valid document: %v", err)
	}
}

func TestValidateAcceptsWhitespaceAndNesting(t *testing.T) {
	doc := Document(`
		<speak>
			<lang xml:lang="es-es">
				<prosody rate="slow">Hola</prosody>
			</lang>
		</speak>
	`)
	if err := Validate(doc); err != nil {
		t.Errorf("Validate returned error: %v", err)
	}
}

func TestValidateRejectsMissingSpeak(t *testing.T) {
	doc := Document(`<lang xml:lang="en-us">Hello</lang>`)
	if err := Validate(doc); !errors.Is(err, ErrMissingSpeakWrapper) {
		t.Errorf("expected ErrMissingSpeakWrapper, got %v", err)
	}
}

func TestValidateRejectsMissingLang(t *testing.T) {
	doc := Document(`<speak>Hello world</speak>`)
	if err := Validate(doc); !errors.Is(err, ErrMissingLangWrapper) {
		t.Errorf("expected ErrMissingLangWrapper, got %v", err)
	}
}

func TestRepairWrapsBareText(t *testing.T) {
	repaired := Repair(Document("Hello world"), "en-us")
	if err := Validate(repaired); err != nil {
		t.Fatalf("repaired document failed validation: %v", err)
	}
	if !strings.Contains(string(repaired), "Hello world") {
		t.Errorf("repaired document lost content: %q", repaired)
	}
}

func TestRepairInsertsLangScope(t *testing.T) {
	repaired := Repair(Document("<speak>Hello</speak>"), "fr-fr")
	if err := Validate(repaired); err != nil {
		t.Fatalf("repaired document failed validation: %v", err)
	}
	if !strings.Contains(string(repaired), `xml:lang="fr-fr"`) {
		t.Errorf("expected fr-fr language scope, got %q", repaired)
	}
}

func TestRepairLeavesValidDocumentUnchanged(t *testing.T) {
	doc := Document(`<speak><lang xml:lang="en-us">Hi</lang></speak>`)
	if got := Repair(doc, "en-us"); got != doc {
		t.Errorf("Repair modified a valid document: %q", got)
	}
}

func TestTagsReturnsOrderedSkeleton(t *testing.T) {
	doc := Document(`<speak><lang xml:lang="en-us"><prosody rate="fast">Hi</prosody><break time="1s"/></lang></speak>`)

	want := []string{
		"<speak>",
		`<lang xml:lang="en-us">`,
		`<prosody rate="fast">`,
		"</prosody>",
		`<break time="1s"/>`,
		"</lang>",
		"</speak>",
	}

	got := Tags(doc)
	if len(got) != len(want) {
		t.Fatalf("expected %d tags, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSameStructure(t *testing.T) {
	original := Document(`<speak><lang xml:lang="en-us"><emphasis level="strong">Hello</emphasis> world</lang></speak>`)
	translated := Document(`<speak><lang xml:lang="en-us"><emphasis level="strong">Hola</emphasis> mundo</lang></speak>`)
	broken := Document(`<speak><lang xml:lang="en-us">Hola mundo</lang></speak>`)

	if !SameStructure(original, translated) {
		t.Error("expected identical structure for translated document")
	}
	if SameStructure(original, broken) {
		t.Error("expected structure mismatch when tags are dropped")
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```xml\n<speak>x</speak>\n```", "<speak>x</speak>"},
		{"```\n<speak>x</speak>\n```", "<speak>x</speak>"},
		{"<speak>x</speak>", "<speak>x</speak>"},
		{"   <speak>x</speak>  ", "<speak>x</speak>"},
	}

	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFinalizeDocumentRepairsMissingWrapper(t *testing.T) {
	doc, err := finalizeDocument("Hello there", "en-us")
	if err != nil {
		t.Fatalf("finalizeDocument returned error: %v", err)
	}
	if err := Validate(doc); err != nil {
		t.Errorf("finalized document failed validation: %v", err)
	}
}

func TestFinalizeDocumentRejectsEmptyCompletion(t *testing.T) {
	if _, err := finalizeDocument("", "en-us"); !errors.Is(err, ErrNoMarkupGenerated) {
		t.Errorf("expected ErrNoMarkupGenerated, got %v", err)
	}
}

func TestFactoryReturnsOpenAIGenerator(t *testing.T) {
	gen, err := Factory(context.Background(), ProviderOpenAI, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := gen.(*OpenAIGenerator); !ok {
		t.Errorf("expected *OpenAIGenerator, got %T", gen)
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	ctx := context.Background()
	if _, err := Factory(ctx, Provider("unknown"), "fake-key", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
