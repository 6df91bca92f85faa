package markup

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Document is tagged speech-synthesis text (SSML-style). The synthesis
// provider is strict about the outer structure: a <speak> root whose entire
// body is wrapped in a <lang xml:lang="..."> scope.
type Document string

func (d Document) String() string {
	return string(d)
}

// DefaultLanguageCode is the xml:lang value used when repairing documents
// that are missing the mandatory language scope.
const DefaultLanguageCode = "en-us"

var (
	ErrMissingSpeakWrapper = errors.New("markup missing <speak> wrapper")
	ErrMissingLangWrapper  = errors.New("markup missing <lang> wrapper")
)

var (
	speakOpenRe = regexp.MustCompile(`(?s)^\s*<speak[^>]*>`)
	langOpenRe  = regexp.MustCompile(`(?s)^\s*<lang\s[^>]*xml:lang\s*=\s*"[^"]+"[^>]*>`)
	tagRe       = regexp.MustCompile(`<[^>]+>`)
)

// Validate checks the mandatory outer structure. The body between the
// wrapper tags is not schema-checked; only the wrapping invariant the
// downstream synthesizer requires is enforced.
func Validate(d Document) error {
	s := strings.TrimSpace(string(d))

	open := speakOpenRe.FindString(s)
	if open == "" || !strings.HasSuffix(s, "</speak>") {
		return ErrMissingSpeakWrapper
	}

	body := strings.TrimSuffix(s[len(open):], "</speak>")
	if langOpenRe.FindString(body) == "" ||
		!strings.HasSuffix(strings.TrimSpace(body), "</lang>") {
		return ErrMissingLangWrapper
	}

	return nil
}

// Repair wraps a document that is missing the required outer structure.
// Documents that already validate are returned unchanged.
func Repair(d Document, langCode string) Document {
	if langCode == "" {
		langCode = DefaultLanguageCode
	}

	if err := Validate(d); err == nil {
		return d
	}

	s := strings.TrimSpace(string(d))

	if open := speakOpenRe.FindString(s); open != "" && strings.HasSuffix(s, "</speak>") {
		// speak wrapper present, language scope missing
		body := strings.TrimSuffix(s[len(open):], "</speak>")
		return Document(fmt.Sprintf(
			`%s<lang xml:lang="%s">%s</lang></speak>`,
			open, langCode, body,
		))
	}

	return Document(fmt.Sprintf(
		`<speak><lang xml:lang="%s">%s</lang></speak>`,
		langCode, s,
	))
}

// Tags returns the ordered list of tag tokens (opening, closing, and
// self-closing, with attributes) in the document. Translation must leave
// this sequence unchanged; only text nodes may differ.
func Tags(d Document) []string {
	return tagRe.FindAllString(string(d), -1)
}

// SameStructure reports whether two documents carry an identical tag
// skeleton in the same order.
func SameStructure(a, b Document) bool {
	ta := Tags(a)
	tb := Tags(b)
	if len(ta) != len(tb) {
		return false
	}
	for i := range ta {
		if ta[i] != tb[i] {
			return false
		}
	}
	return true
}
