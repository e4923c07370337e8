package matchers

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

var resultLanguages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.German,
	lingua.French,
	lingua.Italian,
	lingua.Dutch,
	lingua.Czech,
}

type LanguageDetector struct {
	detector lingua.LanguageDetector
}

func NewLanguageDetector() *LanguageDetector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(resultLanguages...).
		WithMinimumRelativeDistance(0.1).
		Build()
	return &LanguageDetector{detector: detector}
}

// Detect returns the ISO 639-1 code of the text's language, or "" when the text is
// too short or ambiguous.
func (d *LanguageDetector) Detect(text string) string {
	if d == nil || len(strings.Fields(text)) < 3 {
		return ""
	}
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return language.IsoCode639_1().String()
}
