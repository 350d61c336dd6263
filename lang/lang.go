// Package lang holds the supported language table and best-effort source
// language detection for transcribed text.
package lang

import (
	"sort"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Unknown is returned when detection fails; it never propagates as an error.
const Unknown = "unknown"

// Languages maps human-readable names to the ISO codes accepted by the
// translation and synthesis backends.
var Languages = map[string]string{
	"English":              "en",
	"Hindi":                "hi",
	"Marathi":              "mr",
	"Spanish":              "es",
	"French":               "fr",
	"German":               "de",
	"Chinese (Simplified)": "zh-cn",
	"Japanese":             "ja",
	"Russian":              "ru",
	"Arabic":               "ar",
	"Portuguese":           "pt",
	"Bengali":              "bn",
	"Urdu":                 "ur",
	"Punjabi":              "pa",
}

// Names returns the language names in stable alphabetical order.
func Names() []string {
	names := make([]string, 0, len(Languages))
	for name := range Languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Code resolves a language name or code to its ISO code. Matching is
// case-insensitive on both forms.
func Code(nameOrCode string) (string, bool) {
	s := strings.TrimSpace(nameOrCode)
	for name, code := range Languages {
		if strings.EqualFold(s, code) || strings.EqualFold(s, name) {
			return code, true
		}
	}
	return "", false
}

var detectable = []lingua.Language{
	lingua.English,
	lingua.Hindi,
	lingua.Marathi,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Russian,
	lingua.Arabic,
	lingua.Portuguese,
	lingua.Bengali,
	lingua.Urdu,
	lingua.Punjabi,
}

// Detector guesses the language of a piece of text using local statistical
// models, so detection keeps working when the network backends are down.
type Detector struct {
	detector lingua.LanguageDetector
}

func NewDetector() *Detector {
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(detectable...).
		Build()
	return &Detector{detector: d}
}

// Detect returns the ISO code of the most likely language, or Unknown when
// the text is empty or no language is confident enough.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return Unknown
	}
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return Unknown
	}
	code := strings.ToLower(language.IsoCode639_1().String())
	if code == "zh" {
		code = "zh-cn"
	}
	return code
}
