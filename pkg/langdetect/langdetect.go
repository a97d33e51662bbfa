package langdetect

import (
	"unicode"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
	iso6393 "github.com/barbashov/iso639-3"

	"github.com/bearslyricattack/CompliAd/pkg/models"
)

const (
	// Texts shorter than this cannot be classified reliably.
	minDetectLength = 80

	// The classifier only sees the first slice of long texts.
	classifierSampleSize = 6000

	devanagariMixedRatio = 0.15
	latinMixedRatio      = 0.15
	devanagariHindiRatio = 0.20
)

// ScriptRatios returns the fraction of Devanagari code points and ASCII
// Latin letters over the non-whitespace length of text.
func ScriptRatios(text string) (devanagari, latin float64) {
	var devCount, latCount, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		switch {
		case r >= 0x0900 && r <= 0x097F:
			devCount++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			latCount++
		}
	}
	if total == 0 {
		return 0, 0
	}
	return float64(devCount) / float64(total), float64(latCount) / float64(total)
}

// Detect tags the language of text: "hi", "mixed", "unknown", or a
// two-letter code derived from the classifier. Detection is stable: the
// same text always yields the same tag.
func Detect(text string) string {
	dev, lat := ScriptRatios(text)
	if dev > devanagariMixedRatio && lat > latinMixedRatio {
		return models.LanguageMixed
	}
	if dev > devanagariHindiRatio {
		return models.LanguageHindi
	}
	if utf8.RuneCountInString(text) < minDetectLength {
		return models.LanguageUnknown
	}

	sample := text
	if runes := []rune(sample); len(runes) > classifierSampleSize {
		sample = string(runes[:classifierSampleSize])
	}
	info := whatlanggo.Detect(sample)
	code3 := whatlanggo.LangToString(info.Lang)
	if code3 == "" {
		return models.LanguageUnknown
	}
	if lang := iso6393.FromPart3Code(code3); lang != nil && lang.Part1 != "" {
		return lang.Part1
	}
	return models.LanguageUnknown
}

// DetectMetadata assembles the content metadata for cleaned text.
func DetectMetadata(cleaned, sourceType, contentFormat, method string) models.ContentMetadata {
	return models.ContentMetadata{
		SourceType:       sourceType,
		ContentFormat:    contentFormat,
		ExtractionMethod: method,
		Language:         Detect(cleaned),
	}
}
