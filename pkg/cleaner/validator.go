package cleaner

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minTextLength        = 3000
	minWordCount         = 450
	headingHeavyMinWords = 900

	headingLineRatio = 0.70
	longLineRatio    = 0.25
)

var truncationRe = regexp.MustCompile(`(?i)(read more|continue reading|subscribe to read|view more)`)

// ValidationResult scores extracted text for sufficiency. A failed
// validation is a signal to try the next strategy, not a fatal error.
type ValidationResult struct {
	IsValid             bool
	Warnings            []string
	Reasons             []string
	Length              int
	WordCount           int
	HeadingHeavy        bool
	TruncationSuspected bool
}

// Validate computes sufficiency signals over cleaned text.
func Validate(text string) ValidationResult {
	res := ValidationResult{
		Length:    utf8.RuneCountInString(text),
		WordCount: len(strings.Fields(text)),
	}
	res.HeadingHeavy = isHeadingHeavy(text)
	res.TruncationSuspected = isTruncationSuspected(text)

	if res.TruncationSuspected {
		res.Warnings = append(res.Warnings, "truncation suspected")
	}
	if res.HeadingHeavy {
		res.Warnings = append(res.Warnings, "content is heading-heavy")
	}

	res.IsValid = true
	if res.Length < minTextLength {
		res.IsValid = false
		res.Reasons = append(res.Reasons, "text too short")
	}
	if res.WordCount < minWordCount {
		res.IsValid = false
		res.Reasons = append(res.Reasons, "too few words")
	}
	if res.HeadingHeavy && res.WordCount < headingHeavyMinWords {
		res.IsValid = false
		res.Reasons = append(res.Reasons, "mostly headings with little body text")
	}
	return res
}

func isHeadingHeavy(text string) bool {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return false
	}

	headingLike := 0
	longLines := 0
	for _, line := range lines {
		words := len(strings.Fields(line))
		if words >= 12 {
			longLines++
		}
		if isHeadingLine(line, words) {
			headingLike++
		}
	}

	if float64(longLines)/float64(len(lines)) >= longLineRatio {
		return false
	}
	return float64(headingLike)/float64(len(lines)) >= headingLineRatio
}

// A line is heading-like when it has at most 6 words, or is a run of at
// least 6 upper-case characters, or starts with '#', or ends with ':'.
func isHeadingLine(line string, words int) bool {
	if words <= 6 {
		return true
	}
	if strings.HasPrefix(line, "#") || strings.HasSuffix(line, ":") {
		return true
	}
	return utf8.RuneCountInString(line) >= 6 && isAllUpper(line)
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

func isTruncationSuspected(text string) bool {
	trimmed := strings.TrimSpace(text)
	if strings.HasSuffix(trimmed, "…") || strings.HasSuffix(trimmed, "...") {
		return true
	}
	return truncationRe.MatchString(trimmed)
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
