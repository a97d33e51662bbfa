package claims

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// reduceThreshold is the content length above which reduction kicks in.
const reduceThreshold = 2000

// Claim signals: health-claim verbs, medical nouns, effectiveness
// adjectives, comparatives, and claim-like numbers.
var claimPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(cure|treat|heal|prevent)`),
	regexp.MustCompile(`(?i)\b(medicine|drug|treatment|therapy)\b`),
	regexp.MustCompile(`(?i)\b(effective|works|improves|boosts)\b`),
	regexp.MustCompile(`(?i)\b(better|best|faster|stronger)\b`),
	regexp.MustCompile(`\d+\s*%`),
	regexp.MustCompile(`(?i)\bin \d+ days\b`),
}

// Sentence-ish chunks, terminated by western punctuation, the Devanagari
// danda, or a line break.
var sentenceRe = regexp.MustCompile(`[^.!?।\n]+[.!?।]*`)

// Reduce extracts the claim-bearing subset of text when it is long
// enough to warrant reduction; short texts pass through unchanged. If no
// sentence carries a claim signal, the first maxContent characters are
// returned instead.
func Reduce(text string, maxContent int) string {
	if utf8.RuneCountInString(text) <= reduceThreshold {
		return text
	}

	var claims []string
	for _, sentence := range splitSentences(text) {
		if bearsClaim(sentence) {
			claims = append(claims, sentence)
		}
	}
	if len(claims) == 0 {
		return truncateRunes(text, maxContent)
	}
	return truncateRunes(strings.Join(claims, " "), maxContent)
}

func splitSentences(text string) []string {
	var sentences []string
	for _, m := range sentenceRe.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		if m != "" {
			sentences = append(sentences, m)
		}
	}
	return sentences
}

func bearsClaim(sentence string) bool {
	for _, p := range claimPatterns {
		if p.MatchString(sentence) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
