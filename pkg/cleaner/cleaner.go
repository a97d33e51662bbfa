package cleaner

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrCleaningLoss is returned when cleaning removed too much of the raw
// text, which usually means paragraphs were misclassified as boilerplate.
var ErrCleaningLoss = errors.New("cleaning removed too much content")

const (
	// MinCleaned is the smallest cleaned length the strategy runner
	// accepts before moving on to the next extractor.
	MinCleaned = 300

	// maxLossRatio is the share of raw text that cleaning may discard.
	maxLossRatio = 0.40

	// Lines at or above keepAlwaysLen are never dropped; boilerplate
	// filtering applies only below navFilterLen.
	navFilterLen  = 90
	keepAlwaysLen = 120
)

var (
	navTermsRe = regexp.MustCompile(`(?i)\b(home|about|contact|privacy|terms|cookie|subscribe|newsletter|sign in|sign up|login|register|follow|share|advert|sponsored|related posts|comments|categories|tags|sidebar)\b`)
	sidebarRe  = regexp.MustCompile(`(?i)\b(popular|recent|recommended|archive|newsletter|share)\b`)
	intraWSRe  = regexp.MustCompile(`[ \t]+`)
)

// Clean normalizes extracted text: line endings, intra-line whitespace,
// empty lines, short navigation/sidebar lines, and near-duplicate short
// lines. It is deliberately conservative; paragraphs must survive.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	seen := make(map[string]bool)
	var kept []string
	for _, line := range strings.Split(normalized, "\n") {
		line = strings.TrimSpace(intraWSRe.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}

		n := utf8.RuneCountInString(line)
		if n >= keepAlwaysLen {
			kept = append(kept, line)
			continue
		}
		if n < navFilterLen && (navTermsRe.MatchString(line) || sidebarRe.MatchString(line)) {
			continue
		}

		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}

// EnforceContentLossGuard fails when cleaning dropped more than 40% of
// the raw text.
func EnforceContentLossGuard(raw, cleaned string) error {
	rawLen := utf8.RuneCountInString(raw)
	if rawLen == 0 {
		return nil
	}
	cleanedLen := utf8.RuneCountInString(cleaned)
	loss := float64(rawLen-cleanedLen) / float64(rawLen)
	if loss > maxLossRatio {
		return ErrCleaningLoss
	}
	return nil
}
