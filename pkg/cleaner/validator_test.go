package cleaner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func longArticle() string {
	sentence := "The study tracked patient outcomes across several regions and reported consistent improvements in recovery time overall."
	return strings.Repeat(sentence+"\n", 40)
}

func TestValidateAcceptsSubstantialArticle(t *testing.T) {
	res := Validate(longArticle())
	require.True(t, res.IsValid, "reasons: %v", res.Reasons)
	assert.GreaterOrEqual(t, res.Length, 3000)
	assert.GreaterOrEqual(t, res.WordCount, 450)
	assert.False(t, res.HeadingHeavy)
}

func TestValidateRejectsShortText(t *testing.T) {
	res := Validate("A short promotional blurb.")
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Reasons, "text too short")
	assert.Contains(t, res.Reasons, "too few words")
}

func TestValidateRejectsHeadingHeavyText(t *testing.T) {
	line := "SUPPLEMENT BENEFITS OVERVIEW DOSAGE PRICING DETAILS"
	text := strings.Repeat(line+"\n", 80)

	res := Validate(text)
	require.GreaterOrEqual(t, res.Length, 3000)
	require.GreaterOrEqual(t, res.WordCount, 450)
	assert.True(t, res.HeadingHeavy)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Reasons, "mostly headings with little body text")
}

func TestValidateFlagsTruncation(t *testing.T) {
	res := Validate(longArticle() + "\nClick here to continue reading")
	assert.Contains(t, res.Warnings, "truncation suspected")
	assert.True(t, res.TruncationSuspected)

	res = Validate("The trial results were promising…")
	assert.True(t, res.TruncationSuspected)

	res = Validate(longArticle())
	assert.False(t, res.TruncationSuspected)
}

func TestValidateHeadingRuleSkippedWhenLongLinesCommon(t *testing.T) {
	// Half headings, half full sentences: the long-line ratio disables
	// the heading-heavy rule.
	heading := "DOSAGE:"
	sentence := "Patients in the intervention group reported measurable improvement within the first six weeks of supervised treatment."
	text := strings.Repeat(heading+"\n"+sentence+"\n", 30)

	res := Validate(text)
	assert.False(t, res.HeadingHeavy)
}
