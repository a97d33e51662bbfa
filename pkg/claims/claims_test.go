package claims

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const filler = "The company was founded a decade ago and has offices in three cities across the country. "

func TestReduceShortTextPassesThrough(t *testing.T) {
	text := "This medicine cures everything."
	assert.Equal(t, text, Reduce(text, 10000))
}

func TestReduceKeepsClaimSentences(t *testing.T) {
	claim1 := "This medicine cures all diseases in 7 days."
	claim2 := "Clinical results show it is 95% effective."
	text := strings.Repeat(filler, 30) + claim1 + " " + strings.Repeat(filler, 10) + claim2

	got := Reduce(text, 10000)
	assert.Contains(t, got, claim1)
	assert.Contains(t, got, claim2)
	assert.NotContains(t, got, "founded a decade ago")
}

func TestReduceTargetsMeaningfulReduction(t *testing.T) {
	claim := "The treatment improves recovery and works faster than alternatives."
	text := strings.Repeat(filler, 40) + claim

	got := Reduce(text, 10000)
	ratio := float64(utf8.RuneCountInString(got)) / float64(utf8.RuneCountInString(text))
	assert.Less(t, ratio, 0.4, "claim subset should be a small fraction of the input")
}

func TestReduceFallsBackToPrefixWhenNoClaims(t *testing.T) {
	text := strings.Repeat(filler, 200)
	require.Greater(t, utf8.RuneCountInString(text), 10000)

	got := Reduce(text, 10000)
	assert.Equal(t, 10000, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(text, got))
}

func TestReduceSplitsOnDevanagariDanda(t *testing.T) {
	claim := "यह दवा 100% इलाज करती है।"
	text := strings.Repeat(filler, 30) + claim + " " + strings.Repeat(filler, 5)

	got := Reduce(text, 10000)
	assert.Contains(t, got, "100%")
}

func TestReduceCapsClaimSubset(t *testing.T) {
	claim := "This drug is the best treatment and cures patients in 3 days with 90% success. "
	text := strings.Repeat(claim, 300)

	got := Reduce(text, 1000)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 1000)
}
