package cleaner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanNormalizesLineEndings(t *testing.T) {
	got := Clean("first paragraph line\r\nsecond paragraph line\rthird paragraph line")
	assert.Equal(t, "first paragraph line\nsecond paragraph line\nthird paragraph line", got)
}

func TestCleanCollapsesIntraLineWhitespace(t *testing.T) {
	got := Clean("hello    world\t\tagain")
	assert.Equal(t, "hello world again", got)
}

func TestCleanDropsEmptyLines(t *testing.T) {
	got := Clean("one real sentence here\n\n\n   \nanother real sentence here")
	assert.Equal(t, "one real sentence here\nanother real sentence here", got)
}

func TestCleanDropsShortNavigationLines(t *testing.T) {
	raw := strings.Join([]string{
		"Home | About | Contact",
		"Subscribe to our newsletter",
		"The clinical study followed two hundred participants over a full year of treatment.",
		"Privacy Policy",
	}, "\n")

	got := Clean(raw)
	assert.Equal(t, "The clinical study followed two hundred participants over a full year of treatment.", got)
}

func TestCleanKeepsLongLinesEvenWithNavTerms(t *testing.T) {
	long := "You can share this article with your doctor, and the full terms of the clinical trial are described in the appendix for participants."
	require.GreaterOrEqual(t, len(long), 120)

	got := Clean(long)
	assert.Equal(t, long, got)
}

func TestCleanKeepsMidLengthLinesWithNavTerms(t *testing.T) {
	// 90..119 chars: no boilerplate filtering, only deduplication.
	mid := "Researchers share their early findings about the new treatment with colleagues abroad today."
	require.GreaterOrEqual(t, len(mid), 90)
	require.Less(t, len(mid), 120)

	got := Clean(mid)
	assert.Equal(t, mid, got)
}

func TestCleanDeduplicatesShortLines(t *testing.T) {
	raw := "Buy now and save big\nbuy now AND save big\nBuy now and save big"
	got := Clean(raw)
	assert.Equal(t, "Buy now and save big", got)
}

func TestCleanPreservesParagraphs(t *testing.T) {
	para1 := "The randomized controlled trial enrolled patients across fourteen clinics and measured outcomes for twelve months straight."
	para2 := "Researchers observed that adherence to the daily regimen remained high even when participants reported mild side effects."
	got := Clean(para1 + "\n\n" + para2)
	assert.Equal(t, para1+"\n"+para2, got)
}

func TestEnforceContentLossGuard(t *testing.T) {
	raw := strings.Repeat("a", 100)

	assert.NoError(t, EnforceContentLossGuard(raw, strings.Repeat("a", 60)))
	assert.ErrorIs(t, EnforceContentLossGuard(raw, strings.Repeat("a", 59)), ErrCleaningLoss)
	assert.NoError(t, EnforceContentLossGuard("", ""))
}
