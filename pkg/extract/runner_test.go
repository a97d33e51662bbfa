package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	method   string
	out      string
	err      error
	metadata bool
	calls    int
}

func (s *stubExtractor) Method() string { return s.method }

func (s *stubExtractor) Extract(_ context.Context, _ Source) (string, error) {
	s.calls++
	return s.out, s.err
}

func (s *stubExtractor) MetadataOnly() bool { return s.metadata }

// longText yields cleaned text comfortably above the minimum length.
func longText() string {
	sentence := "The advertised supplement was evaluated in a twelve month observational study across several clinics in the region. "
	return strings.Repeat(sentence, 5)
}

func webProfile(strategies ...Extractor) Profile {
	return Profile{SourceType: "blog", ContentFormat: "article", Strategies: strategies}
}

func TestRunFirstStrategyWins(t *testing.T) {
	first := &stubExtractor{method: "one", out: longText()}
	second := &stubExtractor{method: "two", out: longText()}

	got, err := NewRunner().Run(context.Background(), webProfile(first, second), Source{})
	require.NoError(t, err)

	assert.Equal(t, "one", got.ExtractionMethod)
	assert.Equal(t, "blog", got.SourceType)
	assert.Equal(t, "article", got.ContentFormat)
	assert.NotEmpty(t, got.Cleaned)
	assert.Equal(t, 0, second.calls)
}

func TestRunAdvancesPastFailures(t *testing.T) {
	first := &stubExtractor{method: "one", err: errors.New("upstream 503")}
	second := &stubExtractor{method: "two", out: longText()}

	got, err := NewRunner().Run(context.Background(), webProfile(first, second), Source{})
	require.NoError(t, err)
	assert.Equal(t, "two", got.ExtractionMethod)
}

func TestRunAdvancesPastTooShortContent(t *testing.T) {
	first := &stubExtractor{method: "one", out: "Barely anything survived the cleaning pass here."}
	second := &stubExtractor{method: "two", out: longText()}

	got, err := NewRunner().Run(context.Background(), webProfile(first, second), Source{})
	require.NoError(t, err)
	assert.Equal(t, "two", got.ExtractionMethod)
	assert.Equal(t, 1, first.calls)
}

func TestRunMetadataOnlyExemptFromMinLength(t *testing.T) {
	meta := &stubExtractor{method: "metadata_only", out: "Title: Miracle tonic; Description: cures everything", metadata: true}

	got, err := NewRunner().Run(context.Background(), webProfile(meta), Source{})
	require.NoError(t, err)
	assert.Equal(t, "metadata_only", got.ExtractionMethod)
}

func TestRunAdvancesWhenCleaningLosesTooMuch(t *testing.T) {
	// Cleaning deduplicates short lines, so heavy repetition trips the
	// content-loss guard.
	lossy := strings.Repeat("Buy now and save big today\n", 50)
	first := &stubExtractor{method: "one", out: lossy}
	second := &stubExtractor{method: "two", out: longText()}

	got, err := NewRunner().Run(context.Background(), webProfile(first, second), Source{})
	require.NoError(t, err)
	assert.Equal(t, "two", got.ExtractionMethod)
}

func TestRunExhaustedCarriesLastError(t *testing.T) {
	lastErr := errors.New("browser crashed")
	first := &stubExtractor{method: "one", err: errors.New("proxy down")}
	second := &stubExtractor{method: "two", err: lastErr}

	_, err := NewRunner().Run(context.Background(), webProfile(first, second), Source{})

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.ErrorIs(t, exhausted, lastErr)
}

func TestRunStopsOnWebPageSignal(t *testing.T) {
	first := &stubExtractor{method: "one", err: ErrIsWebPage}
	second := &stubExtractor{method: "two", out: longText()}

	_, err := NewRunner().Run(context.Background(), webProfile(first, second), Source{})
	assert.ErrorIs(t, err, ErrIsWebPage)
	assert.Equal(t, 0, second.calls)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	first := &stubExtractor{method: "one", out: longText()}
	_, err := NewRunner().Run(ctx, webProfile(first), Source{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, first.calls)
}
