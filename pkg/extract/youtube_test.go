package extract

import (
	"testing"

	youtube "github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimedTextJoinsSegments(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.0" dur="2.1">Guaranteed weight loss</text>
  <text start="2.1" dur="1.8">  in just seven days  </text>
  <text start="3.9" dur="1.0"></text>
</transcript>`)

	got, err := parseTimedText(data)
	require.NoError(t, err)
	assert.Equal(t, "Guaranteed weight loss in just seven days", got)
}

func TestParseTimedTextUnescapesEntities(t *testing.T) {
	data := []byte(`<transcript><text>doctors &amp; experts say it&#39;s safe</text></transcript>`)
	got, err := parseTimedText(data)
	require.NoError(t, err)
	assert.Equal(t, "doctors & experts say it's safe", got)
}

func TestParseTimedTextEmptyDocument(t *testing.T) {
	got, err := parseTimedText([]byte(`<transcript></transcript>`))
	require.NoError(t, err)
	assert.Equal(t, "", got)

	_, err = parseTimedText([]byte(`not xml at all <`))
	assert.Error(t, err)
}

func TestPickCaptionTrackPrefersManualEnglish(t *testing.T) {
	auto := youtube.CaptionTrack{BaseURL: "http://x/auto", LanguageCode: "en", Kind: "asr"}
	manualHindi := youtube.CaptionTrack{BaseURL: "http://x/hi", LanguageCode: "hi"}
	manualEnglish := youtube.CaptionTrack{BaseURL: "http://x/en", LanguageCode: "en-US"}

	got := pickCaptionTrack([]youtube.CaptionTrack{auto, manualHindi, manualEnglish})
	assert.Equal(t, manualEnglish, got)

	// Without an English manual track, any manual track beats auto
	// generated ones.
	got = pickCaptionTrack([]youtube.CaptionTrack{auto, manualHindi})
	assert.Equal(t, manualHindi, got)

	// Auto generated is the last resort.
	got = pickCaptionTrack([]youtube.CaptionTrack{auto})
	assert.Equal(t, auto, got)
}

func TestPlainTimedTextURL(t *testing.T) {
	got := plainTimedTextURL("https://www.youtube.com/api/timedtext?v=abc&fmt=srv3&lang=en")
	assert.NotContains(t, got, "fmt=")
	assert.Contains(t, got, "lang=en")

	// Other format values are left alone.
	got = plainTimedTextURL("https://www.youtube.com/api/timedtext?v=abc&fmt=vtt")
	assert.Contains(t, got, "fmt=vtt")

	// Unparseable input passes through unchanged.
	assert.Equal(t, ":bad:", plainTimedTextURL(":bad:"))
}
