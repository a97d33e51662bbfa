package reasoner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bearslyricattack/CompliAd/pkg/models"
)

func newTestRouter() *Router {
	return NewRouter(3000, 10000, "light-model", "heavy-model")
}

func TestSelectShortPlainContent(t *testing.T) {
	r := newTestRouter()
	got := r.Select("A short plain advertisement for herbal tea.", models.ContentMetadata{Language: models.LanguageEnglish})
	assert.Equal(t, "light-model", got)
}

func TestSelectLongContent(t *testing.T) {
	r := newTestRouter()
	long := strings.Repeat("a", 10000)
	got := r.Select(long, models.ContentMetadata{Language: models.LanguageEnglish})
	assert.Equal(t, "heavy-model", got)
}

func TestSelectLongThresholdBoundary(t *testing.T) {
	r := newTestRouter()
	justUnder := strings.Repeat("a", 9999)
	assert.Equal(t, "light-model", r.Select(justUnder, models.ContentMetadata{Language: models.LanguageEnglish}))
}

func TestSelectHindiContentIsComplex(t *testing.T) {
	r := newTestRouter()
	got := r.Select("short text", models.ContentMetadata{Language: models.LanguageHindi})
	assert.Equal(t, "heavy-model", got)

	got = r.Select("short text", models.ContentMetadata{Language: models.LanguageMixed})
	assert.Equal(t, "heavy-model", got)
}

func TestSelectDenseNumericClaimsAreComplex(t *testing.T) {
	r := newTestRouter()
	content := "Lose 10% body fat, see 90% improvement, results in 7 days."
	got := r.Select(content, models.ContentMetadata{Language: models.LanguageEnglish})
	assert.Equal(t, "heavy-model", got)
}

func TestSelectTwoNumericClaimsStayLight(t *testing.T) {
	r := newTestRouter()
	content := "See 90% improvement in 7 days."
	got := r.Select(content, models.ContentMetadata{Language: models.LanguageEnglish})
	assert.Equal(t, "light-model", got)
}

func TestSelectMidLengthPlainContent(t *testing.T) {
	r := newTestRouter()
	mid := strings.Repeat("a", 5000)
	got := r.Select(mid, models.ContentMetadata{Language: models.LanguageEnglish})
	assert.Equal(t, "light-model", got)
}
