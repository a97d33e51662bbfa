package reasoner

import (
	"regexp"
	"unicode/utf8"

	"github.com/bearslyricattack/CompliAd/pkg/models"
)

// Audit calls always get the full output budget; the router only picks
// the model.
const auditMaxTokens = 8192

var numericClaimRe = regexp.MustCompile(`\d+\s*%|\bin \d+ days\b`)

// Router picks the reasoner model for one request. Long inputs and
// complex inputs go to the heavy model, short plain ones to the light
// model.
type Router struct {
	shortThreshold int
	longThreshold  int
	lightModel     string
	heavyModel     string
}

// NewRouter creates a router with the configured thresholds and models.
func NewRouter(shortThreshold, longThreshold int, lightModel, heavyModel string) *Router {
	return &Router{
		shortThreshold: shortThreshold,
		longThreshold:  longThreshold,
		lightModel:     lightModel,
		heavyModel:     heavyModel,
	}
}

// Select returns the model id for the given content and metadata.
func (r *Router) Select(content string, meta models.ContentMetadata) string {
	length := utf8.RuneCountInString(content)
	switch {
	case length >= r.longThreshold:
		return r.heavyModel
	case length < r.shortThreshold && !r.isComplex(content, meta):
		return r.lightModel
	case r.isComplex(content, meta):
		return r.heavyModel
	default:
		return r.lightModel
	}
}

// isComplex flags inputs that need the stronger model regardless of
// length: non-English or mixed-script text, or dense numeric claims.
func (r *Router) isComplex(content string, meta models.ContentMetadata) bool {
	if meta.Language == models.LanguageHindi || meta.Language == models.LanguageMixed {
		return true
	}
	return len(numericClaimRe.FindAllString(content, 4)) >= 3
}
