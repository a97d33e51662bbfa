package report

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/bearslyricattack/CompliAd/pkg/models"
)

// ErrInvalidJSON is returned when no parseable JSON document can be
// recovered from the model output.
var ErrInvalidJSON = errors.New("invalid report json")

// Stable placeholders for missing violation fields.
const (
	placeholderRegulation  = "Unspecified regulation"
	placeholderTitle       = "Untitled violation"
	placeholderEvidence    = "(evidence unavailable)"
	placeholderTranslation = "(translation unavailable)"

	// Fix stubs are bracketed so reviewers can spot them downstream.
	placeholderFix = "[Compliant rewrite pending review]"

	// suspiciousCleanScore marks a no-violation verdict as a probable
	// false negative when the raw score is this high.
	suspiciousCleanScore = 90
)

var placeholderGuidance = []string{
	"Review the claim against the cited regulation before republishing.",
	"Have a qualified compliance reviewer approve the final copy.",
}

var fenceRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// Parse recovers a Report from arbitrary model output: Markdown fences
// are stripped, the first balanced JSON document is sliced out, trailing
// commas are dropped, and the result is normalized.
func Parse(raw string) (*models.Report, error) {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	jsonStr = trailingCommaRe.ReplaceAllString(jsonStr, "$1")
	if !gjson.Valid(jsonStr) {
		return nil, ErrInvalidJSON
	}
	doc := gjson.Parse(jsonStr)

	rep := &models.Report{
		Score:         coerceScore(doc.Get("score")),
		Status:        strings.TrimSpace(doc.Get("status").String()),
		Summary:       strings.TrimSpace(doc.Get("summary").String()),
		Transcription: doc.Get("transcription").String(),
		FinancialPenalty: models.FinancialPenalty{
			RiskLevel:   strings.TrimSpace(doc.Get("financialPenalty.riskLevel").String()),
			Description: strings.TrimSpace(doc.Get("financialPenalty.description").String()),
		},
		EthicalMarketing: models.EthicalMarketing{
			Score:      coerceScore(doc.Get("ethicalMarketing.score")),
			Assessment: strings.TrimSpace(doc.Get("ethicalMarketing.assessment").String()),
		},
	}

	for _, v := range doc.Get("violations").Array() {
		rep.Violations = append(rep.Violations, parseViolation(v))
	}

	// A clean verdict with a high raw score is contradictory; remember
	// it before normalization clears the score.
	rep.SuspiciousClean = len(rep.Violations) == 0 && rep.Score >= suspiciousCleanScore

	Normalize(rep)
	return rep, nil
}

func parseViolation(v gjson.Result) models.Violation {
	riskScore := v.Get("risk_score")
	viol := models.Violation{
		Severity:       v.Get("severity").String(),
		Regulation:     strings.TrimSpace(v.Get("regulation").String()),
		ViolationTitle: strings.TrimSpace(v.Get("violation_title").String()),
		Evidence:       v.Get("evidence").String(),
		Translation:    v.Get("translation").String(),
		RiskScore:      int(math.Round(riskScore.Float())),
		RiskScoreSet:   riskScore.Exists(),
	}
	for _, g := range v.Get("guidance").Array() {
		if s := strings.TrimSpace(g.String()); s != "" {
			viol.Guidance = append(viol.Guidance, s)
		}
	}
	for _, f := range v.Get("fix").Array() {
		if s := strings.TrimSpace(f.String()); s != "" {
			viol.Fix = append(viol.Fix, s)
		}
	}
	return viol
}

// Normalize enforces the report invariants in place. It is idempotent:
// normalizing twice yields the same report.
func Normalize(rep *models.Report) {
	rep.Score = clamp(rep.Score)
	if rep.Status == "" {
		rep.Status = models.StatusNeedsReview
	}
	if rep.Summary == "" {
		rep.Summary = "Summary unavailable."
	}
	if rep.FinancialPenalty.RiskLevel == "" {
		rep.FinancialPenalty.RiskLevel = models.RiskLevelLow
	}
	if rep.FinancialPenalty.Description == "" {
		rep.FinancialPenalty.Description = "Financial penalty exposure not assessed."
	}
	rep.EthicalMarketing.Score = clamp(rep.EthicalMarketing.Score)
	if rep.EthicalMarketing.Assessment == "" {
		rep.EthicalMarketing.Assessment = "Ethical marketing assessment unavailable."
	}

	if rep.Violations == nil {
		rep.Violations = []models.Violation{}
	}
	for i := range rep.Violations {
		normalizeViolation(&rep.Violations[i])
	}

	// An empty violation list means a clean verdict, except on the
	// error shell where it only means no analysis happened.
	if len(rep.Violations) == 0 && rep.Error == "" {
		rep.Status = models.StatusCompliant
		rep.Score = 0
	}
}

func normalizeViolation(v *models.Violation) {
	v.Severity = strings.ToUpper(strings.TrimSpace(v.Severity))
	switch v.Severity {
	case models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow:
	default:
		v.Severity = models.SeverityMedium
	}

	if v.Regulation == "" {
		v.Regulation = placeholderRegulation
	}
	if v.ViolationTitle == "" {
		v.ViolationTitle = placeholderTitle
	}
	if v.Evidence == "" {
		v.Evidence = placeholderEvidence
	}
	if v.Translation == "" {
		v.Translation = placeholderTranslation
	}

	for i := 0; len(v.Guidance) < 2; i++ {
		v.Guidance = append(v.Guidance, placeholderGuidance[i%len(placeholderGuidance)])
	}
	for len(v.Fix) < 2 {
		v.Fix = append(v.Fix, placeholderFix)
	}

	if v.RiskScore <= 0 && !v.RiskScoreSet {
		v.RiskScore = riskScoreForSeverity(v.Severity)
	} else {
		v.RiskScore = clamp(v.RiskScore)
	}
}

func riskScoreForSeverity(severity string) int {
	switch severity {
	case models.SeverityCritical:
		return 90
	case models.SeverityHigh:
		return 70
	case models.SeverityMedium:
		return 50
	default:
		return 30
	}
}

// ErrorShell builds the never-crash report returned when every reasoner
// path has failed. It is returned with HTTP 200; Error and Message carry
// the cause.
func ErrorShell(kind, message string, elapsed time.Duration) *models.Report {
	return &models.Report{
		Score:         0,
		Status:        models.StatusNeedsReview,
		Summary:       "Analysis unavailable.",
		Transcription: "",
		FinancialPenalty: models.FinancialPenalty{
			RiskLevel:   models.RiskLevelNone,
			Description: "No analysis was performed.",
		},
		EthicalMarketing: models.EthicalMarketing{
			Score:      0,
			Assessment: "No analysis was performed.",
		},
		Violations:       []models.Violation{},
		ModelUsed:        "none",
		Error:            kind,
		Message:          message,
		ProcessingTimeMs: elapsed.Milliseconds(),
	}
}

// extractJSON strips Markdown fences and slices out the first balanced
// JSON document, tracking string literals and escapes.
func extractJSON(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		raw = strings.TrimSpace(m[1])
	}

	start := strings.IndexAny(raw, "{[")
	if start < 0 {
		return "", ErrInvalidJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				depth++
			}
		case '}', ']':
			if !inString {
				depth--
				if depth == 0 {
					return raw[start : i+1], nil
				}
			}
		}
	}
	return "", ErrInvalidJSON
}

// coerceScore turns a JSON value into an integer score: fractional
// values in (0,1] are scaled to [0,100], everything is clamped. Only
// literals written with a decimal point are treated as fractions, so
// an integer 1 stays 1 while 1.0 becomes 100.
func coerceScore(res gjson.Result) int {
	if !res.Exists() {
		return 0
	}
	v := res.Float()
	if v > 0 && v <= 1 && strings.Contains(res.Raw, ".") {
		v = v * 100
	}
	return clamp(int(math.Round(v)))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
