package models

// Violation severities.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

// Report statuses.
const (
	StatusCompliant    = "Compliant"
	StatusNeedsReview  = "Needs Review"
	StatusNonCompliant = "Non-Compliant"
)

// Financial penalty risk levels.
const (
	RiskLevelNone   = "None"
	RiskLevelLow    = "Low"
	RiskLevelMedium = "Medium"
	RiskLevelHigh   = "High"
)

// Violation is one regulatory finding inside a Report.
type Violation struct {
	Severity       string   `json:"severity"`
	Regulation     string   `json:"regulation"`
	ViolationTitle string   `json:"violation_title"`
	Evidence       string   `json:"evidence"`
	Translation    string   `json:"translation"`
	Guidance       []string `json:"guidance"`
	Fix            []string `json:"fix"`
	RiskScore      int      `json:"risk_score"`

	// RiskScoreSet distinguishes an explicit risk_score of 0 in the
	// model output from an absent field. Only absent scores are
	// rederived from severity.
	RiskScoreSet bool `json:"-"`
}

// FinancialPenalty estimates monetary exposure of the audited content.
type FinancialPenalty struct {
	RiskLevel   string `json:"riskLevel"`
	Description string `json:"description"`
}

// EthicalMarketing scores the content's overall marketing ethics.
type EthicalMarketing struct {
	Score      int    `json:"score"`
	Assessment string `json:"assessment"`
}

// Report is the canonical audit result returned to callers.
type Report struct {
	Score            int              `json:"score"`
	Status           string           `json:"status"`
	Summary          string           `json:"summary"`
	Transcription    string           `json:"transcription"`
	FinancialPenalty FinancialPenalty `json:"financialPenalty"`
	EthicalMarketing EthicalMarketing `json:"ethicalMarketing"`
	Violations       []Violation      `json:"violations"`
	ModelUsed        string           `json:"modelUsed"`
	UsedFallback     bool             `json:"usedFallback"`
	ProcessingTimeMs int64            `json:"processingTimeMs"`

	// SuspiciousClean records that the model answered with no violations
	// but a high raw score before normalization cleared it. It marks a
	// probable false negative.
	SuspiciousClean bool `json:"-"`

	// Set only on the error-shell report produced when every reasoner
	// path failed. The audit still answers 200 with this shell.
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
