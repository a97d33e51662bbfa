package reasoner

import (
	"fmt"
	"strings"

	"github.com/bearslyricattack/CompliAd/pkg/models"
)

// maxPromptRules caps how many rules the system instruction lists.
const maxPromptRules = 50

// reportSchema is the exact JSON shape the reasoner must emit.
const reportSchema = `{
  "score": <integer 0-100, overall compliance risk>,
  "status": "<Compliant | Needs Review | Non-Compliant>",
  "summary": "<one paragraph summary of the audit>",
  "financialPenalty": {
    "riskLevel": "<None | Low | Medium | High>",
    "description": "<expected monetary exposure>"
  },
  "ethicalMarketing": {
    "score": <integer 0-100>,
    "assessment": "<one sentence assessment>"
  },
  "violations": [
    {
      "severity": "<CRITICAL | HIGH | MEDIUM | LOW>",
      "regulation": "<regulation name in English>",
      "violation_title": "<short title in the source language>",
      "evidence": "<verbatim quote from the content, source language>",
      "translation": "<English rendering of the evidence>",
      "guidance": ["<actionable guidance>", "<actionable guidance>"],
      "fix": ["<complete compliant rewrite>", "<complete compliant rewrite>"],
      "risk_score": <integer 0-100>
    }
  ]
}`

// strictInstruction is appended on the fail-safe re-analysis pass.
const strictInstruction = "\nIMPORTANT: carefully analyze and detect ANY misleading or prohibited " +
	"healthcare claims. Re-examine every sentence; do not give the benefit of the doubt."

// Request carries everything the adapter needs for one analysis call.
type Request struct {
	Content      string
	Rules        []models.Rule
	Meta         models.ContentMetadata
	Category     string
	AnalysisMode string
	Jurisdiction models.Jurisdiction

	// BestEffort marks metadata-only degradation: the reasoner is told
	// only page metadata was available.
	BestEffort bool
}

// buildSystemPrompt assembles the auditor system instruction: role,
// jurisdiction, the rule pack, mandatory output rules, and the exact
// JSON schema.
func buildSystemPrompt(req Request, strict bool) string {
	var b strings.Builder

	jurisdiction := req.Jurisdiction.Country
	if req.Jurisdiction.Region != "" {
		jurisdiction += " / " + req.Jurisdiction.Region
	}

	fmt.Fprintf(&b, "You are a marketing-compliance auditor for the %s industry in %s.\n",
		orUnspecified(req.Category), jurisdiction)
	b.WriteString("Audit the provided marketing content against the regulatory rules below and report every violation.\n\n")

	b.WriteString("Regulatory rules:\n")
	rules := req.Rules
	if len(rules) > maxPromptRules {
		rules = rules[:maxPromptRules]
	}
	for i, rule := range rules {
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, rule.Regulation, rule.Title)
		if rule.Section != "" {
			fmt.Fprintf(&b, " (Section %s)", rule.Section)
		}
		b.WriteString("\n")
	}
	if len(rules) == 0 {
		b.WriteString("(no jurisdiction-specific rules loaded; apply general advertising standards)\n")
	}

	b.WriteString("\nOutput rules:\n")
	b.WriteString("- Every violation must cite the regulation by its English name.\n")
	b.WriteString("- \"evidence\" must quote the content verbatim in its source language.\n")
	b.WriteString("- \"translation\" must render the evidence in English.\n")
	b.WriteString("- All other user-visible strings (violation_title, guidance, fix) must be written in the source language of the content.\n")
	b.WriteString("- Provide at least 2 guidance points and at least 2 complete compliant rewrites per violation.\n")
	b.WriteString("- Respond with JSON only, exactly matching this schema:\n")
	b.WriteString(reportSchema)
	b.WriteString("\n")

	if req.AnalysisMode != "" {
		fmt.Fprintf(&b, "\nAnalysis mode: %s.\n", req.AnalysisMode)
	}
	if req.BestEffort {
		b.WriteString("\nOnly page metadata could be extracted from this source. Audit it best-effort and note the limited evidence in the summary.\n")
	}
	if strict {
		b.WriteString(strictInstruction)
	}
	return b.String()
}

// buildUserPrompt wraps the reduced content. The raw text is never sent.
func buildUserPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Content metadata: source=%s format=%s language=%s method=%s\n\n",
		req.Meta.SourceType, req.Meta.ContentFormat, req.Meta.Language, req.Meta.ExtractionMethod)
	b.WriteString("Content to audit:\n")
	b.WriteString(req.Content)
	return b.String()
}

func orUnspecified(s string) string {
	if s == "" {
		return "general"
	}
	return s
}
