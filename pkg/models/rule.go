package models

// Rule is one regulatory rule loaded from a rule pack file.
type Rule struct {
	ID               string `json:"id"`
	Regulation       string `json:"regulation"`
	Section          string `json:"section,omitempty"`
	Title            string `json:"title"`
	JurisdictionPath string `json:"jurisdictionPath,omitempty"`
}

// RulePack is the ordered rule list selected for one audit.
type RulePack struct {
	Country  string `json:"country"`
	Region   string `json:"region,omitempty"`
	Category string `json:"category"`
	Rules    []Rule `json:"rules"`
}
