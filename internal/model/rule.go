package model

// RuleMatchType selects how a rule pattern is tested against text.
type RuleMatchType string

// Rule match type constants.
const (
	RuleContains   RuleMatchType = "contains"
	RuleStartsWith RuleMatchType = "startsWith"
	RuleEquals     RuleMatchType = "equals"
	RuleRegex      RuleMatchType = "regex"
)

// Valid reports whether the match type is one the rule table can evaluate.
func (m RuleMatchType) Valid() bool {
	switch m {
	case RuleContains, RuleStartsWith, RuleEquals, RuleRegex:
		return true
	}
	return false
}

// RuleRecord is a special pattern with a pre-resolved match outcome.
type RuleRecord struct {
	ID        string        `json:"id"`
	Pattern   string        `json:"pattern"`
	MatchType RuleMatchType `json:"matchType"`
	Results   []TermRecord  `json:"result"`
	Priority  int           `json:"priority"`
}
