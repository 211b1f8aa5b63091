// Package rules loads special-pattern rules and evaluates them against text.
package rules

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/model"
	"github.com/Veraticus/ucsname/internal/terms"
)

const datasetName = "rule table"

// Settings is the optional settings block of a rule dataset.
type Settings struct {
	MultiMatchStrategy string
	DefaultPriority    int
}

type compiledRule struct {
	regex *regexp.Regexp
	lower string
	model.RuleRecord
}

// Table evaluates rules against text. It performs no conflict resolution:
// callers decide what to do when several rules match.
type Table struct {
	rules    []compiledRule
	settings Settings
	mu       sync.RWMutex
	loaded   bool
}

// NewTable creates an empty rule table.
func NewTable() *Table {
	return &Table{}
}

// Load parses a JSON rule dataset and replaces the table contents. Rules
// with an unknown match type or a regex that does not compile are skipped.
func (t *Table) Load(raw string) ([]model.RuleRecord, error) {
	if !gjson.Valid(raw) {
		t.reset()
		return nil, common.NewFormatError(datasetName, common.ErrInvalidRule, "invalid JSON")
	}

	doc := gjson.Parse(raw)
	patterns := doc.Get("specialPatterns")
	if !patterns.Exists() || !patterns.IsArray() {
		t.reset()
		return nil, common.NewFormatError(datasetName, common.ErrMissingColumn, "specialPatterns")
	}

	settings := Settings{
		DefaultPriority:    int(doc.Get("settings.defaultPriority").Int()),
		MultiMatchStrategy: doc.Get("settings.multiMatchStrategy").String(),
	}

	compiled := make([]compiledRule, 0, len(patterns.Array()))
	for i, p := range patterns.Array() {
		rule, ok := parseRule(p, i, settings.DefaultPriority)
		if !ok {
			continue
		}

		cr := compiledRule{RuleRecord: rule, lower: strings.ToLower(rule.Pattern)}
		if rule.MatchType == model.RuleRegex {
			re, err := common.CompileInsensitive(rule.Pattern, "rule "+rule.ID)
			if err != nil {
				common.LogWarn("Skipping rule with invalid pattern", common.Fields{
					"rule":  rule.ID,
					"error": err.Error(),
				})
				continue
			}
			cr.regex = re
		}
		compiled = append(compiled, cr)
	}

	// Higher priority first; equal priorities keep dataset order.
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	t.mu.Lock()
	t.rules = compiled
	t.settings = settings
	t.loaded = true
	t.mu.Unlock()

	common.LogDebug("Loaded rule table", common.Fields{"rules": len(compiled)})

	return t.Rules(), nil
}

func parseRule(p gjson.Result, index int, defaultPriority int) (model.RuleRecord, bool) {
	rule := model.RuleRecord{
		ID:        p.Get("id").String(),
		Pattern:   p.Get("pattern").String(),
		MatchType: model.RuleMatchType(p.Get("matchType").String()),
		Priority:  defaultPriority,
	}
	if prio := p.Get("priority"); prio.Exists() {
		rule.Priority = int(prio.Int())
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}

	if rule.Pattern == "" || !rule.MatchType.Valid() {
		common.LogWarn("Skipping malformed rule", common.Fields{
			"index":      index,
			"rule":       rule.ID,
			"match_type": string(rule.MatchType),
		})
		return rule, false
	}

	result := p.Get("result")
	switch {
	case result.IsArray():
		for _, r := range result.Array() {
			rule.Results = append(rule.Results, parseTerm(r))
		}
	case result.IsObject():
		rule.Results = append(rule.Results, parseTerm(result))
	}
	return rule, true
}

// parseTerm accepts both the term-record field names and the UCS export
// names used by AI results.
func parseTerm(r gjson.Result) model.TermRecord {
	first := func(paths ...string) string {
		for _, p := range paths {
			if v := r.Get(p); v.Exists() {
				return v.String()
			}
		}
		return ""
	}

	term := model.TermRecord{
		Source:                first("source", "subCategory"),
		Target:                first("target", "subCategory_zh"),
		CategoryID:            first("categoryId", "catID"),
		CategoryShort:         first("categoryShort", "catShort"),
		CategoryName:          first("categoryName", "category"),
		CategoryNameLocalized: first("categoryNameLocalized", "category_zh"),
	}

	syn := r.Get("synonyms")
	if syn.IsArray() {
		for _, s := range syn.Array() {
			if v := strings.TrimSpace(s.String()); v != "" {
				term.Synonyms = append(term.Synonyms, v)
			}
		}
	} else {
		term.Synonyms = terms.ParseSynonyms(syn.String())
	}

	// A rule result only needs a category id; fall back so the record stays
	// usable as a term.
	if term.Source == "" {
		term.Source = term.CategoryID
	}
	if term.Target == "" {
		term.Target = term.Source
	}
	return term
}

func (t *Table) reset() {
	t.mu.Lock()
	t.rules = nil
	t.settings = Settings{}
	t.loaded = false
	t.mu.Unlock()
}

// Loaded reports whether a dataset has been loaded successfully.
func (t *Table) Loaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}

// Settings returns the settings block of the loaded dataset.
func (t *Table) Settings() Settings {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.settings
}

// Rules returns the loaded rules, highest priority first.
func (t *Table) Rules() []model.RuleRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.RuleRecord, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.RuleRecord
	}
	return out
}

// Evaluate returns every rule whose pattern matches text, highest priority
// first. Matching is case-insensitive.
func (t *Table) Evaluate(text string) []model.RuleRecord {
	if t == nil || text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	t.mu.RLock()
	defer t.mu.RUnlock()

	var hits []model.RuleRecord
	for _, r := range t.rules {
		if r.matches(lower) {
			hits = append(hits, r.RuleRecord)
		}
	}
	return hits
}

func (r compiledRule) matches(lower string) bool {
	switch r.MatchType {
	case model.RuleContains:
		return strings.Contains(lower, r.lower)
	case model.RuleStartsWith:
		return strings.HasPrefix(lower, r.lower)
	case model.RuleEquals:
		return lower == r.lower
	case model.RuleRegex:
		return r.regex != nil && r.regex.MatchString(lower)
	}
	return false
}
