package model

import (
	"fmt"
	"sort"
)

// Match type tags recorded on candidates for diagnostics.
const (
	MatchTypeRule             = "rule"
	MatchTypeExact            = "exact_match"
	MatchTypeContains         = "contains_match"
	MatchTypeSynonymExact     = "synonym_exact"
	MatchTypeSynonymContains  = "synonym_contains"
	MatchTypeKeywordRegex     = "keyword_regex"
	MatchTypeMultiWordExact   = "multi_word_exact"
	MatchTypeMultiWordPartial = "multi_word_partial"
	MatchTypeMultiWordFuzzy   = "multi_word_fuzzy"
	MatchTypeMultiWordEdit    = "multi_word_edit_distance"
	MatchTypeMultiWordContext = "multi_word_context"
	MatchTypeBilingual        = "bilingual"
	MatchTypePartOfSpeech     = "part_of_speech"
	MatchTypeWordCombination  = "word_combination"
	MatchTypeKeyword          = "keyword"
	MatchTypeAI               = "ai"
	MatchTypeTranslated       = "translated_text"
)

// MatchCandidate is a scored term produced by one matching attempt.
type MatchCandidate struct {
	MatchType string
	Term      TermRecord
	Score     float64
}

// Validate ensures the candidate has usable data.
func (c *MatchCandidate) Validate() error {
	if c.Term.Source == "" {
		return fmt.Errorf("candidate term source is required")
	}
	if c.Score < 0 {
		return fmt.Errorf("score must not be negative, got %.2f", c.Score)
	}
	return nil
}

// MatchCandidates is a slice of candidates that supports ranking.
type MatchCandidates []MatchCandidate

// Len implements sort.Interface.
func (c MatchCandidates) Len() int {
	return len(c)
}

// Less implements sort.Interface - higher scores come first.
func (c MatchCandidates) Less(i, j int) bool {
	return c[i].Score > c[j].Score
}

// Swap implements sort.Interface.
func (c MatchCandidates) Swap(i, j int) {
	c[i], c[j] = c[j], c[i]
}

// Sort orders candidates by descending score. Equal scores keep their
// collection order.
func (c MatchCandidates) Sort() {
	sort.Stable(c)
}

// Top returns the highest-scoring candidate, or nil if empty. The receiver
// is not reordered.
func (c MatchCandidates) Top() *MatchCandidate {
	if len(c) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(c); i++ {
		if c[i].Score > c[best].Score {
			best = i
		}
	}
	top := c[best]
	return &top
}

// AboveThreshold returns the candidates scoring at least threshold, ranked.
func (c MatchCandidates) AboveThreshold(threshold float64) MatchCandidates {
	var result MatchCandidates
	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}
	result.Sort()
	return result
}

// Terms returns the distinct terms in slice order.
func (c MatchCandidates) Terms() []TermRecord {
	seen := make(map[string]bool, len(c))
	terms := make([]TermRecord, 0, len(c))
	for _, cand := range c {
		key := cand.Term.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		terms = append(terms, cand.Term)
	}
	return terms
}
