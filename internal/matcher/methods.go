package matcher

import (
	"strings"

	"github.com/Veraticus/ucsname/internal/model"
	"github.com/Veraticus/ucsname/internal/rules"
)

// matchRun carries the per-call state shared by the matcher methods.
type matchRun struct {
	idx          *termIndex
	text         string
	words        []string
	exactScore   float64
	exactEnabled bool
}

func (r *matchRun) ruleCandidates(table *rules.Table, cfg model.StrategyConfig) model.MatchCandidates {
	if table == nil {
		return nil
	}
	score := r.exactScore + cfg.Param("bonus", 10)

	var out model.MatchCandidates
	for _, rule := range table.Evaluate(r.text) {
		for _, term := range rule.Results {
			out = append(out, model.MatchCandidate{
				MatchType: model.MatchTypeRule,
				Term:      term,
				Score:     score,
			})
		}
	}
	return out
}

func (r *matchRun) exactCandidates(cfg model.StrategyConfig) model.MatchCandidates {
	var out model.MatchCandidates
	for _, i := range r.idx.bySource[r.text] {
		out = append(out, model.MatchCandidate{
			MatchType: model.MatchTypeExact,
			Term:      r.idx.terms[i].term,
			Score:     cfg.Param("score", r.exactScore),
		})
	}
	return out
}

// containsCandidates tries terms longest first so a specific phrase scores
// above the generic words inside it.
func (r *matchRun) containsCandidates(cfg model.StrategyConfig) model.MatchCandidates {
	base := cfg.Param("score", 60)
	minLength := int(cfg.Param("minLength", 2))
	inputLen := float64(runeLen(r.text))

	var out model.MatchCandidates
	for _, i := range r.idx.byLength {
		it := r.idx.terms[i]
		if it.runes < minLength {
			break
		}
		if r.exactEnabled && it.source == r.text {
			continue
		}
		if !strings.Contains(r.text, it.source) {
			continue
		}
		out = append(out, model.MatchCandidate{
			MatchType: model.MatchTypeContains,
			Term:      it.term,
			Score:     base * float64(it.runes) / inputLen,
		})
	}
	return out
}

// synonymCandidates yields at most one candidate per term: the longest
// synonym that equals or appears inside the input.
func (r *matchRun) synonymCandidates(cfg model.StrategyConfig) model.MatchCandidates {
	base := cfg.Param("score", 40)
	inputLen := float64(runeLen(r.text))

	var out model.MatchCandidates
	for _, it := range r.idx.terms {
		for _, syn := range it.synonyms {
			if syn == r.text {
				out = append(out, model.MatchCandidate{
					MatchType: model.MatchTypeSynonymExact,
					Term:      it.term,
					Score:     base,
				})
				break
			}
			if runeLen(syn) >= 2 && strings.Contains(r.text, syn) {
				out = append(out, model.MatchCandidate{
					MatchType: model.MatchTypeSynonymContains,
					Term:      it.term,
					Score:     base * float64(runeLen(syn)) / inputLen,
				})
				break
			}
		}
	}
	return out
}
