package matcher

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/model"
)

// Fixed alternatives recognized alongside the sampled keywords. Hits on
// them map to no term.
var fixedKeywordPatterns = []string{
	`v\d+(?:\.\d+)*`,
	`\.(?:wav|mp3|flac|aiff?|ogg|m4a|caf)\b`,
}

type keywordSet struct {
	regex      *regexp.Regexp
	sampleSize int
}

func (m *TermMatcher) keywordSet(idx *termIndex, cfg model.StrategyConfig) *keywordSet {
	sampleSize := int(cfg.Param("sampleSize", 20))

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keywords != nil && m.keywords.sampleSize == sampleSize && m.index == idx {
		return m.keywords
	}
	set := buildKeywordSet(idx, sampleSize)
	if m.index == idx {
		m.keywords = set
	}
	return set
}

func buildKeywordSet(idx *termIndex, sampleSize int) *keywordSet {
	seen := make(map[string]bool)
	var sample []string
	add := func(s string) {
		if len(sample) >= sampleSize || runeLen(s) <= 3 || seen[s] {
			return
		}
		seen[s] = true
		sample = append(sample, s)
	}
	for _, it := range idx.terms {
		add(it.source)
		for _, syn := range it.synonyms {
			add(syn)
		}
		if len(sample) >= sampleSize {
			break
		}
	}

	// Longest alternatives first so the leftmost match is the most specific.
	sort.SliceStable(sample, func(i, j int) bool {
		return runeLen(sample[i]) > runeLen(sample[j])
	})

	alternatives := make([]string, 0, len(sample)+len(fixedKeywordPatterns))
	for _, s := range sample {
		alternatives = append(alternatives, regexp.QuoteMeta(s))
	}
	alternatives = append(alternatives, fixedKeywordPatterns...)

	re, err := common.CompileInsensitive(strings.Join(alternatives, "|"), "keyword set")
	if err != nil {
		common.LogWarn("Keyword set did not compile", common.Fields{"error": err.Error()})
		return &keywordSet{sampleSize: sampleSize}
	}
	return &keywordSet{regex: re, sampleSize: sampleSize}
}

func (r *matchRun) keywordCandidates(cfg model.StrategyConfig, set *keywordSet, user []*regexp.Regexp) model.MatchCandidates {
	var hits []string
	if set != nil && set.regex != nil {
		hits = append(hits, set.regex.FindAllString(r.text, -1)...)
	}
	for _, re := range user {
		hits = append(hits, re.FindAllString(r.text, -1)...)
	}
	if len(hits) == 0 {
		return nil
	}

	score := cfg.Param("score", 30)
	emitted := make(map[int]bool)
	var out model.MatchCandidates
	for _, hit := range hits {
		for _, i := range r.idx.owners(strings.ToLower(hit)) {
			if emitted[i] {
				continue
			}
			emitted[i] = true
			out = append(out, model.MatchCandidate{
				MatchType: model.MatchTypeKeywordRegex,
				Term:      r.idx.terms[i].term,
				Score:     score,
			})
		}
	}
	return out
}

// owners finds the terms a captured keyword belongs to: terms whose source
// or synonym equals it, otherwise the longest term contained in it.
func (idx *termIndex) owners(keyword string) []int {
	if keyword == "" {
		return nil
	}
	var out []int
	for i, it := range idx.terms {
		if it.source == keyword {
			out = append(out, i)
			continue
		}
		for _, syn := range it.synonyms {
			if syn == keyword {
				out = append(out, i)
				break
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, i := range idx.byLength {
		it := idx.terms[i]
		if it.runes >= 2 && strings.Contains(keyword, it.source) {
			return []int{i}
		}
	}
	return nil
}
