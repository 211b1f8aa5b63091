package matcher

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/Veraticus/ucsname/internal/model"
	"github.com/Veraticus/ucsname/internal/strategy"
)

// multiWordParams holds the multi-word scoring knobs read from the registry.
type multiWordParams struct {
	fuse           float64
	semantic       float64
	context        float64
	partial        float64
	editDistance   float64
	editSimilarity float64
	fuzzyDistance  int
	contextWindow  int
}

func readMultiWordParams(cfg model.StrategyConfig) multiWordParams {
	return multiWordParams{
		fuse:           cfg.Param("fuseWeight", 1),
		semantic:       cfg.Param("semanticWeight", 70),
		context:        cfg.Param("contextWeight", 65),
		partial:        cfg.Param("partialWeight", 20),
		editDistance:   cfg.Param("editDistanceWeight", 25),
		editSimilarity: cfg.Param("editSimilarity", 0.75),
		fuzzyDistance:  int(cfg.Param("fuzzyDistance", 2)),
		contextWindow:  int(cfg.Param("contextWindow", 2)),
	}
}

type phraseTest func(phrase []string) (string, float64, bool)

// multiWordCandidates tests every multi-word term against the input words.
// Each mode enables a prefix of the stage chain exact, partial, fuzzy, edit
// distance, context proximity; a term scores with its best passing stage.
// Default weights rank exact (70) over context (at most 52) over fuzzy and
// edit distance (at most 25) over partial (at most 20).
func (r *matchRun) multiWordCandidates(cfg model.StrategyConfig, mode strategy.MultiWordMode) model.MatchCandidates {
	if len(r.words) < 2 || len(r.idx.multiWord) == 0 {
		return nil
	}
	p := readMultiWordParams(cfg)

	stages := []phraseTest{r.exactPhrase(p)}
	switch mode {
	case strategy.MultiWordPartial:
		stages = append(stages, r.orderedPhrase(p))
	case strategy.MultiWordFuzzy:
		stages = append(stages, r.orderedPhrase(p), r.fuzzyPhrase(p))
	case strategy.MultiWordSemantic:
		stages = append(stages, r.orderedPhrase(p), r.fuzzyPhrase(p), r.editPhrase(p), r.contextPhrase(p))
	}

	var out model.MatchCandidates
	for _, i := range r.idx.multiWord {
		it := r.idx.terms[i]
		var (
			bestType  string
			bestScore float64
		)
		for _, stage := range stages {
			matchType, score, ok := stage(it.words)
			if ok && score > bestScore {
				bestType, bestScore = matchType, score
			}
		}
		if bestType == "" {
			continue
		}
		out = append(out, model.MatchCandidate{
			MatchType: bestType,
			Term:      it.term,
			Score:     bestScore * p.fuse,
		})
	}
	return out
}

// exactPhrase matches the phrase as a contiguous run of input words.
func (r *matchRun) exactPhrase(p multiWordParams) phraseTest {
	return func(phrase []string) (string, float64, bool) {
		if indexOfRun(r.words, phrase) < 0 {
			return "", 0, false
		}
		return model.MatchTypeMultiWordExact, p.semantic, true
	}
}

// orderedPhrase keeps the longest run of phrase words found in order, gaps
// allowed, and accepts it when at least two words (all of a two-word phrase)
// line up. The score is partialWeight scaled by the matched fraction.
func (r *matchRun) orderedPhrase(p multiWordParams) phraseTest {
	return func(phrase []string) (string, float64, bool) {
		matched := inOrder(phrase, r.words)
		if matched < 2 {
			return "", 0, false
		}
		fraction := float64(matched) / float64(len(phrase))
		return model.MatchTypeMultiWordPartial, p.partial * fraction, true
	}
}

// fuzzyPhrase accepts when at least half the phrase words hit an input word
// by prefix or within the edit distance limit, in any order.
func (r *matchRun) fuzzyPhrase(p multiWordParams) phraseTest {
	return func(phrase []string) (string, float64, bool) {
		hits := 0
		for _, pw := range phrase {
			for _, w := range r.words {
				if fuzzyWordMatch(pw, w, p.fuzzyDistance) {
					hits++
					break
				}
			}
		}
		fraction := float64(hits) / float64(len(phrase))
		if hits == 0 || fraction < 0.5 {
			return "", 0, false
		}
		return model.MatchTypeMultiWordFuzzy, p.editDistance * fraction, true
	}
}

// editPhrase slides a window of the phrase length over the input and keeps
// the most similar window.
func (r *matchRun) editPhrase(p multiWordParams) phraseTest {
	return func(phrase []string) (string, float64, bool) {
		if len(r.words) < len(phrase) {
			return "", 0, false
		}
		target := strings.Join(phrase, " ")
		best := 0.0
		for start := 0; start+len(phrase) <= len(r.words); start++ {
			window := strings.Join(r.words[start:start+len(phrase)], " ")
			if sim := similarity(window, target); sim > best {
				best = sim
			}
		}
		if best < p.editSimilarity {
			return "", 0, false
		}
		return model.MatchTypeMultiWordEdit, p.editDistance * best, true
	}
}

// contextPhrase accepts when every phrase word appears, in any order, within
// a span of the phrase length plus the context window.
func (r *matchRun) contextPhrase(p multiWordParams) phraseTest {
	return func(phrase []string) (string, float64, bool) {
		first, last := len(r.words), -1
		for _, pw := range phrase {
			pos := -1
			for i, w := range r.words {
				if w == pw {
					pos = i
					break
				}
			}
			if pos < 0 {
				return "", 0, false
			}
			first = min(first, pos)
			last = max(last, pos)
		}
		span := last - first + 1
		if span > len(phrase)+p.contextWindow {
			return "", 0, false
		}
		closeness := float64(len(phrase)) / float64(max(span, len(phrase)))
		return model.MatchTypeMultiWordContext, p.context * 0.8 * closeness, true
	}
}

// inOrder returns the length of the longest common subsequence of phrase
// and words.
func inOrder(phrase, words []string) int {
	prev := make([]int, len(words)+1)
	cur := make([]int, len(words)+1)
	for i := range phrase {
		for j := range words {
			switch {
			case phrase[i] == words[j]:
				cur[j+1] = prev[j] + 1
			case prev[j+1] >= cur[j]:
				cur[j+1] = prev[j+1]
			default:
				cur[j+1] = cur[j]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(words)]
}

func indexOfRun(haystack, run []string) int {
outer:
	for i := 0; i+len(run) <= len(haystack); i++ {
		for j := range run {
			if haystack[i+j] != run[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

func fuzzyWordMatch(phraseWord, word string, maxDistance int) bool {
	if phraseWord == word {
		return true
	}
	if runeLen(phraseWord) >= 3 && runeLen(word) >= 3 &&
		(strings.HasPrefix(word, phraseWord) || strings.HasPrefix(phraseWord, word)) {
		return true
	}
	if runeLen(phraseWord) <= maxDistance+1 {
		return false
	}
	return levenshtein.ComputeDistance(phraseWord, word) <= maxDistance
}

func similarity(a, b string) float64 {
	longest := max(runeLen(a), runeLen(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
