// Package classifier assigns a UCS category to a filename by walking a
// fallback chain of matching steps.
package classifier

import (
	"sort"
	"strings"

	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/matcher"
	"github.com/Veraticus/ucsname/internal/model"
	"github.com/Veraticus/ucsname/internal/pos"
	"github.com/Veraticus/ucsname/internal/strategy"
	"github.com/Veraticus/ucsname/internal/terms"
)

// Options tune a single classification.
type Options struct {
	// TranslatedText is the machine translation of the filename, if any.
	TranslatedText string
	// MatchStrategy pins one classifier step by key. Empty runs the chain.
	MatchStrategy string
}

// Classifier runs the classifier-stage strategies of the registry in
// priority order and returns the first result that clears its threshold.
type Classifier struct {
	terms    *terms.Table
	matcher  *matcher.TermMatcher
	analyzer pos.Analyzer
	registry *strategy.Registry
}

// New creates a classifier. A nil analyzer falls back to the lexicon
// analyzer with default weights.
func New(termTable *terms.Table, termMatcher *matcher.TermMatcher, analyzer pos.Analyzer) *Classifier {
	if analyzer == nil {
		analyzer = pos.NewLexiconAnalyzer(nil, pos.DefaultWeights())
	}
	return &Classifier{
		terms:    termTable,
		matcher:  termMatcher,
		analyzer: pos.Guard(analyzer),
		registry: termMatcher.Registry(),
	}
}

// Classify returns the first step result above threshold, or nil when every
// step falls through. Under the allMatches strategy every step runs and the
// highest score wins, earlier steps breaking ties. It never fails; per-step
// problems are logged.
func (c *Classifier) Classify(filename string, ai *model.AIResult, opts Options) *model.ClassificationResult {
	if c.registry.MultiMatchStrategy() == strategy.AllMatches {
		return bestResult(c.ClassifyAll(filename, ai, opts))
	}

	in := c.prepare(filename, opts)
	for _, step := range c.steps(opts) {
		if res := c.runStep(step, in, ai); res != nil {
			common.LogDebug("Classified filename", common.Fields{
				"filename": filename,
				"strategy": step.Key,
				"category": res.CategoryID,
				"score":    res.Score,
			})
			return res
		}
	}
	common.LogDebug("No classification", common.Fields{"filename": filename})
	return nil
}

// ClassifyAll runs every step and returns each result above its threshold
// in step order, for callers that rank the results themselves.
func (c *Classifier) ClassifyAll(filename string, ai *model.AIResult, opts Options) []*model.ClassificationResult {
	in := c.prepare(filename, opts)
	var out []*model.ClassificationResult
	for _, step := range c.steps(opts) {
		if res := c.runStep(step, in, ai); res != nil {
			out = append(out, res)
		}
	}
	return out
}

func bestResult(results []*model.ClassificationResult) *model.ClassificationResult {
	var best *model.ClassificationResult
	for _, res := range results {
		if best == nil || res.Score > best.Score {
			best = res
		}
	}
	return best
}

type input struct {
	text       string
	translated string
	words      []model.WeightedWord
}

func (c *Classifier) prepare(filename string, opts Options) input {
	in := input{
		text:       CleanFilename(filename),
		translated: strings.TrimSpace(opts.TranslatedText),
	}
	if in.text != "" {
		in.words = c.analyzer.Analyze(in.text)
	}
	return in
}

func (c *Classifier) steps(opts Options) []model.StrategyConfig {
	if opts.MatchStrategy == "" {
		return c.registry.EnabledInStage(model.StageClassifier)
	}
	step, ok := c.registry.Get(opts.MatchStrategy)
	if !ok || step.Stage != model.StageClassifier {
		common.LogWarn("Unknown classifier strategy", common.Fields{"strategy": opts.MatchStrategy})
		return nil
	}
	return []model.StrategyConfig{step}
}

func (c *Classifier) runStep(step model.StrategyConfig, in input, ai *model.AIResult) *model.ClassificationResult {
	var best *scored
	switch step.Key {
	case strategy.KeyAI:
		return c.fromAI(step, ai)
	case strategy.KeyBilingual:
		best = c.bilingual(step, in)
	case strategy.KeyPartOfSpeech:
		best = c.partOfSpeech(step, in)
	case strategy.KeyTranslatedText:
		best = c.bestFor(in.translated, 1, model.MatchTypeTranslated)
	case strategy.KeyMultiWordCombination:
		best = c.wordCombinations(step, in)
	case strategy.KeyKeyword:
		if len(in.words) > 0 {
			best = c.bestFor(in.words[0].Word, in.words[0].Weight/100, model.MatchTypeKeyword)
		}
	default:
		return nil
	}

	if best == nil || best.score < step.Threshold {
		return nil
	}
	res := model.NewClassificationResult(best.term)
	res.Strategy = step.Key
	res.MatchType = best.matchType
	res.Score = best.score
	return res
}

type scored struct {
	term      model.TermRecord
	matchType string
	score     float64
}

// bestFor returns the top candidate for text scaled by weight.
func (c *Classifier) bestFor(text string, weight float64, matchType string) *scored {
	if text == "" {
		return nil
	}
	top := c.matcher.Candidates(text).Top()
	if top == nil {
		return nil
	}
	return &scored{term: top.Term, matchType: matchType, score: top.Score * weight}
}

// fromAI accepts an AI result only when its category id exists in the term
// table.
func (c *Classifier) fromAI(step model.StrategyConfig, ai *model.AIResult) *model.ClassificationResult {
	if ai == nil || strings.TrimSpace(ai.CatID) == "" {
		return nil
	}
	records := c.terms.ByCategoryID(ai.CatID)
	if len(records) == 0 {
		common.LogDebug("Ignoring AI result with unknown category id", common.Fields{"cat_id": ai.CatID})
		return nil
	}

	term := records[0]
	for _, r := range records {
		if ai.SubCategory != "" && strings.EqualFold(r.Source, ai.SubCategory) {
			term = r
			break
		}
	}

	res := model.NewClassificationResult(term)
	if ai.CatShort != "" {
		res.CategoryShort = ai.CatShort
	}
	if ai.Category != "" {
		res.Category = ai.Category
	}
	if ai.CategoryZh != "" {
		res.CategoryLocalized = ai.CategoryZh
	}
	if ai.SubCategory != "" {
		res.SubCategory = ai.SubCategory
	}
	if ai.SubCategoryZh != "" {
		res.SubCategoryLocalized = ai.SubCategoryZh
	}
	res.Strategy = step.Key
	res.MatchType = model.MatchTypeAI
	res.Score = 100
	if res.Score < step.Threshold {
		return nil
	}
	return res
}

// bilingual merges the best score per term from the original and the
// translated text as a weighted sum.
func (c *Classifier) bilingual(step model.StrategyConfig, in input) *scored {
	if in.text == "" || in.translated == "" {
		return nil
	}
	originalWeight := step.Param("originalWeight", 0.6)
	translatedWeight := step.Param("translatedWeight", 0.4)

	type merged struct {
		term     model.TermRecord
		combined float64
	}
	var order []string
	byKey := make(map[string]*merged)
	add := func(cands model.MatchCandidates, weight float64) {
		for k, cand := range bestPerTerm(cands) {
			m, ok := byKey[k]
			if !ok {
				m = &merged{term: cand.Term}
				byKey[k] = m
				order = append(order, k)
			}
			m.combined += cand.Score * weight
		}
	}
	add(c.matcher.Candidates(in.text), originalWeight)
	add(c.matcher.Candidates(in.translated), translatedWeight)
	sort.Strings(order)

	var top *scored
	for _, k := range order {
		m := byKey[k]
		if top == nil || m.combined > top.score {
			top = &scored{term: m.term, matchType: model.MatchTypeBilingual, score: m.combined}
		}
	}
	return top
}

func bestPerTerm(cands model.MatchCandidates) map[string]model.MatchCandidate {
	best := make(map[string]model.MatchCandidate, len(cands))
	for _, cand := range cands {
		k := cand.Term.Key()
		if prev, ok := best[k]; !ok || cand.Score > prev.Score {
			best[k] = cand
		}
	}
	return best
}

// partOfSpeech matches the top weighted words as a phrase in text order and
// falls back to the best single word scaled by its weight.
func (c *Classifier) partOfSpeech(step model.StrategyConfig, in input) *scored {
	top := topWords(in, int(step.Param("topWords", 5)))
	if len(top) == 0 {
		return nil
	}

	if len(top) > 1 {
		phrase := make([]string, len(top))
		for i, w := range top {
			phrase[i] = w.Word
		}
		if best := c.bestFor(strings.Join(phrase, " "), 1, model.MatchTypePartOfSpeech); best != nil && best.score >= step.Threshold {
			return best
		}
	}

	var best *scored
	for _, w := range top {
		cand := c.bestFor(w.Word, w.Weight/100, model.MatchTypePartOfSpeech)
		if cand != nil && (best == nil || cand.score > best.score) {
			best = cand
		}
	}
	return best
}

// wordCombinations tries every pair of the highest weighted words in text
// order.
func (c *Classifier) wordCombinations(step model.StrategyConfig, in input) *scored {
	top := topWords(in, int(step.Param("pairWords", 4)))
	var best *scored
	for i := 0; i < len(top); i++ {
		for j := i + 1; j < len(top); j++ {
			pair := top[i].Word + " " + top[j].Word
			cand := c.bestFor(pair, 1, model.MatchTypeWordCombination)
			if cand != nil && (best == nil || cand.score > best.score) {
				best = cand
			}
		}
	}
	return best
}

// topWords returns the n highest weighted words re-ordered as they appear
// in the text.
func topWords(in input, n int) []model.WeightedWord {
	if n <= 0 || len(in.words) == 0 {
		return nil
	}
	top := make([]model.WeightedWord, min(n, len(in.words)))
	copy(top, in.words)

	lower := strings.ToLower(in.text)
	sort.SliceStable(top, func(i, j int) bool {
		return position(lower, top[i].Word) < position(lower, top[j].Word)
	})
	return top
}

func position(text, word string) int {
	if i := strings.Index(text, strings.ToLower(word)); i >= 0 {
		return i
	}
	return len(text)
}
