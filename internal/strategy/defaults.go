// Package strategy holds the user-configurable matching strategy registry.
package strategy

import "github.com/Veraticus/ucsname/internal/model"

// Classifier step keys.
const (
	KeyAI                   = "ai"
	KeyBilingual            = "bilingual"
	KeyPartOfSpeech         = "partOfSpeech"
	KeyTranslatedText       = "translatedText"
	KeyMultiWordCombination = "multiWordCombination"
	KeyKeyword              = "keyword"
)

// Term matcher method keys.
const (
	KeyRules        = "rules"
	KeyMultiWord    = "multiWord"
	KeyExact        = "exact"
	KeyContains     = "contains"
	KeySynonym      = "synonym"
	KeyKeywordRegex = "keywordRegex"
)

// MultiMatchStrategy decides how the term matcher resolves several candidates.
type MultiMatchStrategy string

// Multi-match strategies.
const (
	FirstMatch      MultiMatchStrategy = "firstMatch"
	AllMatches      MultiMatchStrategy = "allMatches"
	HighestPriority MultiMatchStrategy = "highestPriority"
)

// Valid reports whether s names a known strategy.
func (s MultiMatchStrategy) Valid() bool {
	switch s {
	case FirstMatch, AllMatches, HighestPriority:
		return true
	}
	return false
}

// MultiWordMode selects how multi-word terms are tested against input.
type MultiWordMode string

// Multi-word modes.
const (
	MultiWordExact    MultiWordMode = "exact"
	MultiWordPartial  MultiWordMode = "partial"
	MultiWordFuzzy    MultiWordMode = "fuzzy"
	MultiWordSemantic MultiWordMode = "semantic"
)

// Valid reports whether m names a known mode.
func (m MultiWordMode) Valid() bool {
	switch m {
	case MultiWordExact, MultiWordPartial, MultiWordFuzzy, MultiWordSemantic:
		return true
	}
	return false
}

// Defaults returns the built-in strategy entries in declaration order.
func Defaults() []model.StrategyConfig {
	return []model.StrategyConfig{
		classifierStep(KeyAI, 1, 0, nil),
		classifierStep(KeyBilingual, 2, 50, map[string]float64{
			"originalWeight":   0.6,
			"translatedWeight": 0.4,
		}),
		classifierStep(KeyPartOfSpeech, 3, 40, map[string]float64{
			"topWords": 5,
		}),
		classifierStep(KeyTranslatedText, 4, 40, nil),
		classifierStep(KeyMultiWordCombination, 5, 35, map[string]float64{
			"pairWords": 4,
		}),
		classifierStep(KeyKeyword, 6, 30, nil),

		matcherMethod(KeyRules, 10, map[string]float64{
			"bonus": 10,
		}),
		matcherMethod(KeyMultiWord, 11, map[string]float64{
			"fuseWeight":         1,
			"semanticWeight":     70,
			"contextWeight":      65,
			"partialWeight":      20,
			"editDistanceWeight": 25,
			"fuzzyDistance":      2,
			"editSimilarity":     0.75,
			"contextWindow":      2,
		}),
		matcherMethod(KeyExact, 12, map[string]float64{
			"score": 100,
		}),
		matcherMethod(KeyContains, 13, map[string]float64{
			"score":     60,
			"minLength": 2,
		}),
		matcherMethod(KeySynonym, 14, map[string]float64{
			"score": 40,
		}),
		matcherMethod(KeyKeywordRegex, 15, map[string]float64{
			"score":      30,
			"sampleSize": 20,
		}),
	}
}

func classifierStep(key string, priority int, threshold float64, params map[string]float64) model.StrategyConfig {
	return model.StrategyConfig{
		Key:       key,
		Stage:     model.StageClassifier,
		Enabled:   true,
		Priority:  priority,
		Threshold: threshold,
		Params:    params,
	}
}

func matcherMethod(key string, priority int, params map[string]float64) model.StrategyConfig {
	return model.StrategyConfig{
		Key:      key,
		Stage:    model.StageMatcher,
		Enabled:  true,
		Priority: priority,
		Params:   params,
	}
}
