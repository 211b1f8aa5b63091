// Package pos assigns parts of speech and weights to the words of a filename.
//
// Several analyzers satisfy the same Analyzer contract. The one used at
// runtime is resolved once at startup with Select.
package pos

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/model"
)

// Analyzer produces a weighted, de-duplicated, weight-sorted word sequence.
// Implementations must accept Latin and CJK text and return an empty
// sequence instead of failing.
type Analyzer interface {
	Analyze(text string) []model.WeightedWord
}

// Weights assigns a weight to each part of speech.
type Weights struct {
	Noun      float64 `mapstructure:"noun"`
	Adjective float64 `mapstructure:"adjective"`
	Verb      float64 `mapstructure:"verb"`
	Adverb    float64 `mapstructure:"adverb"`
	Other     float64 `mapstructure:"other"`
}

// DefaultWeights returns noun=100, adjective=80, verb=60, adverb=40, other=20.
func DefaultWeights() Weights {
	return Weights{
		Noun:      100,
		Adjective: 80,
		Verb:      60,
		Adverb:    40,
		Other:     20,
	}
}

// For returns the weight of a part of speech.
func (w Weights) For(p model.PartOfSpeech) float64 {
	switch p {
	case model.Noun:
		return w.Noun
	case model.Adjective:
		return w.Adjective
	case model.Verb:
		return w.Verb
	case model.Adverb:
		return w.Adverb
	default:
		return w.Other
	}
}

// Finalize collapses duplicate words, keeping the first occurrence, and
// sorts by descending weight. Equal weights keep text order.
func Finalize(words []model.WeightedWord) []model.WeightedWord {
	seen := make(map[string]bool, len(words))
	out := make([]model.WeightedWord, 0, len(words))
	for _, w := range words {
		if w.Word == "" || seen[w.Word] {
			continue
		}
		seen[w.Word] = true
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	return out
}

// LexiconAnalyzer tokenizes with simple script rules and tags words with a
// Lexicon. It has no external dependencies and always initializes.
type LexiconAnalyzer struct {
	lexicon *Lexicon
	weights Weights
}

// NewLexiconAnalyzer creates a lexicon analyzer.
func NewLexiconAnalyzer(lexicon *Lexicon, weights Weights) *LexiconAnalyzer {
	if lexicon == nil {
		lexicon = NewLexicon(nil)
	}
	return &LexiconAnalyzer{lexicon: lexicon, weights: weights}
}

// Analyze implements Analyzer.
func (a *LexiconAnalyzer) Analyze(text string) []model.WeightedWord {
	return tagTokens(a.lexicon, a.weights, tokenize(text, a.lexicon))
}

func tagTokens(lex *Lexicon, weights Weights, tokens []string) []model.WeightedWord {
	words := make([]model.WeightedWord, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" || lex.IsStopword(tok) || isNumeric(tok) {
			continue
		}
		p := lex.Tag(tok)
		words = append(words, model.WeightedWord{
			Word:         tok,
			PartOfSpeech: p,
			Weight:       weights.For(p),
		})
	}
	return Finalize(words)
}

// tokenize splits text into lower-cased Latin words (breaking camelCase) and
// lexicon-segmented Han words.
func tokenize(text string, lex *Lexicon) []string {
	var (
		tokens []string
		latin  []rune
		han    []rune
	)

	flushLatin := func() {
		if len(latin) > 0 {
			tokens = append(tokens, strings.ToLower(string(latin)))
			latin = latin[:0]
		}
	}
	flushHan := func() {
		if len(han) > 0 {
			tokens = append(tokens, lex.SegmentHan(string(han))...)
			han = han[:0]
		}
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flushLatin()
			han = append(han, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushHan()
			if len(latin) > 0 && unicode.IsUpper(r) && unicode.IsLower(latin[len(latin)-1]) {
				flushLatin()
			}
			latin = append(latin, r)
		default:
			flushLatin()
			flushHan()
		}
	}
	flushLatin()
	flushHan()
	return tokens
}

// Factory constructs an analyzer, failing when its backend is unavailable.
type Factory struct {
	New  func() (Analyzer, error)
	Name string
}

// Select returns the first analyzer whose factory succeeds, wrapped so it
// never panics outward. The lexicon analyzer is the fallback when every
// factory fails.
func Select(weights Weights, factories ...Factory) (Analyzer, string) {
	for _, f := range factories {
		if f.New == nil {
			continue
		}
		a, err := f.New()
		if err != nil {
			common.LogWarn("Part-of-speech analyzer unavailable", common.Fields{
				"analyzer": f.Name,
				"error":    err.Error(),
			})
			continue
		}
		common.LogDebug("Selected part-of-speech analyzer", common.Fields{"analyzer": f.Name})
		return Guard(a), f.Name
	}
	return Guard(NewLexiconAnalyzer(nil, weights)), "lexicon"
}

// Guard wraps an analyzer so a panic inside it degrades to an empty result.
func Guard(a Analyzer) Analyzer {
	if _, ok := a.(guarded); ok {
		return a
	}
	return guarded{inner: a}
}

type guarded struct {
	inner Analyzer
}

func (g guarded) Analyze(text string) (words []model.WeightedWord) {
	defer func() {
		if r := recover(); r != nil {
			common.LogError(fmt.Errorf("%v", r), "Part-of-speech analysis failed", common.Fields{"text": text})
			words = []model.WeightedWord{}
		}
	}()
	if strings.TrimSpace(text) == "" {
		return []model.WeightedWord{}
	}
	words = g.inner.Analyze(text)
	if words == nil {
		words = []model.WeightedWord{}
	}
	return words
}

func isLatinWord(w string) bool {
	for _, r := range w {
		if r > unicode.MaxLatin1 || !unicode.IsLetter(r) {
			return false
		}
	}
	return w != ""
}

func isNumeric(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
