package pos

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/Veraticus/ucsname/internal/model"
)

// SegmenterAnalyzer splits text on Unicode word boundaries (UAX #29) and tags
// the resulting words with a Lexicon. Consecutive Han segments are re-joined
// and split again by forward maximum matching, since UAX #29 breaks between
// every ideograph.
type SegmenterAnalyzer struct {
	lexicon *Lexicon
	weights Weights
}

// NewSegmenterAnalyzer creates a segmenter-backed analyzer.
func NewSegmenterAnalyzer(lexicon *Lexicon, weights Weights) *SegmenterAnalyzer {
	if lexicon == nil {
		lexicon = NewLexicon(nil)
	}
	return &SegmenterAnalyzer{lexicon: lexicon, weights: weights}
}

// Analyze implements Analyzer.
func (a *SegmenterAnalyzer) Analyze(text string) []model.WeightedWord {
	var (
		tokens []string
		han    strings.Builder
	)

	flushHan := func() {
		if han.Len() > 0 {
			tokens = append(tokens, a.lexicon.SegmentHan(han.String())...)
			han.Reset()
		}
	}

	state := -1
	rest := text
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)

		r, _ := utf8.DecodeRuneInString(word)
		switch {
		case unicode.Is(unicode.Han, r):
			han.WriteString(word)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushHan()
			// Filenames use underscores and dots as separators.
			for _, part := range strings.FieldsFunc(word, isSeparator) {
				tokens = append(tokens, strings.ToLower(part))
			}
		default:
			flushHan()
		}
	}
	flushHan()

	return tagTokens(a.lexicon, a.weights, tokens)
}

func isSeparator(r rune) bool {
	return r == '_' || r == '.' || r == '\''
}
