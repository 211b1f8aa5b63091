package pos

import (
	"strings"
	"unicode/utf8"

	snowballeng "github.com/kljensen/snowball/english"

	"github.com/Veraticus/ucsname/internal/model"
)

// maxChineseWordLen bounds forward maximum matching, in runes.
const maxChineseWordLen = 4

// Lexicon tags words with a part of speech. English lookups fall back to the
// snowball stem and then to suffix heuristics.
type Lexicon struct {
	words     map[string]model.PartOfSpeech
	stems     map[string]model.PartOfSpeech
	stopwords map[string]struct{}
	maxHanLen int
}

// NewLexicon builds the built-in bilingual lexicon, extended with extra
// entries. Extra entries override built-in ones.
func NewLexicon(extra map[string]model.PartOfSpeech) *Lexicon {
	l := &Lexicon{
		words:     make(map[string]model.PartOfSpeech),
		stems:     make(map[string]model.PartOfSpeech),
		stopwords: make(map[string]struct{}),
		maxHanLen: maxChineseWordLen,
	}

	// Earlier lists win for words that appear in several lists.
	l.addAll(englishNouns, model.Noun)
	l.addAll(englishVerbs, model.Verb)
	l.addAll(englishAdjectives, model.Adjective)
	l.addAll(englishAdverbs, model.Adverb)
	l.addAll(chineseNouns, model.Noun)
	l.addAll(chineseVerbs, model.Verb)
	l.addAll(chineseAdjectives, model.Adjective)
	l.addAll(chineseAdverbs, model.Adverb)

	for w, p := range extra {
		w = strings.ToLower(w)
		l.words[w] = p
		l.stems[snowballeng.Stem(w, false)] = p
	}

	for _, w := range englishStopwords {
		l.stopwords[w] = struct{}{}
	}
	for _, w := range chineseStopwords {
		l.stopwords[w] = struct{}{}
	}
	return l
}

func (l *Lexicon) addAll(words []string, p model.PartOfSpeech) {
	for _, w := range words {
		if _, exists := l.words[w]; exists {
			continue
		}
		l.words[w] = p
		if isLatinWord(w) {
			stem := snowballeng.Stem(w, false)
			if _, exists := l.stems[stem]; !exists {
				l.stems[stem] = p
			}
		}
	}
}

// IsStopword reports whether word carries no classification signal.
func (l *Lexicon) IsStopword(word string) bool {
	_, ok := l.stopwords[word]
	return ok
}

// Known reports whether the lexicon has an explicit entry for word.
func (l *Lexicon) Known(word string) bool {
	_, ok := l.words[word]
	return ok
}

// Tag returns the part of speech for a lower-cased word.
func (l *Lexicon) Tag(word string) model.PartOfSpeech {
	if p, ok := l.words[word]; ok {
		return p
	}
	if !isLatinWord(word) {
		return model.Other
	}
	if p, ok := l.stems[snowballeng.Stem(word, false)]; ok {
		return p
	}
	return suffixTag(word)
}

// SegmentHan splits a run of Han characters by forward maximum matching.
// Characters not covered by any entry come out one at a time.
func (l *Lexicon) SegmentHan(run string) []string {
	runes := []rune(run)
	var out []string
	for i := 0; i < len(runes); {
		n := l.maxHanLen
		if rest := len(runes) - i; n > rest {
			n = rest
		}
		for ; n > 1; n-- {
			if l.Known(string(runes[i : i+n])) {
				break
			}
		}
		out = append(out, string(runes[i:i+n]))
		i += n
	}
	return out
}

var suffixRules = []struct {
	suffix string
	pos    model.PartOfSpeech
}{
	{"ly", model.Adverb},
	{"ing", model.Verb},
	{"ed", model.Verb},
	{"ous", model.Adjective},
	{"ful", model.Adjective},
	{"ive", model.Adjective},
	{"able", model.Adjective},
	{"ible", model.Adjective},
	{"less", model.Adjective},
	{"ish", model.Adjective},
	{"ic", model.Adjective},
	{"tion", model.Noun},
	{"sion", model.Noun},
	{"ment", model.Noun},
	{"ness", model.Noun},
	{"ity", model.Noun},
	{"er", model.Noun},
	{"or", model.Noun},
}

func suffixTag(word string) model.PartOfSpeech {
	if utf8.RuneCountInString(word) < 4 {
		return model.Other
	}
	for _, r := range suffixRules {
		if strings.HasSuffix(word, r.suffix) {
			return r.pos
		}
	}
	return model.Other
}
