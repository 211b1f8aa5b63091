package model

// PartOfSpeech is the grammatical class assigned to an analyzed word.
type PartOfSpeech string

// Part of speech constants.
const (
	Noun      PartOfSpeech = "noun"
	Verb      PartOfSpeech = "verb"
	Adjective PartOfSpeech = "adjective"
	Adverb    PartOfSpeech = "adverb"
	Other     PartOfSpeech = "other"
)

// WeightedWord is a word produced by part-of-speech analysis.
type WeightedWord struct {
	Word         string       `json:"word"`
	PartOfSpeech PartOfSpeech `json:"partOfSpeech"`
	Weight       float64      `json:"weight"`
}
