// Package model defines the core data structures for the ucsname application.
package model

import (
	"strings"
	"unicode"
)

// TermRecord is one row of the UCS category dataset pairing a subcategory
// phrase in two languages with its category id.
type TermRecord struct {
	Source                string   `json:"source"`
	Target                string   `json:"target"`
	CategoryID            string   `json:"categoryId"`
	CategoryShort         string   `json:"categoryShort,omitempty"`
	CategoryName          string   `json:"categoryName,omitempty"`
	CategoryNameLocalized string   `json:"categoryNameLocalized,omitempty"`
	Synonyms              []string `json:"synonyms,omitempty"`
}

// Key identifies a term within a table. Two records with the same key are
// considered the same term when merging candidates.
func (t TermRecord) Key() string {
	return t.CategoryID + "\x00" + strings.ToLower(t.Source)
}

// Short returns the category short code, deriving it from the CatID when the
// dataset did not provide one.
func (t TermRecord) Short() string {
	if t.CategoryShort != "" {
		return t.CategoryShort
	}
	return DeriveCategoryShort(t.CategoryID)
}

// DeriveCategoryShort extracts the leading upper-case code of a CatID.
// "DSGNRythm" becomes "DSGN" and "OBJImpt" becomes "OBJ".
func DeriveCategoryShort(catID string) string {
	runes := []rune(catID)
	end := 0
	for end < len(runes) && unicode.IsUpper(runes[end]) {
		end++
	}
	// The last capital starts the subcategory word when lower case follows.
	if end > 1 && end < len(runes) && unicode.IsLower(runes[end]) {
		end--
	}
	return string(runes[:end])
}
