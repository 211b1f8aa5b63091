package model

// ClassificationResult is the UCS category assignment for one filename.
type ClassificationResult struct {
	CategoryID           string  `json:"categoryId"`
	CategoryShort        string  `json:"categoryShort"`
	Category             string  `json:"category"`
	CategoryLocalized    string  `json:"categoryLocalized"`
	SubCategory          string  `json:"subCategory"`
	SubCategoryLocalized string  `json:"subCategoryLocalized"`
	Strategy             string  `json:"strategy,omitempty"`
	MatchType            string  `json:"matchType,omitempty"`
	Score                float64 `json:"score,omitempty"`
}

// NewClassificationResult builds a result from a matched term.
func NewClassificationResult(term TermRecord) *ClassificationResult {
	return &ClassificationResult{
		CategoryID:           term.CategoryID,
		CategoryShort:        term.Short(),
		Category:             term.CategoryName,
		CategoryLocalized:    term.CategoryNameLocalized,
		SubCategory:          term.Source,
		SubCategoryLocalized: term.Target,
	}
}

// AIResult is a classification produced by an external AI service.
type AIResult struct {
	CatID         string `json:"catID"`
	CatShort      string `json:"catShort"`
	Category      string `json:"category"`
	CategoryZh    string `json:"category_zh"`
	SubCategory   string `json:"subCategory"`
	SubCategoryZh string `json:"subCategory_zh"`
}
