package model

import "time"

// HistoryEntry records one classification attempt. A nil Result means no
// strategy cleared its threshold.
type HistoryEntry struct {
	ClassifiedAt   time.Time
	Result         *ClassificationResult
	Filename       string
	TranslatedText string
	ID             int64
}

// CategoryCount is the number of history entries classified into a category.
type CategoryCount struct {
	CategoryID string
	Count      int
}
