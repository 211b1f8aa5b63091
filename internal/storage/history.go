package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/ucsname/internal/model"
)

// RecordClassification appends a history entry and sets its ID.
func (s *SQLiteStorage) RecordClassification(ctx context.Context, entry *model.HistoryEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if err := validateString(entry.Filename, "filename"); err != nil {
		return err
	}
	if entry.ClassifiedAt.IsZero() {
		entry.ClassifiedAt = time.Now()
	}

	res := entry.Result
	if res == nil {
		res = &model.ClassificationResult{}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO classification_history (
			filename, translated_text, category_id, category_short, category,
			category_localized, sub_category, sub_category_localized,
			strategy, match_type, score, classified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.Filename, entry.TranslatedText, res.CategoryID, res.CategoryShort, res.Category,
		res.CategoryLocalized, res.SubCategory, res.SubCategoryLocalized,
		res.Strategy, res.MatchType, res.Score, entry.ClassifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record classification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get history id: %w", err)
	}
	entry.ID = id
	return nil
}

// ListHistory returns the most recent entries, newest first. A limit of
// zero or less returns everything.
func (s *SQLiteStorage) ListHistory(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, translated_text, category_id, category_short, category,
			category_localized, sub_category, sub_category_localized,
			strategy, match_type, score, classified_at
		FROM classification_history
		ORDER BY classified_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.HistoryEntry
	for rows.Next() {
		var (
			entry      model.HistoryEntry
			res        model.ClassificationResult
			translated sql.NullString
		)
		if err := rows.Scan(
			&entry.ID, &entry.Filename, &translated, &res.CategoryID, &res.CategoryShort, &res.Category,
			&res.CategoryLocalized, &res.SubCategory, &res.SubCategoryLocalized,
			&res.Strategy, &res.MatchType, &res.Score, &entry.ClassifiedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.TranslatedText = translated.String
		if res.CategoryID != "" {
			entry.Result = &res
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return entries, nil
}

// CategoryCounts returns how often each category was assigned, most
// frequent first. Unclassified entries are not counted.
func (s *SQLiteStorage) CategoryCounts(ctx context.Context) ([]model.CategoryCount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, COUNT(*) AS n
		FROM classification_history
		WHERE category_id IS NOT NULL AND category_id != ''
		GROUP BY category_id
		ORDER BY n DESC, category_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []model.CategoryCount
	for rows.Next() {
		var c model.CategoryCount
		if err := rows.Scan(&c.CategoryID, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ClearHistory deletes every history entry and reports how many were removed.
func (s *SQLiteStorage) ClearHistory(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM classification_history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return result.RowsAffected()
}
