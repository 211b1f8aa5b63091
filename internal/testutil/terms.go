package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/ucsname/internal/model"
	"github.com/Veraticus/ucsname/internal/terms"
)

// TermBuilder assembles a term dataset for tests.
//
// Example:
//
//	table := testutil.NewTermBuilder(t).
//		WithTerm("door slam", "关门", "OBJImpt").
//		WithSynonyms("thunder", "雷声", "WTHRThun", "rumble").
//		Table()
type TermBuilder struct {
	t       *testing.T
	records []model.TermRecord
}

// NewTermBuilder returns an empty builder.
func NewTermBuilder(t *testing.T) *TermBuilder {
	t.Helper()
	return &TermBuilder{t: t}
}

// WithTerm adds a term. The category name is derived from the CatID.
func (b *TermBuilder) WithTerm(source, target, catID string) *TermBuilder {
	return b.WithRecord(model.TermRecord{Source: source, Target: target, CategoryID: catID})
}

// WithSynonyms adds a term carrying synonyms.
func (b *TermBuilder) WithSynonyms(source, target, catID string, synonyms ...string) *TermBuilder {
	return b.WithRecord(model.TermRecord{Source: source, Target: target, CategoryID: catID, Synonyms: synonyms})
}

// WithRecord adds a fully specified record.
func (b *TermBuilder) WithRecord(r model.TermRecord) *TermBuilder {
	if r.CategoryName == "" {
		r.CategoryName = strings.ToUpper(model.DeriveCategoryShort(r.CategoryID))
	}
	b.records = append(b.records, r)
	return b
}

// WithBasicTerms adds a small mixed-language dataset covering impacts,
// keyboards and weather.
func (b *TermBuilder) WithBasicTerms() *TermBuilder {
	return b.
		WithTerm("door slam", "关门", "OBJImpt").
		WithTerm("metal", "金属", "METLImpt").
		WithTerm("键盘", "typing keyboard", "OBJKbrd").
		WithTerm("keyboard", "键盘", "OBJKbrd").
		WithSynonyms("thunder", "雷声", "WTHRThun", "lightning strike", "rumble")
}

// Records returns the records added so far.
func (b *TermBuilder) Records() []model.TermRecord {
	return append([]model.TermRecord(nil), b.records...)
}

// Table returns a loaded table holding the records.
func (b *TermBuilder) Table() *terms.Table {
	return terms.NewTableFromRecords(b.records)
}

// CSV renders the records with the default column headers.
func (b *TermBuilder) CSV() string {
	b.t.Helper()

	cols := terms.DefaultColumns()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{{
		cols.Source, cols.Target, cols.CategoryID, cols.CategoryName,
		cols.CategoryNameLocalized, cols.CategoryShort, cols.Synonyms,
	}}
	for _, r := range b.records {
		rows = append(rows, []string{
			r.Source, r.Target, r.CategoryID, r.CategoryName,
			r.CategoryNameLocalized, r.CategoryShort, strings.Join(r.Synonyms, ","),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		b.t.Fatalf("failed to render term fixture: %v", err)
	}
	return buf.String()
}

// WriteCSV writes the dataset into a temporary directory and returns its
// path.
func (b *TermBuilder) WriteCSV() string {
	b.t.Helper()

	path := filepath.Join(b.t.TempDir(), "terms.csv")
	if err := os.WriteFile(path, []byte(b.CSV()), 0o600); err != nil {
		b.t.Fatalf("failed to write term fixture: %v", err)
	}
	return path
}
