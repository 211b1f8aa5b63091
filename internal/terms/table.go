// Package terms loads the UCS term dataset into an in-memory table.
package terms

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/model"
)

const datasetName = "term table"

// Columns maps dataset header names to term record fields. Header names are
// compared case-insensitively.
type Columns struct {
	Source                string `mapstructure:"source"`
	Target                string `mapstructure:"target"`
	CategoryID            string `mapstructure:"category_id"`
	CategoryName          string `mapstructure:"category_name"`
	CategoryNameLocalized string `mapstructure:"category_name_localized"`
	CategoryShort         string `mapstructure:"category_short"`
	Synonyms              string `mapstructure:"synonyms"`
}

// DefaultColumns returns the header names used by the UCS spreadsheet export.
func DefaultColumns() Columns {
	return Columns{
		Source:                "SubCategory",
		Target:                "SubCategory_zh",
		CategoryID:            "CatID",
		CategoryName:          "Category",
		CategoryNameLocalized: "Category_zh",
		CategoryShort:         "CatShort",
		Synonyms:              "Synonyms",
	}
}

// Table holds the loaded term records. It is safe for concurrent reads.
type Table struct {
	records    []model.TermRecord
	columns    Columns
	generation uint64
	mu         sync.RWMutex
	comma      rune
	loaded     bool
}

// Option customizes a Table.
type Option func(*Table)

// WithColumns overrides the header mapping.
func WithColumns(c Columns) Option {
	return func(t *Table) {
		t.columns = c
	}
}

// WithDelimiter overrides the field delimiter.
func WithDelimiter(r rune) Option {
	return func(t *Table) {
		if r != 0 {
			t.comma = r
		}
	}
}

// NewTable creates an empty, unloaded table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		columns: DefaultColumns(),
		comma:   ',',
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTableFromRecords creates a loaded table from records already in memory.
// Records with an empty source or target are dropped.
func NewTableFromRecords(records []model.TermRecord) *Table {
	t := NewTable()
	kept := make([]model.TermRecord, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Source) == "" || strings.TrimSpace(r.Target) == "" {
			continue
		}
		kept = append(kept, r)
	}
	t.records = kept
	t.loaded = true
	t.generation = 1
	return t
}

// Load parses delimited text with a header row and replaces the table
// contents. Missing required columns yield a *common.FormatError and leave
// the table empty and unloaded.
func (t *Table) Load(raw string) ([]model.TermRecord, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(raw, "\ufeff")))
	reader.Comma = t.comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.reset()
			return nil, common.NewFormatError(datasetName, err, "malformed delimited text")
		}
		rows = append(rows, row)
	}

	return t.loadRows(rows)
}

func (t *Table) loadRows(rows [][]string) ([]model.TermRecord, error) {
	if len(rows) == 0 {
		t.reset()
		return nil, common.NewFormatError(datasetName, common.ErrEmptyDataset, "no header row")
	}

	idx, err := t.columns.resolve(rows[0])
	if err != nil {
		t.reset()
		return nil, err
	}

	records := make([]model.TermRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := model.TermRecord{
			Source:                idx.field(row, idx.source),
			Target:                idx.field(row, idx.target),
			CategoryID:            idx.field(row, idx.categoryID),
			CategoryName:          idx.field(row, idx.categoryName),
			CategoryNameLocalized: idx.field(row, idx.categoryNameLocalized),
			CategoryShort:         idx.field(row, idx.categoryShort),
			Synonyms:              ParseSynonyms(idx.field(row, idx.synonyms)),
		}
		if rec.Source == "" || rec.Target == "" {
			continue
		}
		records = append(records, rec)
	}

	t.mu.Lock()
	t.records = records
	t.loaded = true
	t.generation++
	t.mu.Unlock()

	common.LogDebug("Loaded term table", common.Fields{"records": len(records)})

	out := make([]model.TermRecord, len(records))
	copy(out, records)
	return out, nil
}

func (t *Table) reset() {
	t.mu.Lock()
	t.records = nil
	t.loaded = false
	t.generation++
	t.mu.Unlock()
}

// Loaded reports whether a dataset has been loaded successfully.
func (t *Table) Loaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}

// Generation changes whenever the contents are replaced.
func (t *Table) Generation() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.generation
}

// Len returns the number of records.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// Records returns the records in dataset order. The returned slice must not
// be modified.
func (t *Table) Records() []model.TermRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.records
}

// ByCategoryID returns every record carrying the given category id.
func (t *Table) ByCategoryID(id string) []model.TermRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []model.TermRecord
	for _, r := range t.records {
		if strings.EqualFold(r.CategoryID, id) {
			out = append(out, r)
		}
	}
	return out
}

// HasCategoryID reports whether at least one record carries the id.
func (t *Table) HasCategoryID(id string) bool {
	if id == "" {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, r := range t.records {
		if strings.EqualFold(r.CategoryID, id) {
			return true
		}
	}
	return false
}

// Categories returns the distinct category ids in dataset order.
func (t *Table) Categories() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := make(map[string]bool)
	var ids []string
	for _, r := range t.records {
		if seen[r.CategoryID] {
			continue
		}
		seen[r.CategoryID] = true
		ids = append(ids, r.CategoryID)
	}
	return ids
}

// ParseSynonyms splits a comma separated synonym cell. Full-width commas
// are accepted as separators too.
func ParseSynonyms(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ',' || r == '，'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type columnIndex struct {
	source                int
	target                int
	categoryID            int
	categoryName          int
	categoryNameLocalized int
	categoryShort         int
	synonyms              int
}

func (c Columns) resolve(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	find := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := positions[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}

	idx := columnIndex{
		source:                find(c.Source),
		target:                find(c.Target),
		categoryID:            find(c.CategoryID),
		categoryName:          find(c.CategoryName),
		categoryNameLocalized: find(c.CategoryNameLocalized),
		categoryShort:         find(c.CategoryShort),
		synonyms:              find(c.Synonyms),
	}

	var missing []string
	if idx.source < 0 {
		missing = append(missing, c.Source)
	}
	if idx.target < 0 {
		missing = append(missing, c.Target)
	}
	if idx.categoryID < 0 {
		missing = append(missing, c.CategoryID)
	}
	if len(missing) > 0 {
		return idx, common.NewFormatError(datasetName, common.ErrMissingColumn,
			strings.Join(missing, ", "))
	}
	return idx, nil
}

func (columnIndex) field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
