package matcher

import (
	"sort"

	"github.com/Veraticus/ucsname/internal/model"
	"github.com/Veraticus/ucsname/internal/terms"
)

type indexedTerm struct {
	term     model.TermRecord
	source   string
	words    []string
	synonyms []string
	runes    int
}

// termIndex is the normalized view of one table generation.
type termIndex struct {
	terms      []indexedTerm
	byLength   []int
	bySource   map[string][]int
	multiWord  []int
	generation uint64
}

func buildIndex(table *terms.Table) *termIndex {
	records := table.Records()
	idx := &termIndex{
		terms:      make([]indexedTerm, 0, len(records)),
		bySource:   make(map[string][]int, len(records)),
		generation: table.Generation(),
	}

	for _, rec := range records {
		source := Normalize(rec.Source)
		if source == "" {
			continue
		}
		it := indexedTerm{
			term:   rec,
			source: source,
			words:  words(source),
			runes:  runeLen(source),
		}
		for _, syn := range rec.Synonyms {
			if s := Normalize(syn); s != "" {
				it.synonyms = append(it.synonyms, s)
			}
		}
		sort.SliceStable(it.synonyms, func(i, j int) bool {
			return runeLen(it.synonyms[i]) > runeLen(it.synonyms[j])
		})

		i := len(idx.terms)
		idx.terms = append(idx.terms, it)
		idx.bySource[source] = append(idx.bySource[source], i)
		idx.byLength = append(idx.byLength, i)
		if len(it.words) > 1 {
			idx.multiWord = append(idx.multiWord, i)
		}
	}

	sort.SliceStable(idx.byLength, func(a, b int) bool {
		return idx.terms[idx.byLength[a]].runes > idx.terms[idx.byLength[b]].runes
	})
	return idx
}
