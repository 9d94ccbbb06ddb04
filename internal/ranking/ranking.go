// Package ranking merges raw rows from every category into the final ordered
// record set and enriches each survivor into a canonical college record.
package ranking

import (
	"sort"

	"RankingsScanner/internal/domain"
)

// DefaultMaxRecords caps the merged output.
const DefaultMaxRecords = 220

// DefaultPreference orders categories when sorting merged rows.
var DefaultPreference = []string{
	"Overall", "University", "Engineering", "Medical", "Management", "College",
	"Pharmacy", "Architecture", "Law", "Dental", "Agriculture",
}

// Merger deduplicates, sorts and truncates raw rows.
type Merger struct {
	index      map[string]int
	maxRecords int
}

// NewMerger builds a merger. An empty preference list takes the default order;
// maxRecords of zero takes the default cap and a negative value disables it.
func NewMerger(preference []string, maxRecords int) *Merger {
	if len(preference) == 0 {
		preference = DefaultPreference
	}
	if maxRecords == 0 {
		maxRecords = DefaultMaxRecords
	}
	index := make(map[string]int, len(preference))
	for i, cat := range preference {
		if _, dup := index[cat]; !dup {
			index[cat] = i
		}
	}
	return &Merger{index: index, maxRecords: maxRecords}
}

// Merge keeps the lowest-ranked row per exact (name, state) key, the first seen
// winning ties, then orders by category preference and rank and applies the cap.
func (m *Merger) Merge(rows []domain.RawRow) []domain.RawRow {
	best := make(map[domain.RowKey]int, len(rows))
	var merged []domain.RawRow
	for _, row := range rows {
		key := row.Key()
		if i, ok := best[key]; ok {
			if row.Rank < merged[i].Rank {
				merged[i] = row
			}
			continue
		}
		best[key] = len(merged)
		merged = append(merged, row)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		pi, pj := m.preference(merged[i].Category), m.preference(merged[j].Category)
		if pi != pj {
			return pi < pj
		}
		return merged[i].Rank < merged[j].Rank
	})

	if m.maxRecords > 0 && len(merged) > m.maxRecords {
		merged = merged[:m.maxRecords]
	}
	return merged
}

// preference places unknown categories after every known one.
func (m *Merger) preference(category string) int {
	if i, ok := m.index[category]; ok {
		return i
	}
	return len(m.index)
}
