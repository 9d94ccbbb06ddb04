package extract

import (
	"sort"
	"unicode/utf8"

	"RankingsScanner/internal/domain"
)

const (
	nameAlphaThreshold  = 0.6
	placeAlphaThreshold = 0.4
	rankIntThreshold    = 0.6
	scoreFloatThreshold = 0.6
)

// ColumnMapping maps semantic fields to zero-based column indices of one table.
type ColumnMapping map[domain.Field]int

// Complete reports whether all five fields are mapped.
func (m ColumnMapping) Complete() bool {
	for _, f := range domain.Fields {
		if _, ok := m[f]; !ok {
			return false
		}
	}
	return true
}

// Missing lists the unmapped fields in canonical order.
func (m ColumnMapping) Missing() []domain.Field {
	var out []domain.Field
	for _, f := range domain.Fields {
		if _, ok := m[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

func (m ColumnMapping) assigned(col int) bool {
	for _, idx := range m {
		if idx == col {
			return true
		}
	}
	return false
}

// MapHeaders maps header labels to fields. When several headers match the same
// field the rightmost one wins.
func MapHeaders(headers []string) ColumnMapping {
	mapping := ColumnMapping{}
	for i, h := range headers {
		if field, ok := MatchHeader(h); ok {
			mapping[field] = i
		}
	}
	return mapping
}

// columnStats summarises one column across the sampled rows.
type columnStats struct {
	index      int
	alphaRatio float64
	avgLen     float64
	intRatio   float64
	floatRatio float64
}

func profileColumns(sample [][]string) []columnStats {
	width := 0
	for _, row := range sample {
		if len(row) > width {
			width = len(row)
		}
	}
	n := float64(len(sample))
	if n == 0 {
		n = 1
	}

	stats := make([]columnStats, width)
	for col := 0; col < width; col++ {
		st := columnStats{index: col}
		var alpha, ints, floats, length int
		for _, row := range sample {
			v := ""
			if col < len(row) {
				v = row[col]
			}
			length += utf8.RuneCountInString(v)
			if HasLetter(v) {
				alpha++
			}
			if IsRankCell(v) {
				ints++
			}
			if IsScoreCell(v) {
				floats++
			}
		}
		st.alphaRatio = float64(alpha) / n
		st.avgLen = float64(length) / n
		st.intRatio = float64(ints) / n
		st.floatRatio = float64(floats) / n
		stats[col] = st
	}
	return stats
}

// InferColumns fills the unmapped fields of mapping from a sample of body rows
// (best-representation cell texts). Columns already assigned are never reused.
// The returned mapping is a copy; the input is left untouched.
func InferColumns(sample [][]string, mapping ColumnMapping) ColumnMapping {
	out := ColumnMapping{}
	for f, i := range mapping {
		out[f] = i
	}
	stats := profileColumns(sample)

	byLength := make([]columnStats, len(stats))
	copy(byLength, stats)
	sort.SliceStable(byLength, func(i, j int) bool { return byLength[i].avgLen > byLength[j].avgLen })

	if _, ok := out[domain.FieldName]; !ok {
		for _, st := range byLength {
			if st.alphaRatio >= nameAlphaThreshold && !out.assigned(st.index) {
				out[domain.FieldName] = st.index
				break
			}
		}
	}

	for _, field := range []domain.Field{domain.FieldCity, domain.FieldState} {
		if _, ok := out[field]; ok {
			continue
		}
		for _, st := range byLength {
			if st.alphaRatio >= placeAlphaThreshold && !out.assigned(st.index) {
				out[field] = st.index
				break
			}
		}
	}

	if _, ok := out[domain.FieldRank]; !ok {
		if col, ok := bestColumn(stats, out, func(st columnStats) float64 { return st.intRatio }, rankIntThreshold); ok {
			out[domain.FieldRank] = col
		}
	}
	if _, ok := out[domain.FieldScore]; !ok {
		if col, ok := bestColumn(stats, out, func(st columnStats) float64 { return st.floatRatio }, scoreFloatThreshold); ok {
			out[domain.FieldScore] = col
		}
	}
	return out
}

// bestColumn returns the unassigned column with the highest ratio at or above min.
// Ties go to the leftmost column.
func bestColumn(stats []columnStats, mapping ColumnMapping, ratio func(columnStats) float64, min float64) (int, bool) {
	best, bestRatio := -1, -1.0
	for _, st := range stats {
		if mapping.assigned(st.index) {
			continue
		}
		if r := ratio(st); r > bestRatio {
			best, bestRatio = st.index, r
		}
	}
	if best < 0 || bestRatio < min {
		return 0, false
	}
	return best, true
}
