package extract

import "RankingsScanner/internal/domain"

// PositionalFields resolves field positions in a row whose cell count does not
// match the header, typically because extra metric columns are present.
//
// The rank is the rightmost small integer, the score the nearest decimal to its
// left, state and city the two cells before the score, and the name the first
// letter-bearing cell before the city. Unresolved fields are absent
// from the result.
func PositionalFields(flat []string) ColumnMapping {
	out := ColumnMapping{}

	rankIdx := -1
	for i := len(flat) - 1; i >= 0; i-- {
		if IsRankCell(flat[i]) {
			rankIdx = i
			break
		}
	}
	if rankIdx < 0 {
		return out
	}
	out[domain.FieldRank] = rankIdx

	scoreIdx := -1
	for i := rankIdx - 1; i >= 0; i-- {
		if IsFloatCell(flat[i]) {
			scoreIdx = i
			break
		}
	}
	if scoreIdx < 0 {
		return out
	}
	out[domain.FieldScore] = scoreIdx

	if scoreIdx <= 1 {
		return out
	}
	stateIdx := scoreIdx - 1
	out[domain.FieldState] = stateIdx

	cityIdx := stateIdx - 1
	out[domain.FieldCity] = cityIdx

	for i := 0; i < cityIdx; i++ {
		if HasLetter(flat[i]) {
			out[domain.FieldName] = i
			break
		}
	}
	return out
}

// valueAt returns flat[idx] when the mapping holds an in-range index for field.
func valueAt(flat []string, mapping ColumnMapping, field domain.Field) (string, bool) {
	idx, ok := mapping[field]
	if !ok || idx < 0 || idx >= len(flat) {
		return "", false
	}
	return flat[idx], true
}
