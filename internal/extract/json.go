package extract

import (
	"encoding/json"
	"fmt"

	"RankingsScanner/internal/domain"
)

// ParseJSON reads ranking rows from a JSON payload holding either a top-level
// array of objects or an object whose "data" field is such an array.
func ParseJSON(payload []byte, category string) ([]domain.RawRow, error) {
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return rowsFromValue(decoded, category), nil
}

func rowsFromValue(v any, category string) []domain.RawRow {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case map[string]any:
		if data, ok := t["data"].([]any); ok {
			items = data
		}
	}

	var rows []domain.RawRow
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if row, ok := rowFromObject(obj, category); ok {
			rows = append(rows, row)
		}
	}
	return rows
}
