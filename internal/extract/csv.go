package extract

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"RankingsScanner/internal/domain"
)

// ParseCSV reads a ranking CSV. The header must map all five fields, otherwise
// no rows are returned. Malformed or invalid records are skipped.
func ParseCSV(text, category string) []domain.RawRow {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil
	}
	mapping := MapHeaders(header)
	if !mapping.Complete() {
		return nil
	}

	var rows []domain.RawRow
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		get := func(f domain.Field) string {
			v, _ := valueAt(record, mapping, f)
			return v
		}
		row, ok := buildRow(get(domain.FieldRank), get(domain.FieldName), get(domain.FieldCity),
			get(domain.FieldState), get(domain.FieldScore), category)
		if ok {
			rows = append(rows, row)
		}
	}
	return rows
}
