package extract

import (
	"regexp"

	"github.com/titanous/json5"

	"RankingsScanner/internal/domain"
)

var (
	assignedArrayExpr = regexp.MustCompile(`=\s*\[\s*\{[\s\S]*?\}\s*\]\s*[;\n]`)
	arrayLiteralExpr  = regexp.MustCompile(`\[\s*\{[\s\S]*\}\s*\]`)
)

// ScriptArrays returns the array-of-object literals assigned to variables in page.
func ScriptArrays(page string) []string {
	var out []string
	for _, assignment := range assignedArrayExpr.FindAllString(page, -1) {
		if literal := arrayLiteralExpr.FindString(assignment); literal != "" {
			out = append(out, literal)
		}
	}
	return out
}

// ParseScript mines embedded object-literal arrays and returns the valid rows of
// all of them. Literals are decoded as JSON5 so unquoted keys, single quotes and
// trailing commas are accepted; undecodable literals are skipped.
func ParseScript(page, category string) []domain.RawRow {
	var rows []domain.RawRow
	for _, literal := range ScriptArrays(page) {
		var items []any
		if err := json5.Unmarshal([]byte(literal), &items); err != nil {
			continue
		}
		rows = append(rows, rowsFromValue(items, category)...)
	}
	return rows
}
