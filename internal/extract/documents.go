package extract

import (
	"regexp"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"RankingsScanner/internal/domain"
)

// Whole-document patterns used when no table could be interpreted.
var (
	// strictRowExpr: <rank> <name> <city> <state> ... <score>
	strictRowExpr = regexp.MustCompile(`(?i)<tr[^>]*>\s*<td[^>]*>(\d+)</td>[\s\S]*?<td[^>]*>(.*?)</td>[\s\S]*?<td[^>]*>(.*?)</td>\s*<td[^>]*>(.*?)</td>[\s\S]*?<td[^>]*>([\d.]+)</td>`)
	// alternateRowExpr: <id> <name> <city> <state> <score> <rank>
	alternateRowExpr = regexp.MustCompile(`(?i)<tr[^>]*>\s*<td[^>]*>\s*\S+\s*</td>\s*<td[^>]*>([\s\S]*?)</td>\s*<td[^>]*>([\s\S]*?)</td>\s*<td[^>]*>([\s\S]*?)</td>\s*<td[^>]*>([\d.]+)</td>\s*<td[^>]*>(\d+)</td>`)
)

// StrictRows matches rows laid out as rank, name, city, state and a trailing score.
func StrictRows(page, category string) []domain.RawRow {
	var rows []domain.RawRow
	for _, m := range strictRowExpr.FindAllStringSubmatch(page, -1) {
		if row, ok := buildRow(m[1], StripTags(m[2]), StripTags(m[3]), StripTags(m[4]), m[5], category); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// AlternateRows matches rows laid out as id, name, city, state, score, rank.
func AlternateRows(page, category string) []domain.RawRow {
	var rows []domain.RawRow
	for _, m := range alternateRowExpr.FindAllStringSubmatch(page, -1) {
		if row, ok := buildRow(m[5], StripTags(m[1]), StripTags(m[2]), StripTags(m[3]), m[4], category); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// stateWindow is how far either side of the score a state cell is looked for first.
const stateWindow = 2

// GenericRows parses every row of the document with positional heuristics
// anchored on a closed list of state names.
func GenericRows(doc *goquery.Document, category string, states StateSet) []domain.RawRow {
	var rows []domain.RawRow
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		for _, c := range ReadRow(tr) {
			if best := c.Best(); best != "" {
				cells = append(cells, best)
			}
		}
		if row, ok := genericRow(cells, category, states); ok {
			rows = append(rows, row)
		}
	})
	return rows
}

func genericRow(cells []string, category string, states StateSet) (domain.RawRow, bool) {
	if len(cells) < 3 {
		return domain.RawRow{}, false
	}

	rankIdx := -1
	for i := len(cells) - 1; i >= 0; i-- {
		if IsRankCell(cells[i]) {
			rankIdx = i
			break
		}
	}
	scoreIdx := -1
	for i := rankIdx - 1; i >= 0; i-- {
		if IsScoreCell(cells[i]) {
			scoreIdx = i
			break
		}
	}
	if rankIdx < 0 || scoreIdx < 0 {
		return domain.RawRow{}, false
	}

	stateIdx := -1
	for i := max(0, scoreIdx-stateWindow); i < min(len(cells), scoreIdx+stateWindow); i++ {
		if states.Contains(cells[i]) {
			stateIdx = i
			break
		}
	}
	if stateIdx < 0 {
		for i, c := range cells {
			if states.Contains(c) {
				stateIdx = i
				break
			}
		}
	}
	if stateIdx < 0 {
		return domain.RawRow{}, false
	}

	cityIdx := -1
	for i := stateIdx - 1; i >= 0; i-- {
		if HasLetter(cells[i]) && !states.Contains(cells[i]) {
			cityIdx = i
			break
		}
	}
	if cityIdx < 0 {
		return domain.RawRow{}, false
	}

	nameIdx, longest := -1, -1
	for i := 0; i < cityIdx; i++ {
		if !HasLetter(cells[i]) || states.Contains(cells[i]) {
			continue
		}
		if n := utf8.RuneCountInString(cells[i]); n > longest {
			nameIdx, longest = i, n
		}
	}
	if nameIdx < 0 {
		return domain.RawRow{}, false
	}

	return buildRow(cells[rankIdx], cells[nameIdx], cells[cityIdx], cells[stateIdx], cells[scoreIdx], category)
}
