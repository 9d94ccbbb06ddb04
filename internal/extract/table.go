package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"RankingsScanner/internal/domain"
)

const defaultSampleRows = 6

var (
	// ErrNoHeader marks a table without a header row; such tables are skipped.
	ErrNoHeader = errors.New("table has no header row")
	// ErrMappingIncomplete marks a table whose column mapping could not be completed.
	ErrMappingIncomplete = errors.New("column mapping incomplete")
)

// DetailResolver follows an in-row link and returns what the linked page reveals.
type DetailResolver interface {
	ResolveDetail(ctx context.Context, href string) (Detail, error)
}

// TableExtractor recovers ranking rows from HTML tables of one category page.
type TableExtractor struct {
	Category string
	// SampleRows bounds the body rows profiled during column inference.
	SampleRows int
	// ScanAllTables keeps collecting after the first table that yields rows.
	ScanAllTables bool
	Details       DetailResolver
	Logger        *slog.Logger
}

// ExtractDocument walks the tables of doc in order. By default the first table
// producing at least one valid row is taken as the ranking table and the rest of
// the page is ignored.
func (e *TableExtractor) ExtractDocument(ctx context.Context, doc *goquery.Document) []domain.RawRow {
	var rows []domain.RawRow
	doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}
		found, err := e.ExtractTable(ctx, table)
		if err != nil {
			e.debug("skip table", "table", i, "error", err)
			return true
		}
		e.debug("table rows", "table", i, "rows", len(found))
		rows = append(rows, found...)
		return len(found) == 0 || e.ScanAllTables
	})
	return rows
}

// ExtractTable extracts the valid rows of a single table. It returns ErrNoHeader
// or ErrMappingIncomplete when the table cannot be interpreted.
func (e *TableExtractor) ExtractTable(ctx context.Context, table *goquery.Selection) ([]domain.RawRow, error) {
	trs := table.Find("tr")

	var header []string
	var body []*goquery.Selection
	trs.Each(func(_ int, tr *goquery.Selection) {
		if isHeaderRow(tr) {
			if header == nil {
				header = headerLabels(tr)
			}
			return
		}
		body = append(body, tr)
	})
	if len(header) == 0 {
		return nil, ErrNoHeader
	}

	mapping := MapHeaders(header)
	e.debug("headers", "labels", header, "mapping", mapping)
	if !mapping.Complete() {
		mapping = InferColumns(e.sample(body), mapping)
		e.debug("inferred mapping", "mapping", mapping)
		if !mapping.Complete() {
			return nil, fmt.Errorf("%w: missing %v", ErrMappingIncomplete, mapping.Missing())
		}
	}

	var rows []domain.RawRow
	rejected := 0
	for _, tr := range body {
		cells := ReadRow(tr)
		if len(cells) == 0 {
			continue
		}
		row, ok := e.resolveRow(ctx, tr, cells, len(header), mapping)
		if !ok {
			rejected++
			continue
		}
		rows = append(rows, row)
	}
	if rejected > 0 {
		e.debug("rows rejected", "count", rejected)
	}
	return rows, nil
}

func (e *TableExtractor) sample(body []*goquery.Selection) [][]string {
	limit := e.SampleRows
	if limit <= 0 {
		limit = defaultSampleRows
	}
	var out [][]string
	for _, tr := range body {
		if len(out) == limit {
			break
		}
		out = append(out, BestTexts(ReadRow(tr)))
	}
	return out
}

// resolveRow applies label, index and positional resolution in that order, then
// recovers missing text fields from the row's detail link.
func (e *TableExtractor) resolveRow(ctx context.Context, tr *goquery.Selection, cells []Cell, headerWidth int, mapping ColumnMapping) (domain.RawRow, bool) {
	values := labelledValues(cells)

	if len(values) < len(domain.Fields) {
		flat := BestTexts(cells)
		fallback := mapping
		if len(flat) != headerWidth {
			fallback = PositionalFields(flat)
		}
		for _, f := range domain.Fields {
			if _, ok := values[f]; ok {
				continue
			}
			if v, ok := valueAt(flat, fallback, f); ok {
				values[f] = v
			}
		}
	}

	if _, ok := ParseRank(values[domain.FieldRank]); !ok {
		return domain.RawRow{}, false
	}
	if _, ok := ParseScore(values[domain.FieldScore]); !ok {
		return domain.RawRow{}, false
	}

	if !HasLetter(values[domain.FieldName]) || !HasLetter(values[domain.FieldCity]) || !HasLetter(values[domain.FieldState]) {
		e.recover(ctx, tr, values)
	}

	return buildRow(values[domain.FieldRank], values[domain.FieldName], values[domain.FieldCity],
		values[domain.FieldState], values[domain.FieldScore], e.Category)
}

func (e *TableExtractor) recover(ctx context.Context, tr *goquery.Selection, values map[domain.Field]string) {
	if e.Details == nil {
		return
	}
	href, ok := tr.Find("a[href]").First().Attr("href")
	if !ok || href == "" {
		return
	}
	detail, err := e.Details.ResolveDetail(ctx, href)
	if err != nil {
		e.debug("detail lookup failed", "href", href, "error", err)
		return
	}
	fill := func(f domain.Field, v string) {
		if !HasLetter(values[f]) && v != "" {
			values[f] = v
		}
	}
	fill(domain.FieldName, detail.Name)
	fill(domain.FieldCity, detail.City)
	fill(domain.FieldState, detail.State)
}

// labelledValues maps cells carrying a recognised data-label attribute.
func labelledValues(cells []Cell) map[domain.Field]string {
	values := map[domain.Field]string{}
	for _, f := range domain.Fields {
		for _, c := range cells {
			if c.Label != "" && labelMatches(f, c.Label) {
				values[f] = c.Best()
				break
			}
		}
	}
	return values
}

func (e *TableExtractor) debug(msg string, args ...any) {
	if e.Logger != nil {
		e.Logger.Debug(msg, append([]any{"category", e.Category}, args...)...)
	}
}
