package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Cell holds every textual representation a table cell can carry.
type Cell struct {
	Plain       string
	SortValue   string
	AnchorText  string
	AnchorTitle string
	Title       string
	Label       string
	Href        string
}

// Best picks the most readable representation: the first candidate containing a
// letter, in the order plain text, sort attribute, link text, link title, cell
// title. When none has a letter the plain text is returned as is.
func (c Cell) Best() string {
	for _, candidate := range []string{c.Plain, c.SortValue, c.AnchorText, c.AnchorTitle, c.Title} {
		if HasLetter(candidate) {
			return candidate
		}
	}
	return c.Plain
}

// ReadCell collects the representations of a single td selection.
func ReadCell(td *goquery.Selection) Cell {
	cell := Cell{
		Plain: SpacedText(td),
		Title: attr(td, "title"),
		Label: lower(attr(td, "data-label")),
	}
	cell.SortValue = attr(td, "data-order")
	if cell.SortValue == "" {
		cell.SortValue = attr(td, "data-search")
	}
	if a := td.Find("a").First(); a.Length() > 0 {
		cell.AnchorText = SpacedText(a)
		cell.AnchorTitle = attr(a, "title")
		cell.Href = attr(a, "href")
	}
	return cell
}

// ReadRow returns the td cells of one table row in document order.
func ReadRow(tr *goquery.Selection) []Cell {
	tds := tr.ChildrenFiltered("td")
	cells := make([]Cell, 0, tds.Length())
	tds.Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, ReadCell(td))
	})
	return cells
}

// BestTexts flattens cells to their best representation.
func BestTexts(cells []Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Best()
	}
	return out
}

// SpacedText joins the text nodes under sel with single spaces, so inline
// markup such as <br> or adjacent spans never glues words together.
func SpacedText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, node *goquery.Selection) {
			switch goquery.NodeName(node) {
			case "#text":
				parts = append(parts, node.Text())
			case "#comment", "script", "style":
			default:
				walk(node)
			}
		})
	}
	sel.Each(func(_ int, s *goquery.Selection) { walk(s) })
	return CleanText(strings.Join(parts, " "))
}

func attr(sel *goquery.Selection, name string) string {
	v, _ := sel.Attr(name)
	return CleanText(v)
}

// isHeaderRow reports whether the row carries header-marked cells.
func isHeaderRow(tr *goquery.Selection) bool {
	return tr.ChildrenFiltered("th").Length() > 0
}

// headerLabels returns the normalised labels of a header row.
func headerLabels(tr *goquery.Selection) []string {
	var labels []string
	tr.ChildrenFiltered("th").Each(func(_ int, th *goquery.Selection) {
		labels = append(labels, lower(SpacedText(th)))
	})
	return labels
}
