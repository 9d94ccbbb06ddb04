package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var locationExpr = regexp.MustCompile(`(?is)City\s*[:\-]\s*([A-Za-z .-]+).*?State\s*[:\-]\s*([A-Za-z .-]+)`)

// Detail holds the identity fields recovered from an institution's own page.
type Detail struct {
	Name  string
	City  string
	State string
}

// ParseDetailPage reads a replacement name from the first heading (or the title
// when the heading has no letters) and a loose "City: X ... State: Y" location.
func ParseDetailPage(page string) Detail {
	var d Detail
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(page)); err == nil {
		h1 := SpacedText(doc.Find("h1").First())
		title := SpacedText(doc.Find("title").First())
		switch {
		case HasLetter(h1):
			d.Name = h1
		case HasLetter(title):
			d.Name = title
		}
	}
	if m := locationExpr.FindStringSubmatch(page); m != nil {
		d.City = strings.TrimSpace(m[1])
		d.State = strings.TrimSpace(m[2])
	}
	return d
}
