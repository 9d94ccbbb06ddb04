package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RankingsScanner/internal/domain"
)

func mustDoc(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

type stubResolver struct {
	detail Detail
	err    error
	hrefs  []string
}

func (s *stubResolver) ResolveDetail(_ context.Context, href string) (Detail, error) {
	s.hrefs = append(s.hrefs, href)
	return s.detail, s.err
}

func TestExtractTableMapsHeadersByLabel(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table>
	<tr><th>Overall Rank</th><th>Institute Name</th><th>City/Town</th><th>State/UT</th><th>NIRF Score</th></tr>
	<tr><td>4</td><td>Example College</td><td>Nagpur</td><td>Maharashtra</td><td>62.10</td></tr>
	</table>`)

	ex := &TableExtractor{Category: "College"}
	rows, err := ex.ExtractTable(context.Background(), doc.Find("table").First())
	require.NoError(t, err)

	want := []domain.RawRow{{Rank: 4, Name: "Example College", City: "Nagpur", State: "Maharashtra", Score: 62.1, Category: "College"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTableInfersUnlabelledColumns(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table>
	<tr><th>A</th><th>B</th><th>C</th><th>D</th><th>E</th></tr>
	<tr><td>1</td><td>Indian Institute of Science</td><td>Bengaluru</td><td>Karnataka</td><td>83.29</td></tr>
	<tr><td>2</td><td>Jawaharlal Nehru University</td><td>New Delhi</td><td>Delhi</td><td>68.92</td></tr>
	<tr><td>3</td><td>Jamia Millia Islamia</td><td>New Delhi</td><td>Delhi</td><td>65.91</td></tr>
	</table>`)

	ex := &TableExtractor{Category: "University"}
	rows, err := ex.ExtractTable(context.Background(), doc.Find("table").First())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, domain.RawRow{Rank: 1, Name: "Indian Institute of Science", City: "Bengaluru", State: "Karnataka", Score: 83.29, Category: "University"}, rows[0])
	assert.Equal(t, 3, rows[2].Rank)
	assert.Equal(t, "Delhi", rows[2].State)
}

func TestExtractTablePrefersDataLabels(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table>
	<tr><th>Rank</th><th>Name</th><th>City</th><th>State</th><th>Score</th></tr>
	<tr>
	  <td data-label="Score">70.5</td>
	  <td data-label="Name of Institute">Sigma University</td>
	  <td data-label="City">Jaipur</td>
	  <td data-label="State">Rajasthan</td>
	  <td data-label="Rank">8</td>
	</tr>
	</table>`)

	ex := &TableExtractor{Category: "University"}
	rows, err := ex.ExtractTable(context.Background(), doc.Find("table").First())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 8, rows[0].Rank)
	assert.Equal(t, "Sigma University", rows[0].Name)
	assert.InDelta(t, 70.5, rows[0].Score, 1e-9)
}

func TestExtractTableFallsBackToPositionsOnExtraColumns(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table>
	<tr><th>Name</th><th>City</th><th>State</th><th>Score</th><th>Rank</th></tr>
	<tr><td>Foo University</td><td>Pune</td><td>Maharashtra</td><td>78.90</td><td>9</td><td>More Details</td></tr>
	</table>`)

	ex := &TableExtractor{Category: "Overall"}
	rows, err := ex.ExtractTable(context.Background(), doc.Find("table").First())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.RawRow{Rank: 9, Name: "Foo University", City: "Pune", State: "Maharashtra", Score: 78.9, Category: "Overall"}, rows[0])
}

func TestExtractTableRecoversFromDetailPage(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table>
	<tr><th>Rank</th><th>Name</th><th>City</th><th>State</th><th>Score</th></tr>
	<tr><td>5</td><td><a href="/inst/5">12345</a></td><td>-</td><td>-</td><td>55.5</td></tr>
	</table>`)

	resolver := &stubResolver{detail: Detail{Name: "Bar Institute", City: "Chennai", State: "Tamil Nadu"}}
	ex := &TableExtractor{Category: "Engineering", Details: resolver}
	rows, err := ex.ExtractTable(context.Background(), doc.Find("table").First())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"/inst/5"}, resolver.hrefs)
	assert.Equal(t, "Bar Institute", rows[0].Name)
	assert.Equal(t, "Tamil Nadu", rows[0].State)
}

func TestExtractTableDropsUnrecoverableRows(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table>
	<tr><th>Rank</th><th>Name</th><th>City</th><th>State</th><th>Score</th></tr>
	<tr><td>5</td><td><a href="/inst/5">12345</a></td><td>-</td><td>-</td><td>55.5</td></tr>
	</table>`)

	resolver := &stubResolver{err: errors.New("boom")}
	ex := &TableExtractor{Category: "Engineering", Details: resolver}
	rows, err := ex.ExtractTable(context.Background(), doc.Find("table").First())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExtractTableErrors(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `
	<table><tr><td>1</td><td>Foo</td></tr></table>
	<table><tr><th>X</th><th>Y</th></tr><tr><td>a</td><td>b</td></tr></table>`)

	ex := &TableExtractor{Category: "Law"}
	_, err := ex.ExtractTable(context.Background(), doc.Find("table").Eq(0))
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = ex.ExtractTable(context.Background(), doc.Find("table").Eq(1))
	assert.ErrorIs(t, err, ErrMappingIncomplete)
}

const twoTables = `
<table>
<tr><th>Rank</th><th>Name</th><th>City</th><th>State</th><th>Score</th></tr>
<tr><td>1</td><td>First Institute</td><td>Delhi</td><td>Delhi</td><td>90.1</td></tr>
</table>
<table>
<tr><th>Rank</th><th>Name</th><th>City</th><th>State</th><th>Score</th></tr>
<tr><td>2</td><td>Second Institute</td><td>Goa</td><td>Goa</td><td>80.2</td></tr>
</table>`

func TestExtractDocumentFirstTableWins(t *testing.T) {
	t.Parallel()

	ex := &TableExtractor{Category: "Law"}
	rows := ex.ExtractDocument(context.Background(), mustDoc(t, twoTables))
	require.Len(t, rows, 1)
	assert.Equal(t, "First Institute", rows[0].Name)

	ex.ScanAllTables = true
	rows = ex.ExtractDocument(context.Background(), mustDoc(t, twoTables))
	require.Len(t, rows, 2)
	assert.Equal(t, "Second Institute", rows[1].Name)
}

func TestExtractDocumentSkipsUninterpretableTables(t *testing.T) {
	t.Parallel()

	page := `<table><tr><td>menu</td></tr></table>` + twoTables
	ex := &TableExtractor{Category: "Law"}
	rows := ex.ExtractDocument(context.Background(), mustDoc(t, page))
	require.Len(t, rows, 1)
	assert.Equal(t, "First Institute", rows[0].Name)
}

func TestExtractTableSeparatesInlineMarkup(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table>
	<tr><th>Rank</th><th>Institute<br>Name</th><th><span>City</span></th><th>State<br/>/UT</th><th>Score</th></tr>
	<tr><td>7</td><td>Indian Institute<br>of <span>Science</span></td><td>Bengaluru</td><td>Karnataka</td><td>83.29</td></tr>
	<tr><td>8</td><td><a href="/jnu"><b>Jawaharlal</b><i>Nehru</i> University</a></td><td>New<br>Delhi</td><td>Delhi</td><td>68.92</td></tr>
	</table>`)

	ex := &TableExtractor{Category: "Overall"}
	rows, err := ex.ExtractTable(context.Background(), doc.Find("table").First())
	require.NoError(t, err)

	want := []domain.RawRow{
		{Rank: 7, Name: "Indian Institute of Science", City: "Bengaluru", State: "Karnataka", Score: 83.29, Category: "Overall"},
		{Rank: 8, Name: "Jawaharlal Nehru University", City: "New Delhi", State: "Delhi", Score: 68.92, Category: "Overall"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSpacedText(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<div id="x">Alpha<br>Beta<span>Gamma</span><!-- skip --><script>var x;</script> Delta</div>`)
	assert.Equal(t, "Alpha Beta Gamma Delta", SpacedText(doc.Find("#x")))

	d := ParseDetailPage(`<html><head><title>T</title></head><body><h1>Indian Institute<br>of Technology <small>Madras</small></h1></body></html>`)
	assert.Equal(t, "Indian Institute of Technology Madras", d.Name)
}
