package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RankingsScanner/internal/domain"
	"RankingsScanner/internal/infrastructure/fetch"
	"RankingsScanner/internal/scanner"
)

const tablePage = `<html><body>
<table><tr><th>Rank</th><th>Name</th><th>City</th><th>State</th><th>Score</th></tr>
<tr><td>1</td><td>Table Institute</td><td>Pune</td><td>Maharashtra</td><td>81.5</td></tr>
<tr><td>2</td><td><a href="detail/2.html">0002</a></td><td>-</td><td>-</td><td>75.0</td></tr>
</table></body></html>`

func newRankingServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/overall.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><script src="/static/app.js"></script></head>
<body><a href="/files/ranking.csv">Download CSV</a><a href="#top">top</a><a href="mailto:x@y.z">mail</a></body></html>`))
	})
	mux.HandleFunc("/files/ranking.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Rank,Name,City,State,Score\n1,Csv University,Delhi,Delhi,90.2\n"))
	})
	mux.HandleFunc("/static/app.js", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`console.log("no data");`))
	})
	mux.HandleFunc("/rankings/engineering.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(tablePage))
	})
	mux.HandleFunc("/rankings/detail/2.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Detail</title></head><body><h1>Linked Institute</h1><p>City: Surat</p><p>State: Gujarat</p></body></html>`))
	})
	mux.HandleFunc("/medical.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>see override</p></body></html>`))
	})
	mux.HandleFunc("/api/medical.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"rank":3,"name":"Override Medical College","city":"Lucknow","state":"Uttar Pradesh","score":"70.4"}]}`))
	})
	mux.HandleFunc("/law.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><table>
<tr><td>IR-L-1</td><td>Generic Law School</td><td>Bengaluru</td><td>Karnataka</td><td>77.10</td><td>1</td></tr>
</table></body></html>`))
	})
	mux.HandleFunc("/down.html", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestSource(t *testing.T, overrides map[string][]string) *StrategySource {
	t.Helper()
	reg := scanner.NewRegistry()
	RegisterDefaults(reg, Options{Overrides: overrides, DetailDelay: time.Millisecond}, nil)
	cascade, err := reg.Cascade(DefaultOrder, nil)
	require.NoError(t, err)
	fetcher := fetch.NewClient(fetch.Options{Attempts: 1, Timeout: 5 * time.Second}, nil)
	return NewStrategySource(cascade, fetcher, nil)
}

func TestStrategySourceFetchAll(t *testing.T) {
	t.Parallel()

	server := newRankingServer(t)
	source := newTestSource(t, map[string][]string{
		"Medical": {server.URL + "/api/missing.json", server.URL + "/api/medical.json"},
	})

	rows, err := source.FetchAll(context.Background(), []domain.DiscoveredEndpoint{
		{Category: "Overall", URL: server.URL + "/overall.html"},
		{Category: "Engineering", URL: server.URL + "/rankings/engineering.html"},
		{Category: "Pharmacy", URL: server.URL + "/down.html"},
		{Category: "Medical", URL: server.URL + "/medical.html"},
		{Category: "Law", URL: server.URL + "/law.html"},
	})
	require.NoError(t, err)

	byName := map[string]domain.RawRow{}
	for _, r := range rows {
		byName[r.Name] = r
	}
	require.Len(t, rows, 5)

	assert.Equal(t, domain.RawRow{Rank: 1, Name: "Csv University", City: "Delhi", State: "Delhi", Score: 90.2, Category: "Overall"}, byName["Csv University"])
	assert.Equal(t, "Engineering", byName["Table Institute"].Category)
	assert.Equal(t, domain.RawRow{Rank: 2, Name: "Linked Institute", City: "Surat", State: "Gujarat", Score: 75, Category: "Engineering"}, byName["Linked Institute"])
	assert.Equal(t, 3, byName["Override Medical College"].Rank)
	assert.Equal(t, "Karnataka", byName["Generic Law School"].State)
}

func TestStrategySourceStopsOnCancel(t *testing.T) {
	t.Parallel()

	server := newRankingServer(t)
	source := newTestSource(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := source.FetchAll(ctx, []domain.DiscoveredEndpoint{{Category: "Law", URL: server.URL + "/law.html"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSniffLinksOrdersByFormat(t *testing.T) {
	t.Parallel()

	src := scanner.NewStaticSource("Overall", "https://example.org/rankings/page.html", `<html>
<script src="bundle.js?v=2"></script>
<a href="export.csv">csv</a>
<a href="/api/data.json">json</a>
<a href="export.csv">dup</a>
<a href="about.html">about</a>
<a href="javascript:void(0)">js</a>
</html>`)
	doc, err := src.Document(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://example.org/api/data.json",
		"https://example.org/rankings/export.csv",
		"https://example.org/rankings/bundle.js?v=2",
	}, sniffLinks(doc, src.URL))
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nirf_endpoints.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  // comments are allowed
  Engineering: "https://example.org/eng.json",
  "Medical": ["https://example.org/a.csv", " ", "https://example.org/b.js"],
}`), 0o600))

	got, err := LoadOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"Engineering": {"https://example.org/eng.json"},
		"Medical":     {"https://example.org/a.csv", "https://example.org/b.js"},
	}, got)

	missing, err := LoadOverrides(filepath.Join(dir, "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, missing)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"Law": 3}`), 0o600))
	_, err = LoadOverrides(bad)
	assert.Error(t, err)

	merged := MergeOverrides(got, map[string][]string{"Engineering": {"https://example.org/inline.csv"}})
	assert.Equal(t, []string{"https://example.org/inline.csv"}, merged["Engineering"])
	assert.True(t, strings.HasSuffix(merged["Medical"][1], "b.js"))
}
