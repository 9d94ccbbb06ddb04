package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RankingsScanner/internal/domain"
)

type fakeStrategy struct {
	name  string
	rows  []domain.RawRow
	err   error
	calls int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Extract(_ context.Context, _ *Source) ([]domain.RawRow, error) {
	f.calls++
	return f.rows, f.err
}

type countingFetcher struct {
	body  string
	err   error
	calls int
}

func (c *countingFetcher) FetchText(_ context.Context, _ string) (string, error) {
	c.calls++
	return c.body, c.err
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&fakeStrategy{name: "table"})

	s, err := reg.Resolve("table")
	require.NoError(t, err)
	assert.Equal(t, "table", s.Name())

	_, err = reg.Resolve("missing")
	assert.Error(t, err)

	_, err = reg.Cascade([]string{"table", "missing"}, nil)
	assert.Error(t, err)
}

func TestCascadeShortCircuitsOnFirstRows(t *testing.T) {
	t.Parallel()

	row := domain.RawRow{Rank: 1, Name: "A", City: "B", State: "C", Score: 1}
	miss := &fakeStrategy{name: "override", err: ErrMiss}
	empty := &fakeStrategy{name: "embedded"}
	broken := &fakeStrategy{name: "linked", err: errors.New("bad payload")}
	hit := &fakeStrategy{name: "table", rows: []domain.RawRow{row}}
	never := &fakeStrategy{name: "strict", rows: []domain.RawRow{row}}

	reg := NewRegistry()
	for _, s := range []*fakeStrategy{miss, empty, broken, hit, never} {
		reg.Register(s)
	}
	cascade, err := reg.Cascade([]string{"override", "embedded", "linked", "table", "strict"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"override", "embedded", "linked", "table", "strict"}, cascade.Names())

	rows, name, err := cascade.Run(context.Background(), NewStaticSource("Law", "http://x", "<html></html>"))
	require.NoError(t, err)
	assert.Equal(t, "table", name)
	assert.Equal(t, []domain.RawRow{row}, rows)
	assert.Equal(t, 0, never.calls)
	assert.Equal(t, 1, broken.calls)
}

func TestCascadeStopsWhenSourceUnavailable(t *testing.T) {
	t.Parallel()

	down := &fakeStrategy{name: "embedded", err: ErrSourceUnavailable}
	after := &fakeStrategy{name: "table"}

	_, name, err := NewCascade(nil, down, after).Run(context.Background(), NewStaticSource("Law", "http://x", ""))
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, "embedded", name)
	assert.Equal(t, 0, after.calls)
}

func TestCascadeAllMiss(t *testing.T) {
	t.Parallel()

	_, _, err := NewCascade(nil, &fakeStrategy{name: "a"}, &fakeStrategy{name: "b", err: ErrMiss}).
		Run(context.Background(), NewStaticSource("Law", "http://x", ""))
	assert.ErrorIs(t, err, ErrMiss)
}

func TestSourceFetchesOnce(t *testing.T) {
	t.Parallel()

	fetcher := &countingFetcher{body: "<table><tr><td>1</td></tr></table>"}
	src := NewSource("Law", "http://x", fetcher)

	for i := 0; i < 3; i++ {
		doc, err := src.Document(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, doc.Find("td").Length())
	}
	assert.Equal(t, 1, fetcher.calls)
}

func TestSourceWrapsFetchErrors(t *testing.T) {
	t.Parallel()

	src := NewSource("Law", "http://x", &countingFetcher{err: errors.New("503")})
	_, err := src.HTML(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorContains(t, err, "503")
}
