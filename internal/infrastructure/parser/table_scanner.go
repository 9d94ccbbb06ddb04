package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"RankingsScanner/internal/domain"
	"RankingsScanner/internal/extract"
	"RankingsScanner/internal/scanner"
)

const defaultDetailDelay = 120 * time.Millisecond

// TableOptions tune the table strategy.
type TableOptions struct {
	SampleRows    int
	ScanAllTables bool
	DetailDelay   time.Duration
}

// TableStrategy maps ranking tables by header labels, inferred columns and
// row positions, following in-row links when a row lacks text fields.
type TableStrategy struct {
	opts   TableOptions
	sleep  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

// NewTableStrategy wires table options; DetailDelay defaults to 120ms.
func NewTableStrategy(opts TableOptions, logger *slog.Logger) *TableStrategy {
	if opts.DetailDelay <= 0 {
		opts.DetailDelay = defaultDetailDelay
	}
	return &TableStrategy{opts: opts, sleep: sleepContext, logger: logger}
}

// Name identifies the strategy inside the registry.
func (t *TableStrategy) Name() string {
	return StrategyTable
}

// Extract scans the page's tables; by default the first table yielding rows wins.
func (t *TableStrategy) Extract(ctx context.Context, src *scanner.Source) ([]domain.RawRow, error) {
	doc, err := src.Document(ctx)
	if err != nil {
		return nil, err
	}

	extractor := &extract.TableExtractor{
		Category:      src.Category,
		SampleRows:    t.opts.SampleRows,
		ScanAllTables: t.opts.ScanAllTables,
		Details:       &detailResolver{src: src, delay: t.opts.DetailDelay, sleep: t.sleep},
		Logger:        t.logger,
	}

	rows := extractor.ExtractDocument(ctx, doc)
	if len(rows) == 0 {
		return nil, scanner.ErrMiss
	}
	return rows, nil
}

// detailResolver loads institution pages linked from ranking rows, pausing
// before every request.
type detailResolver struct {
	src   *scanner.Source
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error
}

func (d *detailResolver) ResolveDetail(ctx context.Context, href string) (extract.Detail, error) {
	detailURL, err := buildDetailURL(d.src.URL, href)
	if err != nil {
		return extract.Detail{}, err
	}
	if err := d.sleep(ctx, d.delay); err != nil {
		return extract.Detail{}, err
	}
	page, err := d.src.Fetch(ctx, detailURL)
	if err != nil {
		return extract.Detail{}, fmt.Errorf("detail page: %w", err)
	}
	return extract.ParseDetailPage(page), nil
}

func buildDetailURL(pageURL, href string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page url %s: %w", pageURL, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid detail link %s: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
