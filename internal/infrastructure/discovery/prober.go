// Package discovery finds category pages that carry a populated ranking table
// and caches the result between runs.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gocolly/colly/v2"

	"RankingsScanner/internal/infrastructure/fetch"
)

// Prober checks whether a URL serves a populated table.
type Prober interface {
	HasTable(ctx context.Context, url string) (bool, error)
}

// ProberOptions tune the colly prober.
type ProberOptions struct {
	// Interval is the minimum pause between two requests to the same host.
	Interval  time.Duration
	Timeout   time.Duration
	UserAgent string
}

// CollyProber probes pages through a throttled colly collector.
type CollyProber struct {
	collector *colly.Collector
	logger    *slog.Logger
}

// NewCollyProber builds a synchronous collector whose limit rule enforces the
// probe interval across every probe it performs.
func NewCollyProber(opts ProberOptions, logger *slog.Logger) (*CollyProber, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = fetch.DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(opts.Timeout)
	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 1, Delay: opts.Interval}); err != nil {
		return nil, fmt.Errorf("configure probe limit: %w", err)
	}

	return &CollyProber{collector: c, logger: logger}, nil
}

// HasTable reports true only for a successful response whose body holds a table
// with at least one row containing a data cell. Non-2xx responses report false
// together with the error colly produced.
func (p *CollyProber) HasTable(ctx context.Context, url string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c := p.collector.Clone()
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	found := false
	var probeErr error
	c.OnHTML("table tr", func(e *colly.HTMLElement) {
		if e.DOM.ChildrenFiltered("td").Length() > 0 {
			found = true
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		probeErr = err
	})

	if err := c.Visit(url); err != nil {
		return false, fmt.Errorf("probe %s: %w", url, err)
	}
	if probeErr != nil {
		return false, fmt.Errorf("probe %s: %w", url, probeErr)
	}
	if p.logger != nil {
		p.logger.Debug("probed", "url", url, "has_table", found)
	}
	return found, nil
}
