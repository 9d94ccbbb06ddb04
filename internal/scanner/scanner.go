package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"RankingsScanner/internal/domain"
	"RankingsScanner/internal/ports"
)

var (
	// ErrMiss reports that a strategy found no usable rows; the cascade moves on.
	ErrMiss = errors.New("no rows extracted")
	// ErrSourceUnavailable reports that the category page itself could not be fetched.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// Source is one category page. Its body is fetched at most once, on first use,
// and shared by every strategy of the cascade.
type Source struct {
	Category string
	URL      string

	fetcher ports.PageFetcher

	once sync.Once
	html string
	doc  *goquery.Document
	err  error
}

// NewSource binds a category page to the fetcher used to load it.
func NewSource(category, url string, fetcher ports.PageFetcher) *Source {
	return &Source{Category: category, URL: url, fetcher: fetcher}
}

// NewStaticSource wraps an already loaded page.
func NewStaticSource(category, url, html string) *Source {
	src := &Source{Category: category, URL: url}
	src.once.Do(func() { src.load(html, nil) })
	return src
}

// HTML returns the raw page body.
func (s *Source) HTML(ctx context.Context) (string, error) {
	s.once.Do(func() {
		if s.fetcher == nil {
			s.load("", fmt.Errorf("%w: no fetcher for %s", ErrSourceUnavailable, s.URL))
			return
		}
		s.load(s.fetcher.FetchText(ctx, s.URL))
	})
	return s.html, s.err
}

// Document returns the parsed page.
func (s *Source) Document(ctx context.Context) (*goquery.Document, error) {
	if _, err := s.HTML(ctx); err != nil {
		return nil, err
	}
	return s.doc, nil
}

// Fetch loads another URL through the source's fetcher, for strategies that
// follow links off the page.
func (s *Source) Fetch(ctx context.Context, url string) (string, error) {
	if s.fetcher == nil {
		return "", fmt.Errorf("no fetcher for %s", url)
	}
	return s.fetcher.FetchText(ctx, url)
}

func (s *Source) load(html string, err error) {
	if err != nil {
		if !errors.Is(err, ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		s.err = err
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		s.err = fmt.Errorf("%w: parse %s: %w", ErrSourceUnavailable, s.URL, err)
		return
	}
	s.html = html
	s.doc = doc
}

// Strategy is one extraction method of the fallback cascade. It returns ErrMiss
// (or no rows) when it found nothing, letting the next strategy run.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, src *Source) ([]domain.RawRow, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("strategy %s is not registered", name)
}

// Cascade builds an ordered chain from registered strategy names.
func (r *Registry) Cascade(names []string, logger *slog.Logger) (*Cascade, error) {
	if len(names) == 0 {
		return nil, errors.New("cascade needs at least one strategy")
	}
	chain := make([]Strategy, 0, len(names))
	for _, name := range names {
		strategy, err := r.Resolve(name)
		if err != nil {
			return nil, err
		}
		chain = append(chain, strategy)
	}
	return &Cascade{strategies: chain, logger: logger}, nil
}

// Cascade runs strategies in order and stops at the first one yielding rows.
type Cascade struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewCascade chains strategies directly, without a registry.
func NewCascade(logger *slog.Logger, strategies ...Strategy) *Cascade {
	return &Cascade{strategies: strategies, logger: logger}
}

// Names lists the strategies in evaluation order.
func (c *Cascade) Names() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Run returns the rows of the first strategy that produced any, together with
// that strategy's name. Strategy failures other than an unavailable source are
// logged and treated as misses. When every strategy misses, ErrMiss is returned.
func (c *Cascade) Run(ctx context.Context, src *Source) ([]domain.RawRow, string, error) {
	for _, strategy := range c.strategies {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		rows, err := strategy.Extract(ctx, src)
		switch {
		case errors.Is(err, ErrSourceUnavailable):
			return nil, strategy.Name(), err
		case errors.Is(err, ErrMiss):
			c.debug("strategy missed", "category", src.Category, "strategy", strategy.Name())
			continue
		case err != nil:
			c.debug("strategy failed", "category", src.Category, "strategy", strategy.Name(), "error", err)
			continue
		case len(rows) == 0:
			c.debug("strategy missed", "category", src.Category, "strategy", strategy.Name())
			continue
		}
		return rows, strategy.Name(), nil
	}
	return nil, "", ErrMiss
}

func (c *Cascade) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
