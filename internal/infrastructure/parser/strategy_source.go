package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"RankingsScanner/internal/domain"
	"RankingsScanner/internal/ports"
	"RankingsScanner/internal/scanner"
)

var tracer = otel.Tracer("rankingsscanner/parser")

// Options configure the default strategy set.
type Options struct {
	Overrides     map[string][]string
	States        []string
	SampleRows    int
	ScanAllTables bool
	DetailDelay   time.Duration
	MaxLinks      int
}

// RegisterDefaults registers every built-in extraction strategy.
func RegisterDefaults(reg *scanner.Registry, opts Options, logger *slog.Logger) {
	reg.Register(NewOverrideStrategy(opts.Overrides, logger))
	reg.Register(EmbeddedStrategy{})
	reg.Register(NewLinkedStrategy(opts.MaxLinks, logger))
	reg.Register(NewTableStrategy(TableOptions{
		SampleRows:    opts.SampleRows,
		ScanAllTables: opts.ScanAllTables,
		DetailDelay:   opts.DetailDelay,
	}, logger))
	reg.Register(StrictStrategy{})
	reg.Register(AlternateStrategy{})
	reg.Register(NewGenericStrategy(opts.States))
}

// StrategySource implements RankingSource by running the extraction cascade
// over every category page in turn.
type StrategySource struct {
	cascade *scanner.Cascade
	fetcher ports.PageFetcher
	logger  *slog.Logger
}

var _ ports.RankingSource = (*StrategySource)(nil)

// NewStrategySource wires the cascade with the fetcher used for pages and endpoints.
func NewStrategySource(cascade *scanner.Cascade, fetcher ports.PageFetcher, log *slog.Logger) *StrategySource {
	return &StrategySource{
		cascade: cascade,
		fetcher: fetcher,
		logger:  log,
	}
}

// FetchAll processes endpoints sequentially. A category that fails is logged and
// skipped; rows already collected are kept. Only context cancellation aborts the run.
func (s *StrategySource) FetchAll(ctx context.Context, endpoints []domain.DiscoveredEndpoint) ([]domain.RawRow, error) {
	if s.cascade == nil {
		return nil, fmt.Errorf("extraction cascade is not configured")
	}

	s.debug("fetch all", "endpoints", len(endpoints), "strategies", s.cascade.Names())

	var aggregated []domain.RawRow
	for _, ep := range endpoints {
		if err := ctx.Err(); err != nil {
			return aggregated, err
		}
		rows, err := s.fetchCategory(ctx, ep)
		if err != nil {
			if ctx.Err() != nil {
				return aggregated, ctx.Err()
			}
			s.warn("category failed", "category", ep.Category, "url", ep.URL, "error", err)
			continue
		}
		aggregated = append(aggregated, rows...)
	}

	s.debug("strategy source done", "total_rows", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) fetchCategory(ctx context.Context, ep domain.DiscoveredEndpoint) ([]domain.RawRow, error) {
	ctx, span := tracer.Start(ctx, "parser.fetchCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category", ep.Category), attribute.String("url", ep.URL))

	src := scanner.NewSource(ep.Category, ep.URL, s.fetcher)
	rows, strategy, err := s.cascade.Run(ctx, src)
	if err != nil {
		if !errors.Is(err, scanner.ErrMiss) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "category failed")
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("strategy", strategy), attribute.Int("rows", len(rows)))
	if s.logger != nil {
		s.logger.Info("category parsed", "category", ep.Category, "strategy", strategy, "rows", len(rows))
	}
	return rows, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
