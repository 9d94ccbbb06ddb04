package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"RankingsScanner/internal/domain"
	"RankingsScanner/internal/ports"
	"RankingsScanner/internal/ranking"
)

// PipelineDeps wires all driven adapters into the build pipeline.
type PipelineDeps struct {
	Discoverer ports.EndpointDiscoverer
	Source     ports.RankingSource
	Merger     *ranking.Merger
	Enricher   ranking.Enricher
	Writer     ports.DatasetWriter
	Repository ports.CollegeRepository
	Notifier   ports.Notifier
	// Fallback is used when discovery fails or confirms nothing.
	Fallback []domain.DiscoveredEndpoint
	Year     int
	Logger   *slog.Logger
}

// Pipeline implements the discover, extract, merge and publish workflow.
type Pipeline struct {
	discoverer ports.EndpointDiscoverer
	source     ports.RankingSource
	merger     *ranking.Merger
	enricher   ranking.Enricher
	writer     ports.DatasetWriter
	repository ports.CollegeRepository
	notifier   ports.Notifier
	fallback   []domain.DiscoveredEndpoint
	year       int
	logger     *slog.Logger
}

// BuildResult reports what a single build produced.
type BuildResult struct {
	Endpoints []domain.DiscoveredEndpoint
	RawRows   int
	Dataset   domain.Dataset
	Import    *domain.ImportSummary
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	merger := deps.Merger
	if merger == nil {
		merger = ranking.NewMerger(nil, 0)
	}
	return &Pipeline{
		discoverer: deps.Discoverer,
		source:     deps.Source,
		merger:     merger,
		enricher:   deps.Enricher,
		writer:     deps.Writer,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		fallback:   deps.Fallback,
		year:       deps.Year,
		logger:     deps.Logger,
	}
}

// Build runs one full pass. Category failures are absorbed by the source; only
// cancellation and output-write failures abort. Store and notification errors
// are logged and the build still succeeds.
func (p *Pipeline) Build(ctx context.Context) (BuildResult, error) {
	var result BuildResult
	if p.source == nil || p.writer == nil {
		return result, fmt.Errorf("pipeline is missing its source or writer")
	}

	endpoints, err := p.endpoints(ctx)
	if err != nil {
		return result, err
	}
	result.Endpoints = endpoints

	rows, err := p.source.FetchAll(ctx, endpoints)
	if err != nil {
		return result, fmt.Errorf("fetch rankings: %w", err)
	}
	result.RawRows = len(rows)

	merged := p.merger.Merge(rows)
	result.Dataset = p.enricher.BuildDataset(merged)
	p.info("dataset built", "raw_rows", len(rows), "records", result.Dataset.Total)

	if err := p.writer.Write(result.Dataset); err != nil {
		return result, fmt.Errorf("write dataset: %w", err)
	}

	if p.repository != nil {
		summary, err := p.repository.Upsert(ctx, result.Dataset)
		if err != nil {
			p.logError("store load failed", "error", err)
		} else {
			result.Import = &summary
			p.info("store loaded", "run_id", summary.RunID, "created", summary.Created, "updated", summary.Updated)
		}
	}

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, BuildDigest(result.Dataset)); err != nil {
			p.warn("notification failed", "error", err)
		}
	}

	return result, nil
}

func (p *Pipeline) endpoints(ctx context.Context) ([]domain.DiscoveredEndpoint, error) {
	if p.discoverer == nil {
		return p.fallback, nil
	}
	endpoints, err := p.discoverer.Discover(ctx, p.year)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.warn("discovery failed, using base pages", "error", err)
		return p.fallback, nil
	}
	if len(endpoints) == 0 {
		return p.fallback, nil
	}
	return endpoints, nil
}

// CategoryCount is the number of records a source category contributed.
type CategoryCount struct {
	Category string
	Records  int
}

// CountByCategory groups records by source category in the order categories
// first appear.
func CountByCategory(colleges []domain.College) []CategoryCount {
	index := map[string]int{}
	var out []CategoryCount
	for _, c := range colleges {
		cat := ""
		if len(c.Tags) > 0 {
			cat = c.Tags[0]
		}
		i, seen := index[cat]
		if !seen {
			i = len(out)
			index[cat] = i
			out = append(out, CategoryCount{Category: cat})
		}
		out[i].Records++
	}
	return out
}

// BuildDigest renders a short Markdown summary with per-category counts.
func BuildDigest(ds domain.Dataset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Rankings build %s* (%s)\n", ds.LastUpdated, ds.DataVersion)
	for _, cc := range CountByCategory(ds.Colleges) {
		fmt.Fprintf(&b, "- %s: %d\n", cc.Category, cc.Records)
	}
	fmt.Fprintf(&b, "Total: %d", ds.Total)
	return b.String()
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) logError(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
