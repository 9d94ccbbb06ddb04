package ports

import (
	"context"
	"time"

	"RankingsScanner/internal/domain"
)

// PageFetcher retrieves remote documents as text.
type PageFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// RankingSource extracts raw ranking rows for the discovered category pages.
type RankingSource interface {
	FetchAll(ctx context.Context, endpoints []domain.DiscoveredEndpoint) ([]domain.RawRow, error)
}

// EndpointDiscoverer finds the category pages that carry a populated ranking table.
type EndpointDiscoverer interface {
	Discover(ctx context.Context, year int) ([]domain.DiscoveredEndpoint, error)
}

// DiscoveryCache persists the discovered endpoint set between runs.
type DiscoveryCache interface {
	// Load reports ok=false when no usable cache exists.
	Load(ctx context.Context) (endpoints []domain.DiscoveredEndpoint, ok bool, err error)
	Save(ctx context.Context, endpoints []domain.DiscoveredEndpoint) error
}

// CollegeRepository stores canonical records and serves filtered queries.
type CollegeRepository interface {
	Upsert(ctx context.Context, dataset domain.Dataset) (domain.ImportSummary, error)
	Query(ctx context.Context, filter domain.CollegeFilter) ([]domain.College, error)
}

// DatasetWriter emits the output artifact.
type DatasetWriter interface {
	Write(dataset domain.Dataset) error
}

// Notifier streams run summaries to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
