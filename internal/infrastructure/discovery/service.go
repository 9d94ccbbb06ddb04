package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"RankingsScanner/internal/domain"
	"RankingsScanner/internal/ports"
)

// DefaultURLTemplate is expanded with {year}, {category} and {band}.
const DefaultURLTemplate = "https://www.nirfindia.org/Rankings/{year}/{category}Ranking{band}.html"

// DefaultCategories are probed in this order.
var DefaultCategories = []string{
	"Overall", "University", "College", "Engineering", "Management", "Medical",
	"Pharmacy", "Architecture", "Law", "Dental", "Agriculture",
}

// DefaultBands are the rank-band path suffixes; the empty band is the base page.
var DefaultBands = []string{"", "150", "200", "250"}

// Config describes the candidate URL space.
type Config struct {
	URLTemplate string
	Categories  []string
	Bands       []string
	// Refresh ignores any cached artifact and probes again.
	Refresh bool
}

// Service implements EndpointDiscoverer with a load, probe-if-absent, persist lifecycle.
type Service struct {
	prober Prober
	cache  ports.DiscoveryCache
	cfg    Config
	logger *slog.Logger
}

var _ ports.EndpointDiscoverer = (*Service)(nil)

// NewService wires the prober and cache. Empty config fields take the defaults.
func NewService(prober Prober, cache ports.DiscoveryCache, cfg Config, logger *slog.Logger) *Service {
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultURLTemplate
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories
	}
	if len(cfg.Bands) == 0 {
		cfg.Bands = DefaultBands
	}
	return &Service{prober: prober, cache: cache, cfg: cfg, logger: logger}
}

// Discover returns the cached endpoint set when usable, otherwise probes every
// category and band and persists the confirmed pairs. When nothing is confirmed
// it falls back to the base page of every category without caching.
func (s *Service) Discover(ctx context.Context, year int) ([]domain.DiscoveredEndpoint, error) {
	if s.cache != nil && !s.cfg.Refresh {
		cached, ok, err := s.cache.Load(ctx)
		if err != nil {
			s.warn("discovery cache unreadable", "error", err)
		}
		if ok {
			s.info("using cached endpoints", "endpoints", len(cached))
			return cached, nil
		}
	}

	found, err := s.Probe(ctx, year)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		s.warn("no endpoints confirmed, using base pages", "year", year)
		return s.BaseEndpoints(year), nil
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, found); err != nil {
			return nil, fmt.Errorf("save discovery cache: %w", err)
		}
	}
	s.info("endpoints discovered", "endpoints", len(found))
	return found, nil
}

// Probe checks every candidate in category-major order. Probe failures count as
// negatives; only context cancellation stops the sweep.
func (s *Service) Probe(ctx context.Context, year int) ([]domain.DiscoveredEndpoint, error) {
	if s.prober == nil {
		return nil, fmt.Errorf("discovery prober is not configured")
	}

	seen := map[domain.DiscoveredEndpoint]bool{}
	var found []domain.DiscoveredEndpoint
	for _, candidate := range s.Candidates(year) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := s.prober.HasTable(ctx, candidate.URL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.debug("probe failed", "category", candidate.Category, "url", candidate.URL, "error", err)
			continue
		}
		if !ok || seen[candidate] {
			continue
		}
		seen[candidate] = true
		found = append(found, candidate)
	}
	return found, nil
}

// Candidates expands the template for every category and band.
func (s *Service) Candidates(year int) []domain.DiscoveredEndpoint {
	out := make([]domain.DiscoveredEndpoint, 0, len(s.cfg.Categories)*len(s.cfg.Bands))
	for _, category := range s.cfg.Categories {
		for _, band := range s.cfg.Bands {
			out = append(out, domain.DiscoveredEndpoint{
				Category: category,
				URL:      ExpandURL(s.cfg.URLTemplate, year, category, band),
			})
		}
	}
	return out
}

// BaseEndpoints lists the empty-band page of every category.
func (s *Service) BaseEndpoints(year int) []domain.DiscoveredEndpoint {
	out := make([]domain.DiscoveredEndpoint, 0, len(s.cfg.Categories))
	for _, category := range s.cfg.Categories {
		out = append(out, domain.DiscoveredEndpoint{
			Category: category,
			URL:      ExpandURL(s.cfg.URLTemplate, year, category, ""),
		})
	}
	return out
}

// ExpandURL substitutes the template placeholders.
func ExpandURL(template string, year int, category, band string) string {
	return strings.NewReplacer(
		"{year}", strconv.Itoa(year),
		"{category}", category,
		"{band}", band,
	).Replace(template)
}

func (s *Service) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Service) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Service) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
