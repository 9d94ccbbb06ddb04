package parser

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"RankingsScanner/internal/domain"
	"RankingsScanner/internal/extract"
	"RankingsScanner/internal/scanner"
)

// Strategy names, also used in configuration to order the cascade.
const (
	StrategyOverride  = "override"
	StrategyEmbedded  = "embedded"
	StrategyLinked    = "linked"
	StrategyTable     = "table"
	StrategyStrict    = "strict"
	StrategyAlternate = "alternate"
	StrategyGeneric   = "generic"
)

// DefaultOrder is the cascade from most to least structured.
var DefaultOrder = []string{
	StrategyOverride,
	StrategyEmbedded,
	StrategyLinked,
	StrategyTable,
	StrategyStrict,
	StrategyAlternate,
	StrategyGeneric,
}

type payloadFormat int

const (
	formatJSON payloadFormat = iota
	formatCSV
	formatScript
	formatOther
)

var (
	jsonSuffixExpr   = regexp.MustCompile(`(?i)\.json(\?|$)`)
	csvSuffixExpr    = regexp.MustCompile(`(?i)\.csv(\?|$)`)
	scriptSuffixExpr = regexp.MustCompile(`(?i)\.js(\?|$)`)
)

func formatOf(endpoint string) payloadFormat {
	switch {
	case jsonSuffixExpr.MatchString(endpoint):
		return formatJSON
	case csvSuffixExpr.MatchString(endpoint):
		return formatCSV
	case scriptSuffixExpr.MatchString(endpoint):
		return formatScript
	default:
		return formatOther
	}
}

func parsePayload(format payloadFormat, body, category string) []domain.RawRow {
	switch format {
	case formatJSON:
		rows, err := extract.ParseJSON([]byte(body), category)
		if err != nil {
			return nil
		}
		return rows
	case formatCSV:
		return extract.ParseCSV(body, category)
	case formatScript:
		return extract.ParseScript(body, category)
	default:
		return nil
	}
}

// fetchEndpoints tries each endpoint in order and returns the first non-empty row set.
// Unreachable endpoints and unknown formats are skipped.
func fetchEndpoints(ctx context.Context, src *scanner.Source, endpoints []string, logger *slog.Logger) []domain.RawRow {
	for _, endpoint := range endpoints {
		if ctx.Err() != nil {
			return nil
		}
		format := formatOf(endpoint)
		if format == formatOther {
			debug(logger, "skip endpoint with unknown format", "endpoint", endpoint)
			continue
		}
		body, err := src.Fetch(ctx, endpoint)
		if err != nil {
			debug(logger, "endpoint unavailable", "endpoint", endpoint, "error", err)
			continue
		}
		if rows := parsePayload(format, body, src.Category); len(rows) > 0 {
			debug(logger, "endpoint produced rows", "endpoint", endpoint, "rows", len(rows))
			return rows
		}
	}
	return nil
}

// OverrideStrategy fetches user-supplied endpoints for the category before the page is touched.
type OverrideStrategy struct {
	overrides map[string][]string
	logger    *slog.Logger
}

// NewOverrideStrategy wires the category to endpoint override map.
func NewOverrideStrategy(overrides map[string][]string, logger *slog.Logger) *OverrideStrategy {
	return &OverrideStrategy{overrides: overrides, logger: logger}
}

func (s *OverrideStrategy) Name() string { return StrategyOverride }

func (s *OverrideStrategy) Extract(ctx context.Context, src *scanner.Source) ([]domain.RawRow, error) {
	endpoints := s.overrides[src.Category]
	if len(endpoints) == 0 {
		return nil, scanner.ErrMiss
	}
	if rows := fetchEndpoints(ctx, src, endpoints, s.logger); len(rows) > 0 {
		return rows, nil
	}
	return nil, scanner.ErrMiss
}

// EmbeddedStrategy mines object-literal arrays embedded in the page's scripts.
type EmbeddedStrategy struct{}

func (EmbeddedStrategy) Name() string { return StrategyEmbedded }

func (EmbeddedStrategy) Extract(ctx context.Context, src *scanner.Source) ([]domain.RawRow, error) {
	page, err := src.HTML(ctx)
	if err != nil {
		return nil, err
	}
	if rows := extract.ParseScript(page, src.Category); len(rows) > 0 {
		return rows, nil
	}
	return nil, scanner.ErrMiss
}

// LinkedStrategy follows JSON, CSV and script URLs referenced by the page,
// preferring JSON over CSV over scripts.
type LinkedStrategy struct {
	maxLinks int
	logger   *slog.Logger
}

// NewLinkedStrategy caps the number of followed links; maxLinks <= 0 means no cap.
func NewLinkedStrategy(maxLinks int, logger *slog.Logger) *LinkedStrategy {
	return &LinkedStrategy{maxLinks: maxLinks, logger: logger}
}

func (s *LinkedStrategy) Name() string { return StrategyLinked }

func (s *LinkedStrategy) Extract(ctx context.Context, src *scanner.Source) ([]domain.RawRow, error) {
	doc, err := src.Document(ctx)
	if err != nil {
		return nil, err
	}
	candidates := sniffLinks(doc, src.URL)
	if s.maxLinks > 0 && len(candidates) > s.maxLinks {
		candidates = candidates[:s.maxLinks]
	}
	if rows := fetchEndpoints(ctx, src, candidates, s.logger); len(rows) > 0 {
		return rows, nil
	}
	return nil, scanner.ErrMiss
}

// sniffLinks returns the absolute, de-duplicated href and src URLs of doc that
// point at a parseable format, ordered JSON, CSV, script. Document order is kept
// within a format.
func sniffLinks(doc *goquery.Document, pageURL string) []string {
	base, _ := url.Parse(pageURL)

	var raw []string
	for _, attrName := range []string{"href", "src"} {
		doc.Find("[" + attrName + "]").Each(func(_ int, sel *goquery.Selection) {
			if v, ok := sel.Attr(attrName); ok {
				raw = append(raw, strings.TrimSpace(v))
			}
		})
	}

	seen := map[string]struct{}{}
	var links []string
	for _, link := range raw {
		abs, ok := resolveLink(base, link)
		if !ok || formatOf(abs) == formatOther {
			continue
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	}

	sort.SliceStable(links, func(i, j int) bool { return formatOf(links[i]) < formatOf(links[j]) })
	return links
}

func resolveLink(base *url.URL, link string) (string, bool) {
	lowered := strings.ToLower(link)
	if link == "" || strings.HasPrefix(link, "#") || strings.HasPrefix(lowered, "javascript:") || strings.HasPrefix(lowered, "mailto:") {
		return "", false
	}
	ref, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	if base == nil {
		return ref.String(), true
	}
	return base.ResolveReference(ref).String(), true
}

func debug(logger *slog.Logger, msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}
