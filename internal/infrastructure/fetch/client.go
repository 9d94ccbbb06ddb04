// Package fetch retrieves ranking pages and payloads with browser-like headers
// and linear-backoff retries.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"RankingsScanner/internal/ports"
)

var tracer = otel.Tracer("rankingsscanner/fetch")

const (
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"
	defaultLanguage  = "en-US,en;q=0.9"

	defaultAttempts  = 3
	defaultBaseDelay = 600 * time.Millisecond
	defaultTimeout   = 30 * time.Second
)

// FetchError is returned once every attempt for a URL has failed.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options tune the client; zero values fall back to defaults.
type Options struct {
	Attempts         int
	BaseDelay        time.Duration
	Timeout          time.Duration
	UserAgent        string
	CloudflareBypass bool
}

// Client fetches text documents. Failed attempts are retried after
// BaseDelay multiplied by the attempt number.
type Client struct {
	http      *resty.Client
	attempts  int
	baseDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	logger    *slog.Logger
}

var _ ports.PageFetcher = (*Client)(nil)

// NewClient builds a resty-backed client with the browser header set.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.Attempts <= 0 {
		opts.Attempts = defaultAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaultBaseDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeaders(map[string]string{
		"User-Agent":      opts.UserAgent,
		"Accept":          defaultAccept,
		"Accept-Language": defaultLanguage,
		"Connection":      "keep-alive",
	})
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	return &Client{
		http:      client,
		attempts:  opts.Attempts,
		baseDelay: opts.BaseDelay,
		sleep:     sleepContext,
		logger:    logger,
	}
}

// FetchText returns the body of url. Transport errors, non-2xx statuses and
// empty bodies all count as failed attempts.
func (c *Client) FetchText(ctx context.Context, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "fetch.FetchText")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	var (
		lastErr error
		made    int
	)
	for attempt := 1; attempt <= c.attempts; attempt++ {
		made = attempt
		body, err := c.once(ctx, url)
		if err == nil {
			span.SetAttributes(attribute.Int("attempts", attempt))
			return body, nil
		}
		lastErr = err
		c.debug("fetch attempt failed", "url", url, "attempt", attempt, "error", err)

		if attempt == c.attempts {
			break
		}
		if err := c.sleep(ctx, c.baseDelay*time.Duration(attempt)); err != nil {
			lastErr = err
			break
		}
	}

	fetchErr := &FetchError{URL: url, Attempts: made, Err: lastErr}
	span.RecordError(fetchErr)
	span.SetStatus(codes.Error, "fetch failed")
	return "", fetchErr
}

func (c *Client) once(ctx context.Context, url string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("unexpected status %s", resp.Status())
	}
	body := resp.String()
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("empty body")
	}
	return body, nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
