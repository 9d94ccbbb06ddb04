package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"RankingsScanner/internal/ports"
)

// DefaultAPIBase is the Telegram bot API root.
const DefaultAPIBase = "https://api.telegram.org"

// Notifier sends build summaries to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	client   *resty.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. An empty apiBase uses
// the public endpoint.
func NewNotifier(botToken, chatID, apiBase string) *Notifier {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   resty.New().SetBaseURL(apiBase).SetTimeout(5 * time.Second),
	}
}

// PublishDigest posts a Markdown message to Telegram.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetPathParam("token", n.botToken).
		SetFormData(map[string]string{
			"chat_id":    n.chatID,
			"text":       digest,
			"parse_mode": "Markdown",
		}).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("telegram error: %s", resp.Status())
	}

	return nil
}
