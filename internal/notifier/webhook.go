package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const webhookUserAgent = "GoldPriceMonitor/1.0"

var (
	// ErrNoWebhookURL is returned when delivery is attempted without a destination.
	ErrNoWebhookURL = errors.New("webhook url is not configured")
	// ErrWebhookStatus is returned when the receiver answers with a non-2xx status.
	ErrWebhookStatus = errors.New("webhook rejected payload")
)

// Webhook posts payloads as JSON to a single URL.
type Webhook struct {
	log    *slog.Logger
	client *resty.Client
	url    string
}

// NewWebhook creates a webhook notifier.
func NewWebhook(log *slog.Logger, url string, timeout time.Duration) *Webhook {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", webhookUserAgent)

	return &Webhook{log: log, client: client, url: url}
}

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, payload *Payload) error {
	const opn = "notifier.Webhook.Notify"
	log := w.log.With("op", opn)

	if w.url == "" {
		return fmt.Errorf("%s: %w", opn, ErrNoWebhookURL)
	}

	log.DebugContext(ctx, "Sending webhook", "url", w.url, "payload_id", payload.ID)

	resp, err := w.client.R().SetContext(ctx).SetBody(payload).Post(w.url)
	if err != nil {
		return fmt.Errorf("%s: failed to post to %s: %w", opn, w.url, err)
	}

	if resp.IsError() {
		return fmt.Errorf("%s: %w: [%d] %s", opn, ErrWebhookStatus, resp.StatusCode(), resp.Status())
	}

	log.InfoContext(ctx, "Webhook delivered", "status", resp.StatusCode(), "payload_id", payload.ID)

	return nil
}
