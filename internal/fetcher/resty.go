package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Resty fetches the page with a plain HTTP GET.
type Resty struct {
	log     *slog.Logger
	client  *resty.Client
	destURL string
}

// NewResty creates a Resty fetcher for destURL.
func NewResty(log *slog.Logger, destURL string, timeout time.Duration) *Resty {
	client := resty.New().
		SetTimeout(timeout).
		SetHeaders(browserHeaders())

	return &Resty{log: log, client: client, destURL: destURL}
}

// FetchHTML implements HTMLFetcher.
func (f *Resty) FetchHTML(ctx context.Context) ([]byte, error) {
	const opn = "fetcher.Resty.FetchHTML"
	log := f.log.With("op", opn)

	log.DebugContext(ctx, "Send request", "method", http.MethodGet, "URL", f.destURL)

	resp, err := f.client.R().SetContext(ctx).Get(f.destURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to request %s: %w", opn, f.destURL, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s: %w", opn, statusError(resp.StatusCode(), resp.Status()))
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("%s: %w", opn, ErrEmptyBody)
	}

	log.InfoContext(ctx, "Successfully received http response", "status code", resp.StatusCode(), "bytes", len(body))

	return body, nil
}
