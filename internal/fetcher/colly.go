package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// Colly fetches the page through a fresh collector on every call.
type Colly struct {
	log     *slog.Logger
	destURL string
	timeout time.Duration
}

// NewColly creates a Colly fetcher for destURL.
func NewColly(log *slog.Logger, destURL string, timeout time.Duration) *Colly {
	return &Colly{log: log, destURL: destURL, timeout: timeout}
}

// FetchHTML implements HTMLFetcher.
func (f *Colly) FetchHTML(ctx context.Context) ([]byte, error) {
	const opn = "fetcher.Colly.FetchHTML"
	log := f.log.With("op", opn)

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.timeout)

	c.OnRequest(func(r *colly.Request) {
		for k, v := range browserHeaders() {
			r.Headers.Set(k, v)
		}
	})

	var (
		body     []byte
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode != http.StatusOK {
			fetchErr = statusError(r.StatusCode, fmt.Sprintf("%d %s", r.StatusCode, http.StatusText(r.StatusCode)))
			return
		}
		body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = statusError(r.StatusCode, fmt.Sprintf("%d %s", r.StatusCode, http.StatusText(r.StatusCode)))
			return
		}
		fetchErr = err
	})

	log.DebugContext(ctx, "Visiting page", "URL", f.destURL)

	if err := c.Visit(f.destURL); err != nil && fetchErr == nil {
		fetchErr = err
	}

	if fetchErr != nil {
		return nil, fmt.Errorf("%s: failed to fetch %s: %w", opn, f.destURL, fetchErr)
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("%s: %w", opn, ErrEmptyBody)
	}

	log.InfoContext(ctx, "Successfully received http response", "bytes", len(body))

	return body, nil
}
