// Package fetcher retrieves the raw markup of the price page.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Supported retrieval modes.
const (
	ModeResty = "resty"
	ModeColly = "colly"
)

const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguage = "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7"
)

var (
	// ErrUnexpectedStatus is returned for any non-200 response.
	ErrUnexpectedStatus = errors.New("status code error")
	// ErrUnknownMode is returned by New for an unsupported mode.
	ErrUnknownMode = errors.New("unknown fetch mode")
	// ErrEmptyBody is returned when the page answered 200 with no content.
	ErrEmptyBody = errors.New("empty response body")
)

// HTMLFetcher returns the page markup.
type HTMLFetcher interface {
	FetchHTML(ctx context.Context) ([]byte, error)
}

// browserHeaders are sent with every request so the source serves the regular page.
func browserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          acceptHeader,
		"Accept-Language": acceptLanguage,
	}
}

// New returns the fetcher for mode.
func New(log *slog.Logger, mode, destURL string, timeout time.Duration) (HTMLFetcher, error) {
	switch mode {
	case ModeResty, "":
		return NewResty(log, destURL, timeout), nil
	case ModeColly:
		return NewColly(log, destURL, timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func statusError(code int, status string) error {
	return fmt.Errorf("%w: [%d] %s", ErrUnexpectedStatus, code, status)
}
