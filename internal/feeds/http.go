// Package feeds fetches live prices from AMFI (mutual fund NAVs) and Yahoo
// Finance (stocks, gold, and USDINR) into the price cache.
package feeds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "portfolio-dashboard/internal/errors"
)

const (
	// DefaultAMFIURL is the daily NAV file published by AMFI.
	DefaultAMFIURL = "https://www.amfiindia.com/spages/NAVAll.txt"
	// DefaultYahooURL is the Yahoo Finance v8 chart endpoint; the symbol is
	// appended as the last path segment.
	DefaultYahooURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

	userAgent = "portfolio-dashboard/1.0"

	// maxBodySize bounds a response read; NAVAll.txt is a few MB.
	maxBodySize = 32 << 20
)

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d from %s", e.StatusCode, e.URL)
}

// Retryable reports whether another attempt could succeed: server errors,
// rate limiting, and transport failures are retried. Other client errors
// and answers without a price are not.
func Retryable(err error) bool {
	if errors.Is(err, apperrors.ErrPriceUnavailable) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500 || se.StatusCode == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled)
}

// NewHTTPClient returns the client used by both fetchers.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", "no-store")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}
