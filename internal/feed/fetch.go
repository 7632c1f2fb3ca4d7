package feed

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds a single feed download.
const DefaultTimeout = 10 * time.Second

// Fetcher downloads feed documents. It never retries: a failed download is
// reported to the caller straight away.
type Fetcher struct {
	client  *resty.Client
	timeout time.Duration
}

// NewFetcher returns a Fetcher whose downloads are cut off after timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/xml, text/xml;q=0.9, */*;q=0.1").
		SetHeader("User-Agent", "venuehub-feed/1.0")
	return &Fetcher{client: client, timeout: timeout}
}

// Fetch downloads url and returns the raw body. Transport errors, timeouts and
// non-2xx statuses all come back as *FetchFailure.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &FetchFailure{URL: url, Cause: err}
	}
	if !resp.IsSuccess() {
		return nil, &FetchFailure{URL: url, Status: resp.StatusCode()}
	}
	return resp.Body(), nil
}
