// Package relay downloads finished artifacts from the provider-hosted,
// typically time-limited URLs and hands the bytes to the caller for durable
// storage or inline delivery.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Artifact is the binary output of a successful generation job. Ownership
// transfers to the caller once Fetch returns.
type Artifact struct {
	Data        []byte
	ContentType string
}

// Error indicates the artifact could not be retrieved even though the
// generation itself succeeded. Callers report it separately from a
// provider-side failure; no retry happens here.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("relay: fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("relay: fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *Error) Unwrap() error { return e.Err }

// Options configures a Fetcher.
type Options struct {
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// Fetcher retrieves artifacts over plain HTTP GET.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher constructs a fetcher with an optional injected HTTP client.
func NewFetcher(opts Options) *Fetcher {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Fetcher{httpClient: httpClient}
}

// Fetch downloads the artifact at outputURL. A non-2xx response or transport
// failure yields an *Error.
func (f *Fetcher) Fetch(ctx context.Context, outputURL string) (*Artifact, error) {
	parsed, err := url.Parse(strings.TrimSpace(outputURL))
	if err != nil || parsed.Scheme == "" {
		return nil, &Error{URL: outputURL, Err: errors.New("invalid url")}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, &Error{URL: outputURL, Err: err}
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &Error{URL: outputURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{URL: outputURL, StatusCode: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: outputURL, Err: err}
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &Artifact{Data: data, ContentType: contentType}, nil
}
