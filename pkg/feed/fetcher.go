package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/moda-storefront/pkg/errors"
)

const (
	defaultTimeout          = 5 * time.Second
	responseBodyLimit int64 = 1 << 20
)

// ErrUnavailable marks a data source that is not configured or cannot be read.
var ErrUnavailable = errors.New("feed: source unavailable")

// Fetcher returns the raw bytes of an external data document.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Option configures optional fetcher behavior.
type Option func(*options)

type options struct {
	httpClient *http.Client
	timeout    time.Duration
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithTimeout bounds a single fetch.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// New picks a fetcher for location: an http(s) URL, a file path, or nothing.
func New(location string, opts ...Option) Fetcher {
	o := options{timeout: defaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}

	trimmed := strings.TrimSpace(location)
	switch {
	case trimmed == "":
		return unavailable{}
	case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
		return &httpFetcher{url: trimmed, client: o.httpClient, timeout: o.timeout}
	default:
		return fileFetcher{path: trimmed}
	}
}

type unavailable struct{}

func (unavailable) Fetch(context.Context) ([]byte, error) {
	return nil, ErrUnavailable
}

type fileFetcher struct {
	path string
}

func (f fileFetcher) Fetch(context.Context) ([]byte, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return raw, nil
}

type httpFetcher struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

func (h *httpFetcher) Fetch(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build feed request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return raw, nil
}
