// Package fetch resolves resource identifiers into raw audio bytes. An
// identifier is an opaque string: http(s) URLs are retrieved over the
// network, everything else is treated as a filesystem path.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Common fetch errors
var (
	ErrEmptyResource = errors.New("resource identifier cannot be empty")
	ErrNotFound      = errors.New("resource not found")
)

// Fetcher retrieves the raw bytes behind one resource identifier
type Fetcher interface {
	Fetch(ctx context.Context, resource string) ([]byte, error)
}

// FileFetcher reads resources from a filesystem. The afero abstraction lets
// tests run against an in-memory filesystem.
type FileFetcher struct {
	fs afero.Fs
}

// NewFileFetcher creates a fetcher over the given filesystem
func NewFileFetcher(fs afero.Fs) *FileFetcher {
	return &FileFetcher{fs: fs}
}

// Fetch reads the resource as a file path
func (f *FileFetcher) Fetch(ctx context.Context, resource string) ([]byte, error) {
	if resource == "" {
		return nil, ErrEmptyResource
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimPrefix(resource, "file://")

	slog.Debug("fetching file resource", "path", path)

	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		slog.Debug("file resource not readable", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	}

	slog.Debug("file resource fetched", "path", path, "size_bytes", len(data))
	return data, nil
}

// HTTPFetcher retrieves resources over http(s)
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with a default timeout-bound client
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewHTTPFetcherWithClient creates a fetcher around an injected client
func NewHTTPFetcherWithClient(client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

// Fetch retrieves the resource URL
func (f *HTTPFetcher) Fetch(ctx context.Context, resource string) ([]byte, error) {
	if resource == "" {
		return nil, ErrEmptyResource
	}

	slog.Debug("fetching http resource", "url", resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resource, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", resource, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		slog.Debug("http fetch failed", "url", resource, "error", err)
		return nil, fmt.Errorf("failed to fetch %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("http fetch returned non-OK status",
			"url", resource,
			"status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s: status %d", ErrNotFound, resource, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", resource, err)
	}

	slog.Debug("http resource fetched", "url", resource, "size_bytes", len(data))
	return data, nil
}

// Router dispatches to a fetcher by resource scheme: http(s) URLs go to the
// HTTP fetcher, everything else to the file fetcher.
type Router struct {
	httpFetcher Fetcher
	fileFetcher Fetcher
}

// NewRouter creates a router over the default fetchers
func NewRouter() *Router {
	return &Router{
		httpFetcher: NewHTTPFetcher(),
		fileFetcher: NewFileFetcher(afero.NewOsFs()),
	}
}

// NewRouterWithFetchers creates a router with injected fetchers for testing
func NewRouterWithFetchers(httpFetcher, fileFetcher Fetcher) *Router {
	return &Router{
		httpFetcher: httpFetcher,
		fileFetcher: fileFetcher,
	}
}

// Fetch dispatches the resource identifier to the matching fetcher
func (r *Router) Fetch(ctx context.Context, resource string) ([]byte, error) {
	if resource == "" {
		return nil, ErrEmptyResource
	}

	lower := strings.ToLower(resource)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return r.httpFetcher.Fetch(ctx, resource)
	}
	return r.fileFetcher.Fetch(ctx, resource)
}
