package astro

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultTimeout for catalog HTTP requests.
const DefaultTimeout = 30 * time.Second

// Fetcher opens catalogs from files, shard directories, HTTP(S) URLs or the
// embedded default. It makes one attempt per call; retrying is left to the
// caller.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a catalog fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{
			Timeout: f.timeout,
		}
	}

	return f
}

// FetchResult contains the result of a fetch operation.
type FetchResult struct {
	Catalog   *Catalog
	Source    string
	FetchedAt time.Time
	Duration  time.Duration
	Error     error
}

// Fetch opens the catalog named by source:
//
//	""                 embedded bright-star catalog
//	http(s)://...      one-shot GET of a catalog document
//	directory path     shard directory (see LoadShards)
//	file path          catalog document
func (f *Fetcher) Fetch(ctx context.Context, source string) FetchResult {
	start := time.Now()
	result := FetchResult{
		Source:    source,
		FetchedAt: start,
	}

	cat, err := f.open(ctx, source)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		return result
	}
	result.Catalog = cat
	return result
}

func (f *Fetcher) open(ctx context.Context, source string) (*Catalog, error) {
	switch {
	case source == "":
		return DefaultCatalog(), nil

	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		raw, err := f.fetchRaw(ctx, source)
		if err != nil {
			return nil, err
		}
		cat, err := Load(raw)
		if err != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
		return cat, nil
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if info.IsDir() {
		return LoadShards(ctx, os.DirFS(source), ".")
	}

	raw, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	cat, err := Load(raw)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", source, err)
	}
	return cat, nil
}

func (f *Fetcher) fetchRaw(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "ls-starfield/1.0 (star map viewer)")
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}
