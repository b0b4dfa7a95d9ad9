package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ftahirops/xtimeline/engine"
)

// StdinSource names standard input as a source.
const StdinSource = "-"

// FetchError is a non-2xx response from a URL source.
type FetchError struct {
	URL        string
	StatusCode int
	Body       string // first 512 bytes
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

// Fetcher opens sources: local files, "-" for stdin and http(s) URLs.
type Fetcher struct {
	client *http.Client
	stdin  io.Reader
	log    *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds URL fetches, body included.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithStdin replaces os.Stdin as the "-" source.
func WithStdin(r io.Reader) Option {
	return func(f *Fetcher) {
		f.stdin = r
	}
}

// WithLogger sets the logger passed to decoders.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.log = l
	}
}

// NewFetcher creates a Fetcher with a 60s URL timeout.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: 60 * time.Second},
		stdin:  os.Stdin,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsURL reports whether src is fetched over HTTP.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Open returns a reader for src. The caller closes it.
func (f *Fetcher) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	switch {
	case src == StdinSource:
		return io.NopCloser(f.stdin), nil
	case IsURL(src):
		return f.get(ctx, src)
	}
	return os.Open(src)
}

func (f *Fetcher) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.Body, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
}

// Load opens and decodes one source.
func (f *Fetcher) Load(ctx context.Context, src string) (engine.Batch, error) {
	rc, err := f.Open(ctx, src)
	if err != nil {
		return engine.Batch{}, err
	}
	defer rc.Close()
	return Decode(rc, src, f.log)
}
