package preload

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
)

// maxResourceBytes caps how much of a fetched body is buffered in memory.
// Larger resources fail the load rather than exhaust the process.
const maxResourceBytes = 64 << 20

// fetchAdapter is the generic-fetch adapter. It routes on the URL scheme:
// http/https through the shared HTTP client, ftp/ftps and sftp through
// single-stream protocol fetches. The typed adapters (script, style, font,
// image) reuse its HTTP fetch path for their bodies.
type fetchAdapter struct {
	client  *http.Client
	cache   *bodyCache
	l       *log.Logger
	schemes map[string]func(ctx context.Context, u *url.URL, opts Options) error
}

func newFetchAdapter(client *http.Client, cache *bodyCache, l *log.Logger) *fetchAdapter {
	f := &fetchAdapter{
		client: client,
		cache:  cache,
		l:      l,
	}
	f.schemes = map[string]func(ctx context.Context, u *url.URL, opts Options) error{
		"http":  f.loadHTTP,
		"https": f.loadHTTP,
		"ftp":   f.loadFTP,
		"ftps":  f.loadFTP,
		"sftp":  f.loadSFTP,
	}
	return f
}

// Load implements Adapter. The scheme is extracted case-insensitively.
func (f *fetchAdapter) Load(ctx context.Context, rawURL string, opts Options) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	fn, ok := f.schemes[scheme]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnsupportedScheme, scheme)
	}
	return fn(ctx, u, opts)
}

func (f *fetchAdapter) loadHTTP(ctx context.Context, u *url.URL, opts Options) error {
	_, err := f.fetchBytes(ctx, u.String(), opts)
	return err
}

// fetchBytes performs the HTTP fetch shared by the typed adapters.
// The body cache, when enabled, is consulted first and written best-effort.
func (f *fetchAdapter) fetchBytes(ctx context.Context, rawURL string, opts Options) ([]byte, error) {
	if f.cache != nil {
		if body, ok := f.cache.get(rawURL); ok {
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if opts.CrossOrigin == CrossOriginAnonymous {
		// anonymous mode: no ambient credentials travel with the request
		req.Header.Del("Cookie")
		req.Header.Del("Authorization")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResourceBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxResourceBytes {
		return nil, fmt.Errorf("resource exceeds %d byte cap", maxResourceBytes)
	}

	if f.cache != nil {
		if err := f.cache.put(rawURL, body); err != nil && f.l != nil {
			f.l.Printf("preload: warning: failed to cache %s: %v", rawURL, err)
		}
	}
	return body, nil
}
