package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Progress reports bytes read so far and the expected total, or -1 when unknown.
type Progress func(read, total int64)

// Fetcher retrieves the raw bytes behind a model URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string, progress Progress) ([]byte, error)
}

// HTTPFetcher loads models over HTTP. Relative URLs resolve against BaseURL.
type HTTPFetcher struct {
	Client  *http.Client
	BaseURL string
}

// Fetch performs a GET and streams the body, reporting progress as bytes arrive.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, progress Progress) ([]byte, error) {
	target, err := f.resolve(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("requesting %s: status %s", target, resp.Status)
	}

	pr := &progressReader{r: resp.Body, total: resp.ContentLength, fn: progress}
	data, err := io.ReadAll(pr)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}
	return data, nil
}

func (f *HTTPFetcher) resolve(rawURL string) (string, error) {
	if f.BaseURL == "" {
		return rawURL, nil
	}
	base, err := url.Parse(f.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// FileFetcher loads models from disk. Accepts plain paths and file:// URLs;
// relative paths resolve against Root.
type FileFetcher struct {
	Root string
}

// Fetch reads the whole file and reports a single progress step.
func (f *FileFetcher) Fetch(ctx context.Context, rawURL string, progress Progress) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimPrefix(rawURL, "file://")
	if !filepath.IsAbs(path) && f.Root != "" {
		path = filepath.Join(f.Root, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if progress != nil {
		progress(int64(len(data)), int64(len(data)))
	}
	return data, nil
}

// SchemeFetcher routes file:// URLs and bare paths to File, everything else to HTTP.
type SchemeFetcher struct {
	HTTP *HTTPFetcher
	File *FileFetcher
}

// Fetch dispatches on the URL scheme.
func (f *SchemeFetcher) Fetch(ctx context.Context, rawURL string, progress Progress) ([]byte, error) {
	remote := strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
	if !remote && f.HTTP != nil && f.HTTP.BaseURL != "" && !strings.HasPrefix(rawURL, "file://") {
		remote = true
	}
	if remote {
		if f.HTTP == nil {
			return nil, fmt.Errorf("no HTTP fetcher for %s", rawURL)
		}
		return f.HTTP.Fetch(ctx, rawURL, progress)
	}
	file := f.File
	if file == nil {
		file = &FileFetcher{}
	}
	return file.Fetch(ctx, rawURL, progress)
}

type progressReader struct {
	r     io.Reader
	read  int64
	total int64
	fn    Progress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.fn != nil {
			p.fn(p.read, p.total)
		}
	}
	return n, err
}
