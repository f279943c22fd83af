package builder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klyr/tidylist/internal/config"
	"github.com/klyr/tidylist/internal/fileutil"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultFetchTimeout = 5 * time.Second
	maxSourceBytes      = 64 << 20
)

// Fetcher reads builder sources from disk or over http(s).
type Fetcher struct {
	Client  *http.Client
	Timeout time.Duration
	BaseDir string
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

// FetchAll reads every source concurrently and returns their lines in
// declaration order. The first failure cancels the rest.
func (f *Fetcher) FetchAll(ctx context.Context, sources []string) ([]string, error) {
	results := make([][]string, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			lines, err := f.Fetch(ctx, src)
			if err != nil {
				return fmt.Errorf("read %s: %w", src, err)
			}
			results[i] = lines
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []string
	for _, lines := range results {
		out = append(out, lines...)
	}
	return out, nil
}

func (f *Fetcher) Fetch(ctx context.Context, src string) ([]string, error) {
	var (
		data []byte
		err  error
	)
	if config.IsRemote(src) {
		data, err = f.fetchRemote(ctx, src)
	} else {
		data, err = f.readLocal(src)
	}
	if err != nil {
		return nil, err
	}
	return fileutil.SplitLines(string(data)), nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" || strings.HasSuffix(strings.ToLower(req.URL.Path), ".gz") {
		gzr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzr.Close()
		body = gzr
	}
	return readLimited(body)
}

func (f *Fetcher) readLocal(src string) ([]byte, error) {
	path := src
	if !filepath.IsAbs(path) && f.BaseDir != "" {
		path = filepath.Join(f.BaseDir, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var body io.Reader = file
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gzr, err := gzip.NewReader(file)
		if err != nil {
			return nil, err
		}
		defer gzr.Close()
		body = gzr
	}
	return readLimited(body)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSourceBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxSourceBytes {
		return nil, fmt.Errorf("source exceeds %d bytes", maxSourceBytes)
	}
	return data, nil
}
