package builder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klyr/tidylist/internal/cache"
	"github.com/klyr/tidylist/internal/config"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/b.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gzw := gzip.NewWriter(w)
		_, _ = gzw.Write([]byte("||c.com^\n||a.com^\n"))
		_ = gzw.Close()
	})
	mux.HandleFunc("/plain.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("||d.com^\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func loadConfig(t *testing.T, dir, body string) *config.Config {
	t.Helper()
	path := filepath.Join(dir, config.DefaultFileName)
	writeFile(t, path, body)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func newBuilder(t *testing.T, cfg *config.Config) *Builder {
	t.Helper()
	c, err := cache.Open(filepath.Join(cfg.BaseDir(), "cache.json"), cache.ScopeBuilder)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	b, err := New(Options{Config: cfg, Cache: c, Now: func() time.Time { return fixedNow }})
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	return b
}

func TestBuilderRun(t *testing.T) {
	dir := t.TempDir()
	srv := newServer(t)
	writeFile(t, filepath.Join(dir, "src", "a.txt"),
		"[Adblock Plus 2.0]\n! comment\n||a.com^\n!#if env_firefox\n||b.com^\n!#endif\n\n||a.com^  \n")

	cfg := loadConfig(t, dir, `configVersion: 1
builder:
  outputDir: dist
  filterList:
    - filename: general.txt
      header: "! Generated %timestamp%"
      source: [src/a.txt, `+srv.URL+`/b.txt]
      removeDuplicates: true
      metadata:
        title: General
        version: true
        header: Adblock Plus 2.0
        custom: "Homepage: x"
`)

	st, err := newBuilder(t, cfg).Run(context.Background(), false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.Processed != 1 {
		t.Fatalf("unexpected stats %s", st)
	}

	data, err := os.ReadFile(filepath.Join(dir, "dist", "general.txt"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := strings.Join([]string{
		"! Generated Fri, 02 Jan 2026 03:04:05 GMT",
		"[Adblock Plus 2.0]",
		"! Title: General",
		"! Last modified: Fri, 02 Jan 2026 03:04:05 GMT",
		"! Version: 26.01.1845",
		"! Homepage: x",
		"||a.com^",
		"!#if env_firefox",
		"||b.com^",
		"!#endif",
		"||c.com^",
	}, "\n") + "\n"
	if string(data) != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", data, want)
	}

	st, err = newBuilder(t, cfg).Run(context.Background(), false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !st.AllSkipped() {
		t.Fatalf("expected cached list to be skipped, got %s", st)
	}

	st, err = newBuilder(t, cfg).Run(context.Background(), true)
	if err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if st.Processed != 1 {
		t.Fatalf("expected forced rebuild, got %s", st)
	}
}

func TestBuilderFailedSource(t *testing.T) {
	dir := t.TempDir()
	srv := newServer(t)

	cfg := loadConfig(t, dir, `configVersion: 1
builder:
  filterList:
    - filename: broken.txt
      source: [`+srv.URL+`/missing.txt]
    - filename: ok.txt
      source: [`+srv.URL+`/plain.txt]
`)

	st, err := newBuilder(t, cfg).Run(context.Background(), false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.Errored != 1 || st.Processed != 1 {
		t.Fatalf("unexpected stats %s", st)
	}
	if _, err := os.Stat(filepath.Join(dir, "broken.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected no output for a failed list")
	}
	data, err := os.ReadFile(filepath.Join(dir, "ok.txt"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "||d.com^\n" {
		t.Fatalf("unexpected output %q", data)
	}
}

func TestBuilderRequiresFilterList(t *testing.T) {
	cfg := config.Default(t.TempDir())
	if _, err := newBuilder(t, cfg).Run(context.Background(), false); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestClean(t *testing.T) {
	in := []string{
		"[AdGuard]",
		"[uBlock Origin]",
		"[Adblock Plus 2.0]\r",
		"! Title: x",
		"!#include other.txt",
		"!#if env_chromium",
		"!#endif",
		"!#else",
		"##.ad   ",
		"",
		"##.ad",
		"[$path=/x]##.ad",
	}
	want := []string{"!#include other.txt", "!#if env_chromium", "!#endif", "!#else", "##.ad", "[$path=/x]##.ad"}
	if got := Clean(in, true); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := Clean([]string{"##.ad", "##.ad"}, false); len(got) != 2 {
		t.Fatalf("expected duplicates kept, got %q", got)
	}
}

func TestMetadata(t *testing.T) {
	off := false
	got := Metadata(&config.Metadata{Title: "T", DateModified: &off, Custom: "a\nb\n"}, fixedNow)
	want := []string{"! Title: T", "! a", "! b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if Metadata(nil, fixedNow) != nil {
		t.Fatalf("expected no metadata without config")
	}
}

func TestFetchLocalGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.txt.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gzw := gzip.NewWriter(f)
	_, _ = gzw.Write([]byte("||a.com^\n||b.com^\n"))
	if err := gzw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	fetcher := &Fetcher{BaseDir: dir}
	lines, err := fetcher.Fetch(context.Background(), "list.txt.gz")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"||a.com^", "||b.com^"}) {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestFetchTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	fetcher := &Fetcher{Timeout: 50 * time.Millisecond}
	if _, err := fetcher.Fetch(context.Background(), srv.URL+"/slow.txt"); err == nil {
		t.Fatalf("expected timeout error")
	}
}
