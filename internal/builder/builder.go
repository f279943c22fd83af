package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klyr/tidylist/internal/cache"
	"github.com/klyr/tidylist/internal/config"
	"github.com/klyr/tidylist/internal/fileutil"
	"github.com/klyr/tidylist/internal/logging"
	"github.com/klyr/tidylist/internal/observability"
	"github.com/klyr/tidylist/internal/stats"
)

type Options struct {
	Config  *config.Config
	Cache   *cache.Cache
	Fetcher *Fetcher

	Logger  *logging.RunLogger
	Metrics *observability.Metrics
	Out     io.Writer
	Now     func() time.Time
}

// Builder assembles the configured filter lists from their sources.
type Builder struct {
	opts Options
}

func New(opts Options) (*Builder, error) {
	if opts.Config == nil || opts.Cache == nil {
		return nil, fmt.Errorf("builder: config and cache are required")
	}
	if opts.Fetcher == nil {
		opts.Fetcher = &Fetcher{BaseDir: opts.Config.BaseDir()}
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Builder{opts: opts}, nil
}

func (b *Builder) Run(ctx context.Context, force bool) (stats.Stats, error) {
	var st stats.Stats

	cfg := b.opts.Config
	if err := cfg.ValidateBuilder(); err != nil {
		return st, err
	}
	outputDir := cfg.OutputDir()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return st, fmt.Errorf("create output dir: %w", err)
	}

	outputs := make([]string, len(cfg.Builder.FilterList))
	for i, list := range cfg.Builder.FilterList {
		outputs[i] = filepath.Join(outputDir, list.Filename)
	}

	b.opts.Cache.Repository().SetScope(cache.ScopeBuilder)
	if err := b.opts.Cache.PrepareForRun(outputs, force); err != nil {
		return st, err
	}

	for i, list := range cfg.Builder.FilterList {
		if err := ctx.Err(); err != nil {
			if saveErr := b.opts.Cache.Save(); saveErr != nil {
				return st, saveErr
			}
			return st, err
		}

		event := b.build(ctx, outputs[i], list, force)
		st.Record(event.Status)
		b.record(event)
	}

	if err := b.opts.Cache.Save(); err != nil {
		return st, err
	}
	return st, nil
}

func (b *Builder) build(ctx context.Context, output string, list config.FilterList, force bool) logging.Event {
	start := time.Now()
	event := logging.Event{Timestamp: start.UTC(), Scope: cache.ScopeBuilder, Path: output}
	finish := func(status string, err error) logging.Event {
		event.Status = status
		event.DurationMS = time.Since(start).Milliseconds()
		if err != nil {
			event.Error = err.Error()
		}
		return event
	}

	raw, err := b.opts.Fetcher.FetchAll(ctx, list.Source)
	if err != nil {
		return finish(logging.StatusError, err)
	}
	event.RulesIn = len(raw)

	content := Clean(raw, list.RemoveDuplicates)
	event.RulesOut = len(content)

	hash := SourceHash(list, content)
	if !force && b.opts.Cache.IsValid(output, hash) {
		return finish(logging.StatusSkipped, nil)
	}

	now := b.opts.Now()
	if err := fileutil.WriteAtomic(output, []byte(Render(list, content, now)), 0o644); err != nil {
		return finish(logging.StatusError, fmt.Errorf("write: %w", err))
	}
	b.opts.Cache.Set(output, cache.Entry{Reference: hash})
	return finish(logging.StatusProcessed, nil)
}

// Render produces the final list text with a single trailing newline.
func Render(list config.FilterList, content []string, now time.Time) string {
	parts := make([]string, 0, len(content)+8)
	parts = append(parts, Header(list.Header, now))
	parts = append(parts, Metadata(list.Metadata, now)...)
	parts = append(parts, content...)
	return strings.TrimLeft(strings.Join(parts, "\n"), " \t\r\n") + "\n"
}

// SourceHash identifies the inputs of a list: the header template, the
// metadata settings and the cleaned content.
func SourceHash(list config.FilterList, content []string) string {
	var sb strings.Builder
	sb.WriteString(list.Header)
	sb.WriteByte('\n')
	if m := list.Metadata; m != nil {
		sb.WriteString(m.Header + "\n" + m.Title + "\n" + m.Custom + "\n")
		sb.WriteString(strconv.FormatBool(m.Version) + strconv.FormatBool(m.ShowDateModified()) + "\n")
	}
	sb.WriteString(strings.Join(content, "\n"))
	return cache.Hash(sb.String())
}

func (b *Builder) record(event logging.Event) {
	b.opts.Metrics.Observe(event)
	if err := b.opts.Logger.Write(event); err != nil {
		_, _ = fmt.Fprintf(b.opts.Out, "run log: %v\n", err)
	}

	switch event.Status {
	case logging.StatusError:
		_, _ = fmt.Fprintf(b.opts.Out, "error %s: %s\n", event.Path, event.Error)
	default:
		_, _ = fmt.Fprintf(b.opts.Out, "%s %s\n", event.Status, event.Path)
	}
}
