package fixer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klyr/tidylist/internal/cache"
	"github.com/klyr/tidylist/internal/fileutil"
	"github.com/klyr/tidylist/internal/lint"
	"github.com/klyr/tidylist/internal/logging"
	"github.com/klyr/tidylist/internal/observability"
	"github.com/klyr/tidylist/internal/pipeline"
	"github.com/klyr/tidylist/internal/stats"
	"github.com/klyr/tidylist/internal/strategy"
)

type Options struct {
	Cache     *cache.Cache
	Strategy  string
	BlockSize int
	Threshold int
	Lint      bool

	Logger  *logging.RunLogger
	Metrics *observability.Metrics
	Out     io.Writer
}

type Fixer struct {
	opts     Options
	memo     *pipeline.Memo
	strategy strategy.Strategy
}

func New(opts Options) (*Fixer, error) {
	if opts.Cache == nil {
		return nil, fmt.Errorf("fixer: cache is required")
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	memo, err := pipeline.NewMemo(0)
	if err != nil {
		return nil, err
	}
	s, err := strategy.New(opts.Strategy, opts.Cache, pipeline.New(memo), opts.BlockSize, opts.Threshold)
	if err != nil {
		memo.Close()
		return nil, err
	}

	return &Fixer{opts: opts, memo: memo, strategy: s}, nil
}

func (f *Fixer) Close() {
	f.memo.Close()
}

// Run fixes every path in order. Failures of single files are counted and
// logged; only cache setup and the final save abort the run.
func (f *Fixer) Run(ctx context.Context, paths []string, force bool) (stats.Stats, error) {
	var st stats.Stats

	f.opts.Cache.Repository().SetScope(cache.ScopeFixer)
	if err := f.opts.Cache.PrepareForRun(paths, force); err != nil {
		return st, err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			if saveErr := f.opts.Cache.Save(); saveErr != nil {
				return st, saveErr
			}
			return st, err
		}

		event := f.fixFile(path, force)
		st.Record(event.Status)
		f.record(event)
	}

	if err := f.opts.Cache.Save(); err != nil {
		return st, err
	}
	return st, nil
}

func (f *Fixer) fixFile(path string, force bool) logging.Event {
	start := time.Now()
	event := logging.Event{
		Timestamp: start.UTC(),
		Scope:     cache.ScopeFixer,
		Path:      path,
		Strategy:  f.strategy.Name(),
	}
	finish := func(status string, err error) logging.Event {
		event.Status = status
		event.DurationMS = time.Since(start).Milliseconds()
		if err != nil {
			event.Error = err.Error()
		}
		return event
	}

	info, err := os.Stat(path)
	if err != nil {
		return finish(logging.StatusError, fmt.Errorf("stat: %w", err))
	}
	if info.IsDir() {
		return finish(logging.StatusError, fmt.Errorf("%s is a directory", path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return finish(logging.StatusError, fmt.Errorf("read: %w", err))
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return finish(logging.StatusSkipped, nil)
	}

	lines := fileutil.SplitLines(string(data))
	event.RulesIn = countRules(lines)

	res := f.strategy.Apply(path, lines, force)
	event.Mode = string(res.Mode)
	event.Blocks = res.Blocks
	event.BlocksChanged = res.BlocksChanged
	if res.Skipped() {
		event.RulesOut = event.RulesIn
		return finish(logging.StatusSkipped, nil)
	}

	rendered := strings.Join(res.Output, "\n") + "\n"
	if rendered != string(data) {
		if err := fileutil.WriteAtomic(path, []byte(rendered), info.Mode().Perm()); err != nil {
			return finish(logging.StatusError, fmt.Errorf("write: %w", err))
		}
	}
	f.opts.Cache.Set(path, res.Entry)
	event.RulesOut = countRules(res.Output)

	if f.opts.Lint {
		event.LintFindings = f.lint(path, res.Output)
	}
	return finish(logging.StatusProcessed, nil)
}

func (f *Fixer) lint(path string, output []string) int {
	findings := lint.Check(output)
	for _, finding := range findings {
		f.opts.Metrics.ObserveLint(finding.Kind)
		_, _ = fmt.Fprintf(f.opts.Out, "lint %s: %s: %s (%s)\n", finding.Kind, path, finding.Rule, finding.Detail)
	}
	return len(findings)
}

func (f *Fixer) record(event logging.Event) {
	f.opts.Metrics.Observe(event)
	if err := f.opts.Logger.Write(event); err != nil {
		_, _ = fmt.Fprintf(f.opts.Out, "run log: %v\n", err)
	}

	switch event.Status {
	case logging.StatusError:
		_, _ = fmt.Fprintf(f.opts.Out, "error %s: %s\n", event.Path, event.Error)
	default:
		_, _ = fmt.Fprintf(f.opts.Out, "%s %s\n", event.Status, event.Path)
	}
}

func countRules(lines []string) int {
	n := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
