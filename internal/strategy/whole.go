package strategy

import "github.com/klyr/tidylist/internal/cache"

type WholeFile struct {
	cache     *cache.Cache
	processor Processor
}

func NewWholeFile(c *cache.Cache, p Processor) *WholeFile {
	return &WholeFile{cache: c, processor: p}
}

func (w *WholeFile) Name() string {
	return NameWhole
}

func (w *WholeFile) Apply(key string, lines []string, force bool) Result {
	if !force && w.cache.IsValid(key, cache.HashLines(lines)) {
		return Result{Mode: ModeSkip}
	}

	output := w.processor.Process(lines)
	return Result{
		Mode:    ModeFull,
		Output:  output,
		Entry:   cache.Entry{Reference: cache.HashLines(output)},
		Changed: !equalLines(lines, output),
	}
}
