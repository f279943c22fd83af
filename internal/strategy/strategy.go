package strategy

import (
	"fmt"

	"github.com/klyr/tidylist/internal/cache"
)

const (
	NameBlock = "block"
	NameWhole = "whole"

	DefaultBlockSize = 300
	DefaultThreshold = 2
)

type Mode string

const (
	ModeSkip    Mode = "skip"
	ModeFull    Mode = "full"
	ModePartial Mode = "partial"
)

// Processor is the line pipeline a strategy runs on changed content.
type Processor interface {
	Process(lines []string) []string
}

type Strategy interface {
	Name() string
	Apply(key string, lines []string, force bool) Result
}

type Result struct {
	Mode    Mode
	Output  []string
	Entry   cache.Entry
	Changed bool

	Blocks        int
	BlocksChanged int
}

func (r Result) Skipped() bool {
	return r.Mode == ModeSkip
}

// New returns the strategy registered under name.
func New(name string, c *cache.Cache, p Processor, size, threshold int) (Strategy, error) {
	switch name {
	case NameBlock, "":
		return NewBlock(c, p, size, threshold), nil
	case NameWhole:
		return NewWholeFile(c, p), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// DecideMode picks how much of a block split file to reprocess.
func DecideMode(force, cached bool, changed, threshold int, lastChanged bool) Mode {
	switch {
	case force, !cached:
		return ModeFull
	case changed == 0:
		return ModeSkip
	case changed >= threshold, lastChanged:
		return ModeFull
	default:
		return ModePartial
	}
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
