package pipeline

import (
	"fmt"

	"github.com/dgraph-io/ristretto"
)

const defaultMemoEntries = 1 << 16

// Memo caches normalized rule text by input line for the lifetime of a run.
type Memo struct {
	cache *ristretto.Cache
}

func NewMemo(maxEntries int64) (*Memo, error) {
	if maxEntries <= 0 {
		maxEntries = defaultMemoEntries
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create memo: %w", err)
	}
	return &Memo{cache: c}, nil
}

func (m *Memo) Get(line string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.cache.Get(line)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (m *Memo) Set(line, normalized string) {
	if m == nil {
		return
	}
	m.cache.Set(line, normalized, 1)
}

func (m *Memo) Close() {
	if m == nil {
		return
	}
	m.cache.Close()
}
