package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/klyr/tidylist/internal/fileutil"
)

const (
	ScopeFixer   = "fixer"
	ScopeBuilder = "builder"
)

// Entry is the stored reference for one tracked file. Whole file entries carry
// Reference; block entries carry FileHash and Blocks keyed by block index.
type Entry struct {
	Reference string            `json:"reference,omitempty"`
	FileHash  string            `json:"file_hash,omitempty"`
	Blocks    map[string]string `json:"blocks,omitempty"`
}

func (e Entry) IsZero() bool {
	return e.Reference == "" && e.FileHash == "" && len(e.Blocks) == 0
}

// Repository is a scoped key to Entry map persisted as one JSON document.
type Repository struct {
	mu    sync.Mutex
	path  string
	scope string
	data  map[string]map[string]Entry
}

func NewRepository(path, scope string) *Repository {
	return &Repository{
		path:  path,
		scope: scope,
		data:  make(map[string]map[string]Entry),
	}
}

func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Scope() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scope
}

func (r *Repository) SetScope(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scope = scope
}

func (r *Repository) Load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.mu.Lock()
			r.data = make(map[string]map[string]Entry)
			r.mu.Unlock()
			return nil
		}
		return fmt.Errorf("read cache %s: %w", r.path, err)
	}

	parsed := make(map[string]map[string]Entry)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("parse cache %s: %w", r.path, err)
		}
	}

	r.mu.Lock()
	r.data = parsed
	r.mu.Unlock()
	return nil
}

func (r *Repository) Save() error {
	r.mu.Lock()
	data, err := json.MarshalIndent(r.data, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return err
	}
	if err := fileutil.WriteAtomic(r.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write cache %s: %w", r.path, err)
	}
	return nil
}

func (r *Repository) Get(key string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.data[r.scope][key]
	return e, ok
}

func (r *Repository) Set(key string, e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	scoped := r.data[r.scope]
	if scoped == nil {
		scoped = make(map[string]Entry)
		r.data[r.scope] = scoped
	}
	scoped[key] = e
}

func (r *Repository) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data[r.scope], key)
}

// All returns a copy of the active scope.
func (r *Repository) All() map[string]Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Entry, len(r.data[r.scope]))
	for k, v := range r.data[r.scope] {
		out[k] = v
	}
	return out
}

func (r *Repository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, r.scope)
}
