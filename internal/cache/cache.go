package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const DefaultFileName = ".tidylist_cache.json"

type Cache struct {
	repo *Repository
	// set once the force clear of this run happened
	cleared bool
}

func New(repo *Repository) *Cache {
	return &Cache{repo: repo}
}

// Open resolves path, then loads the cache file into the given scope.
func Open(path, scope string) (*Cache, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}
	repo := NewRepository(resolved, scope)
	if err := repo.Load(); err != nil {
		return nil, err
	}
	return New(repo), nil
}

func (c *Cache) Repository() *Repository {
	return c.repo
}

// PrepareForRun reloads the cache and evicts entries that are no longer
// tracked. With force the active scope is emptied instead, at most once.
func (c *Cache) PrepareForRun(validKeys []string, force bool) error {
	if err := c.repo.Load(); err != nil {
		return err
	}

	if force {
		if !c.cleared {
			c.repo.Clear()
			c.cleared = true
		}
		return nil
	}

	valid := make(map[string]struct{}, len(validKeys))
	for _, k := range validKeys {
		valid[k] = struct{}{}
	}

	removed := 0
	for key := range c.repo.All() {
		if _, ok := valid[key]; len(valid) > 0 && !ok {
			c.repo.Remove(key)
			removed++
			continue
		}
		if _, err := os.Stat(key); err != nil {
			c.repo.Remove(key)
			removed++
		}
	}

	if removed == 0 {
		return nil
	}
	return c.repo.Save()
}

func (c *Cache) Get(key string) (Entry, bool) {
	return c.repo.Get(key)
}

func (c *Cache) Set(key string, e Entry) {
	c.repo.Set(key, e)
}

// IsValid reports whether key has a stored whole file reference equal to ref.
func (c *Cache) IsValid(key, ref string) bool {
	e, ok := c.repo.Get(key)
	return ok && ref != "" && e.Reference == ref
}

func (c *Cache) Save() error {
	return c.repo.Save()
}

// ResolvePath maps a user supplied cache location to a cache file path,
// creating directories as needed.
func ResolvePath(path string) (string, error) {
	if path == "" {
		return DefaultFileName, nil
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(path, DefaultFileName), nil
	case err == nil:
		return path, nil
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("stat cache path %s: %w", path, err)
	}

	if hasExtension(path) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("create cache dir: %w", err)
		}
		return path, nil
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	return filepath.Join(path, DefaultFileName), nil
}

func hasExtension(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return ext != "" && ext != base && !strings.HasSuffix(base, ".")
}
