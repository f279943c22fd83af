package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var listExtensions = map[string]bool{
	".txt":  true,
	".adfl": true,
}

// FixerPaths expands the fixer targets into the list of files to process.
// Non-empty override replaces the configured paths and is resolved against the
// working directory. Directories are walked for filter list files; with no
// paths at all the config dir is walked.
func (c *Config) FixerPaths(override []string) ([]string, error) {
	paths := c.Fixer.Paths
	resolve := c.resolvePath
	if len(override) > 0 {
		paths = override
		resolve = func(p string) string { return p }
	}
	if len(paths) == 0 {
		paths = []string{c.resolvePath(".")}
	}

	excludes := make([]string, 0, len(c.Fixer.Excludes))
	for _, ex := range c.Fixer.Excludes {
		if ex = strings.Trim(filepath.ToSlash(filepath.Clean(ex)), "/"); ex != "" && ex != "." {
			excludes = append(excludes, ex)
		}
	}

	var out []string
	seen := map[string]struct{}{}
	add := func(p string) {
		if real, err := filepath.EvalSymlinks(p); err == nil {
			p = real
		}
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, p := range paths {
		abs := resolve(p)
		if !filepath.IsAbs(abs) {
			var err error
			if abs, err = filepath.Abs(abs); err != nil {
				return nil, err
			}
		}

		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			add(abs)
			continue
		}

		found, err := walkLists(abs, excludes)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return out, nil
}

func walkLists(root string, excludes []string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if excluded(filepath.ToSlash(rel), excludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !listExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		found = append(found, path)
		return nil
	})
	return found, err
}

func excluded(rel string, excludes []string) bool {
	for _, ex := range excludes {
		if rel == ex || strings.HasPrefix(rel, ex+"/") || strings.Contains(rel, "/"+ex+"/") || strings.HasSuffix(rel, "/"+ex) {
			return true
		}
	}
	return false
}
