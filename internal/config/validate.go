package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
)

type ValidationError struct {
	Problems []string
}

func (v *ValidationError) Add(format string, args ...any) {
	v.Problems = append(v.Problems, fmt.Sprintf(format, args...))
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%d validation error(s)", len(v.Problems))
}

func (c *Config) Validate() error {
	v := &ValidationError{}

	if c.ConfigVersion != 1 {
		v.Add("configVersion must be 1")
	}

	switch c.Fixer.Strategy {
	case "", StrategyBlock, StrategyWhole:
	default:
		v.Add("fixer.strategy must be block|whole")
	}
	if c.Fixer.BlockSize < 0 {
		v.Add("fixer.blockSize must be >= 0")
	}
	if c.Fixer.Threshold < 0 {
		v.Add("fixer.threshold must be >= 0")
	}
	for i, p := range c.Fixer.Paths {
		if strings.TrimSpace(p) == "" {
			v.Add("fixer.paths[%d] is empty", i)
		}
	}

	c.validateBuilder(v)

	if len(v.Problems) > 0 {
		sort.Strings(v.Problems)
		return v
	}
	return nil
}

// ValidateBuilder reports builder problems only; used before a build run.
func (c *Config) ValidateBuilder() error {
	v := &ValidationError{}
	if len(c.Builder.FilterList) == 0 {
		v.Add("builder.filterList is required")
	}
	c.validateBuilder(v)
	if len(v.Problems) > 0 {
		sort.Strings(v.Problems)
		return v
	}
	return nil
}

func (c *Config) validateBuilder(v *ValidationError) {
	if c.Builder.OutputDir != "" && filepath.IsAbs(c.Builder.OutputDir) {
		v.Add("builder.outputDir must be a relative path, %s given", c.Builder.OutputDir)
	}

	filenames := map[string]struct{}{}
	for i, list := range c.Builder.FilterList {
		if strings.TrimSpace(list.Filename) == "" {
			v.Add("builder.filterList[%d].filename is required", i)
		} else if _, exists := filenames[list.Filename]; exists {
			v.Add("builder.filterList[%d].filename %q is duplicated", i, list.Filename)
		} else {
			filenames[list.Filename] = struct{}{}
		}

		if len(list.Source) == 0 {
			v.Add("builder.filterList[%d].source is required", i)
		}
		for j, src := range list.Source {
			if IsRemote(src) {
				if err := validateURL(src); err != nil {
					v.Add("builder.filterList[%d].source[%d] invalid: %v", i, j, err)
				}
			} else if strings.TrimSpace(src) == "" {
				v.Add("builder.filterList[%d].source[%d] is empty", i, j)
			}
		}
	}
}

// IsRemote reports whether a builder source is fetched over http(s).
func IsRemote(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Host == "" {
		return fmt.Errorf("must include a host")
	}
	return nil
}
