package config

const DefaultFileName = "tidylist.yml"

type Config struct {
	ConfigVersion int           `yaml:"configVersion"`
	CacheDir      string        `yaml:"cacheDir"`
	Fixer         FixerConfig   `yaml:"fixer"`
	Builder       BuilderConfig `yaml:"builder"`
	Logging       LoggingConfig `yaml:"logging"`
	Metrics       MetricsConfig `yaml:"metrics"`

	baseDir string `yaml:"-"`
}

type FixerConfig struct {
	Paths     []string `yaml:"paths"`
	Excludes  []string `yaml:"excludes"`
	Strategy  string   `yaml:"strategy"`
	BlockSize int      `yaml:"blockSize"`
	Threshold int      `yaml:"threshold"`
	Lint      bool     `yaml:"lint"`
}

type BuilderConfig struct {
	OutputDir  string       `yaml:"outputDir"`
	FilterList []FilterList `yaml:"filterList"`
}

type FilterList struct {
	Filename         string    `yaml:"filename"`
	Header           string    `yaml:"header"`
	Source           []string  `yaml:"source"`
	RemoveDuplicates bool      `yaml:"removeDuplicates"`
	Metadata         *Metadata `yaml:"metadata"`
}

type Metadata struct {
	Title        string `yaml:"title"`
	Header       string `yaml:"header"`
	Version      bool   `yaml:"version"`
	DateModified *bool  `yaml:"dateModified"`
	Custom       string `yaml:"custom"`
}

// ShowDateModified defaults to true once a metadata block is present.
func (m *Metadata) ShowDateModified() bool {
	if m == nil {
		return false
	}
	if m.DateModified == nil {
		return true
	}
	return *m.DateModified
}

type LoggingConfig struct {
	RunLog string `yaml:"runLog"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

const (
	StrategyBlock = "block"
	StrategyWhole = "whole"
)

// Default is used when no config file exists.
func Default(baseDir string) *Config {
	return &Config{
		ConfigVersion: 1,
		Fixer:         FixerConfig{Strategy: StrategyBlock},
		baseDir:       baseDir,
	}
}

func (c *Config) BaseDir() string {
	return c.baseDir
}

func (c *Config) ResolvePath(path string) string {
	return c.resolvePath(path)
}

// CachePath is the configured cache location, resolved against the config dir.
func (c *Config) CachePath() string {
	if c.CacheDir == "" {
		return c.resolvePath(".")
	}
	return c.resolvePath(c.CacheDir)
}

func (c *Config) OutputDir() string {
	if c.Builder.OutputDir == "" {
		return c.resolvePath(".")
	}
	return c.resolvePath(c.Builder.OutputDir)
}
