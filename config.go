package javacomplete

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Completion defaults used when the config omits a value.
const (
	DefaultMaxItems = 100
)

// Config represents the .javacomplete.yaml configuration file.
type Config struct {
	// Completion tunes result sizes and prefix handling.
	Completion CompletionConfig `yaml:"completion"`

	// Model is the default type model for every file.
	Model string `yaml:"model,omitempty"`

	// Per-pattern model overrides (glob pattern -> model path)
	// e.g., "src/test/**": "models/test.yaml"
	Models map[string]string `yaml:"models,omitempty"`

	// MetricsAddr, when set, is the listen address for the /metrics endpoint.
	MetricsAddr string `yaml:"metricsAddr,omitempty"`

	// dir is the directory the config was loaded from; relative model paths
	// resolve against it.
	dir string
}

// CompletionConfig holds the read-only settings consumed by a completion query.
type CompletionConfig struct {
	// MatchAllLowerCase offers class names even for lower-case prefixes.
	MatchAllLowerCase bool `yaml:"matchAllLowerCase"`

	// TrimToMax caps the number of items in a result at MaxItems.
	TrimToMax bool `yaml:"trimToMax"`

	// MaxItems is the result ceiling when TrimToMax is set.
	MaxItems int `yaml:"maxItems"`
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".javacomplete.yaml", ".javacomplete.yml", "javacomplete.yaml", "javacomplete.yml"}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Completion: DefaultCompletionConfig(),
	}
}

// DefaultCompletionConfig returns the default completion settings.
func DefaultCompletionConfig() CompletionConfig {
	return CompletionConfig{
		MatchAllLowerCase: false,
		TrimToMax:         true,
		MaxItems:          DefaultMaxItems,
	}
}

// LoadConfig finds and loads the nearest .javacomplete.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", dir)
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path. Keys missing from the
// file keep their defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	abs, err := filepath.Abs(path)
	if err == nil {
		cfg.dir = filepath.Dir(abs)
	}

	return cfg, nil
}

// ParseConfig decodes config YAML on top of the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	err := yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if cfg.Completion.MaxItems <= 0 {
		cfg.Completion.MaxItems = DefaultMaxItems
	}

	for pattern := range cfg.Models {
		_, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Wrapf(err, "invalid model pattern %q", pattern)
		}
	}

	return cfg, nil
}

// Dir returns the directory the config was loaded from, or "" for defaults.
func (c *Config) Dir() string {
	return c.dir
}

// ModelFor returns the model path for a given file path.
// It checks file-specific patterns first, in lexical order, then falls back
// to the default. The returned path is resolved against the config directory.
func (c *Config) ModelFor(filePath string) string {
	rel := filePath
	if c.dir != "" {
		if r, err := filepath.Rel(c.dir, filePath); err == nil {
			rel = r
		}
	}

	rel = filepath.ToSlash(rel)

	patterns := make([]string, 0, len(c.Models))
	for pattern := range c.Models {
		patterns = append(patterns, pattern)
	}

	slices.Sort(patterns)

	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			continue
		}

		if g.Match(rel) {
			return c.resolve(c.Models[pattern])
		}
	}

	return c.resolve(c.Model)
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}

	return filepath.Join(c.dir, path)
}
