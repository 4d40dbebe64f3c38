package coursedesc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cartabinaria/course-description-merged/internal/fileutil"
	"github.com/cartabinaria/course-description-merged/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidTimeout  = errors.New("invalid timeout")
)

// DefaultRef is the only ref deployments run for, mirroring the
// refs/heads/main gate of the hosted pipeline.
const DefaultRef = "refs/heads/main"

// Config holds all configuration for the pipeline.
type Config struct {
	// Degrees is the path of the JSON degree list.
	Degrees string `yaml:"degrees"`
	// WorkDir is the scratch directory holding artifacts and stage output.
	WorkDir string `yaml:"workDir"`

	Scrape  ScrapeConfig  `yaml:"scrape"`
	Convert ConvertConfig `yaml:"convert"`
	Publish PublishConfig `yaml:"publish"`
}

// ScrapeConfig tunes the scrape stage.
type ScrapeConfig struct {
	// BaseURL overrides the unibo base URL (mirrors, tests).
	BaseURL string `yaml:"baseURL"`
	// CacheDir enables the on-disk page cache. Empty disables it.
	CacheDir string `yaml:"cacheDir"`
}

// ConvertConfig tunes the convert stage.
type ConvertConfig struct {
	// Workers is the browser pool size (0 = auto from GOMAXPROCS).
	Workers int `yaml:"workers"`
	// Timeout bounds a single PDF rendering, e.g. "30s", "2m".
	Timeout string `yaml:"timeout"`
	// HTMLOnly skips PDF generation.
	HTMLOnly bool `yaml:"htmlOnly"`
	// Pages lists extra Markdown pages copied into the site as HTML.
	Pages []string `yaml:"pages"`
}

// PublishConfig tunes the publish stage.
type PublishConfig struct {
	// Ref is the ref this run was dispatched for.
	Ref string `yaml:"ref"`
	// DeployRef is the only ref allowed to deploy.
	DeployRef string `yaml:"deployRef"`
	// TargetDir is the deployment directory the site is synced into.
	TargetDir string `yaml:"targetDir"`
	// BaseURL is the public site URL reported after a deploy.
	BaseURL string `yaml:"baseURL"`
	// Group names the concurrency group for cancel-in-progress runs.
	Group string `yaml:"group"`
}

// DefaultConfig returns the configuration used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		Degrees: filepath.Join("config", "degrees.json"),
		WorkDir: ".coursedesc",
		Scrape: ScrapeConfig{
			CacheDir: filepath.Join(".coursedesc", "cache"),
		},
		Convert: ConvertConfig{
			Timeout: "30s",
		},
		Publish: PublishConfig{
			Ref:       DefaultRef,
			DeployRef: DefaultRef,
			TargetDir: "public",
			BaseURL:   "https://cartabinaria.github.io/course-description-merged/",
			Group:     "pages",
		},
	}
}

// Validate checks derived values that cannot be verified at parse time.
func (c *Config) Validate() error {
	if _, err := c.ConvertTimeout(); err != nil {
		return err
	}
	return nil
}

// ConvertTimeout parses the convert stage timeout, falling back to the
// default when unset.
func (c *Config) ConvertTimeout() (time.Duration, error) {
	if c.Convert.Timeout == "" {
		return defaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Convert.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, c.Convert.Timeout)
	}
	return d, nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/coursedesc/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "coursedesc", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %v", ErrConfigNotFound, triedPaths)
}
