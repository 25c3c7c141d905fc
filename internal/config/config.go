// Package config provides configuration management for the docfind build tools.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/thebtf/docfind/internal/embed"
	"github.com/thebtf/docfind/internal/indexbuild"
)

const (
	// EnvConfigPath names an explicit settings file.
	EnvConfigPath = "DOCFIND_CONFIG"

	// DefaultLogLevel is used when nothing else is configured.
	DefaultLogLevel = "info"
)

// SearchPaths are the settings files looked up in the working directory,
// in order, when DOCFIND_CONFIG is unset.
var SearchPaths = []string{"docfind.yaml", "docfind.yml", "docfind.json"}

// Config holds the application configuration.
type Config struct {
	LogLevel string      `yaml:"log_level" json:"log_level"`
	Embed    EmbedConfig `yaml:"embed" json:"embed"`
	Index    IndexConfig `yaml:"index" json:"index"`
}

// EmbedConfig configures the artifact embedder.
type EmbedConfig struct {
	// Load statement tokens
	Keywords    []string `yaml:"keywords" json:"keywords"`
	Variable    string   `yaml:"variable" json:"variable"`
	ReadCall    string   `yaml:"read_call" json:"read_call"`
	Replacement string   `yaml:"replacement" json:"replacement"`

	// OnNoMatch is "warn" or "fail".
	OnNoMatch string `yaml:"on_no_match" json:"on_no_match"`
}

// IndexConfig configures the index build demo.
type IndexConfig struct {
	// External builder executable and its arguments
	Builder     string   `yaml:"builder" json:"builder"`
	BuilderArgs []string `yaml:"builder_args" json:"builder_args"`

	DefaultInput string            `yaml:"default_input" json:"default_input"`
	Profiles     map[string]string `yaml:"profiles" json:"profiles"`
	Output       string            `yaml:"output" json:"output"`
}

// Default returns a Config with default values.
func Default() *Config {
	pattern := embed.DefaultPattern()
	return &Config{
		LogLevel: DefaultLogLevel,
		Embed: EmbedConfig{
			Keywords:    pattern.Keywords,
			Variable:    pattern.Variable,
			ReadCall:    pattern.ReadCall,
			Replacement: pattern.Replacement,
			OnNoMatch:   string(embed.NoMatchWarn),
		},
		Index: IndexConfig{
			Builder:      indexbuild.DefaultBuilder,
			DefaultInput: indexbuild.DefaultInput,
			Profiles:     indexbuild.DefaultProfiles(),
			Output:       indexbuild.DefaultOutput,
		},
	}
}

// Load loads configuration from the settings file, merging with defaults,
// then applies environment overrides. A missing settings file is not an
// error. It returns the path that was loaded, or "" when none was.
//
// The settings file is validated on its own before the environment is
// applied, so an invalid file is an error even if the environment would
// override the bad value.
func Load() (*Config, string, error) {
	path, err := findSettings()
	if err != nil {
		return nil, "", err
	}

	cfg := Default()
	if path != "" {
		if cfg, err = LoadFile(path); err != nil {
			return nil, path, err
		}
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// LoadFile loads a specific settings file over the defaults. Environment
// overrides are not applied.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := embed.ParseNoMatchPolicy(c.Embed.OnNoMatch); err != nil {
		return fmt.Errorf("embed.on_no_match: %w", err)
	}
	if len(c.Embed.Keywords) == 0 {
		return errors.New("embed.keywords: at least one keyword is required")
	}
	if strings.TrimSpace(c.Index.Output) == "" {
		return errors.New("index.output: path is required")
	}
	return nil
}

func findSettings() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%s: %w", EnvConfigPath, err)
		}
		return p, nil
	}
	for _, p := range SearchPaths {
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) // #nosec G304 -- settings path is chosen by the operator
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse settings %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse settings %s: %w", path, err)
		}
	default:
		return fmt.Errorf("settings %s: unsupported format (want .yaml, .yml or .json)", path)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DOCFIND_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DOCFIND_ON_NO_MATCH"); v != "" {
		cfg.Embed.OnNoMatch = v
	}
	if v := os.Getenv("DOCFIND_EMBED_KEYWORDS"); v != "" {
		cfg.Embed.Keywords = splitTrim(v)
	}
	if v := os.Getenv("DOCFIND_BUILDER"); v != "" {
		cfg.Index.Builder = v
	}
	if v := os.Getenv("DOCFIND_BUILDER_ARGS"); v != "" {
		cfg.Index.BuilderArgs = strings.Fields(v)
	}
	if v := os.Getenv("DOCFIND_OUTPUT"); v != "" {
		cfg.Index.Output = v
	}
}

// splitTrim splits a comma-separated string and trims whitespace.
func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
