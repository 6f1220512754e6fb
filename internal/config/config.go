// Package config loads patchctl configuration from an optional YAML file
// plus environment variables (via .env when present). Flags override the
// file; the file overrides defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full patchctl configuration.
type Config struct {
	BaseDir  string `yaml:"base_dir"`
	Language string `yaml:"language"`

	// ForceClean permits the destructive reset+clean fallback when
	// stashing a dirty tree fails. Off by default: it discards
	// uncommitted work.
	ForceClean bool `yaml:"force_clean"`

	Git     GitConfig     `yaml:"git"`
	Analyze AnalyzeConfig `yaml:"analyze"`
	Sandbox SandboxConfig `yaml:"sandbox"`

	// Tokens come from the environment, never the YAML file.
	GitHubToken  string `yaml:"-"`
	GitLabToken  string `yaml:"-"`
	OpenAIAPIKey string `yaml:"-"`
}

// GitConfig bounds git invocations.
type GitConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// AnalyzeConfig selects and bounds the analysis backend.
type AnalyzeConfig struct {
	Backend        string `yaml:"backend"` // claude or openai
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	OpenAIModel    string `yaml:"openai_model"`
	OpenAIBaseURL  string `yaml:"openai_base_url"`
}

// SandboxConfig configures containerized analysis.
type SandboxConfig struct {
	Image   string `yaml:"image"`
	AuthDir string `yaml:"auth_dir"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "patchctl", "config.yaml")
}

// Load reads configuration from path. A missing file is not an error; the
// defaults stand. Tokens are read from the environment after loading .env
// from the working directory if one exists.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// defaults apply
		default:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	cfg.GitLabToken = os.Getenv("GITLAB_TOKEN")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BaseDir == "" {
		c.BaseDir = "~/repos"
	}
	if c.Language == "" {
		c.Language = "Rust"
	}
	if c.Git.TimeoutSeconds == 0 {
		c.Git.TimeoutSeconds = 600
	}
	if c.Analyze.Backend == "" {
		c.Analyze.Backend = "claude"
	}
	if c.Analyze.TimeoutSeconds == 0 {
		c.Analyze.TimeoutSeconds = 300
	}
	if c.Sandbox.Image == "" {
		c.Sandbox.Image = "patchctl-sandbox:latest"
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	switch c.Analyze.Backend {
	case "claude", "openai":
	default:
		return fmt.Errorf("analyze.backend must be claude or openai, got %q", c.Analyze.Backend)
	}
	if c.Git.TimeoutSeconds < 0 {
		return fmt.Errorf("git.timeout_seconds must not be negative, got %d", c.Git.TimeoutSeconds)
	}
	if c.Analyze.TimeoutSeconds < 0 {
		return fmt.Errorf("analyze.timeout_seconds must not be negative, got %d", c.Analyze.TimeoutSeconds)
	}
	return nil
}
