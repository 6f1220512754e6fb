package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseDir != "~/repos" {
		t.Errorf("BaseDir = %q, want ~/repos", cfg.BaseDir)
	}
	if cfg.Language != "Rust" {
		t.Errorf("Language = %q, want Rust", cfg.Language)
	}
	if cfg.Analyze.Backend != "claude" {
		t.Errorf("Backend = %q, want claude", cfg.Analyze.Backend)
	}
	if cfg.Analyze.TimeoutSeconds != 300 {
		t.Errorf("Analyze.TimeoutSeconds = %d, want 300", cfg.Analyze.TimeoutSeconds)
	}
	if cfg.Git.TimeoutSeconds != 600 {
		t.Errorf("Git.TimeoutSeconds = %d, want 600", cfg.Git.TimeoutSeconds)
	}
	if cfg.ForceClean {
		t.Error("ForceClean should default to false")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
base_dir: /srv/repos
language: Go
force_clean: true
git:
  timeout_seconds: 120
analyze:
  backend: openai
  openai_model: gpt-4o-mini
sandbox:
  image: my-sandbox:1
  auth_dir: /home/me/.claude
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseDir != "/srv/repos" {
		t.Errorf("BaseDir = %q", cfg.BaseDir)
	}
	if cfg.Language != "Go" {
		t.Errorf("Language = %q", cfg.Language)
	}
	if !cfg.ForceClean {
		t.Error("ForceClean = false, want true")
	}
	if cfg.Git.TimeoutSeconds != 120 {
		t.Errorf("Git.TimeoutSeconds = %d", cfg.Git.TimeoutSeconds)
	}
	if cfg.Analyze.Backend != "openai" {
		t.Errorf("Backend = %q", cfg.Analyze.Backend)
	}
	if cfg.Analyze.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("OpenAIModel = %q", cfg.Analyze.OpenAIModel)
	}
	if cfg.Sandbox.Image != "my-sandbox:1" {
		t.Errorf("Sandbox.Image = %q", cfg.Sandbox.Image)
	}
	// Unset fields still get defaults.
	if cfg.Analyze.TimeoutSeconds != 300 {
		t.Errorf("Analyze.TimeoutSeconds = %d, want default 300", cfg.Analyze.TimeoutSeconds)
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("analyze:\n  backend: gemini\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "backend") {
		t.Errorf("Load() error = %v, want backend validation error", err)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("base_dir: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestLoad_TokensFromEnvironment(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "gh-token")
	t.Setenv("GITLAB_TOKEN", "gl-token")
	t.Setenv("OPENAI_API_KEY", "oa-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GitHubToken != "gh-token" || cfg.GitLabToken != "gl-token" || cfg.OpenAIAPIKey != "oa-key" {
		t.Errorf("tokens = %q %q %q, want env values", cfg.GitHubToken, cfg.GitLabToken, cfg.OpenAIAPIKey)
	}
}
