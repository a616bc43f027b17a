package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv(EnvCompletionDeployment, "gpt-test")
	t.Setenv(EnvEmbeddingDeployment, "embed-test")
	t.Setenv(EnvProviderEndpoint, "https://llm.example.com/v1")
	t.Setenv(EnvProviderAPIKey, "sk-test")
	t.Setenv(EnvDatabasePath, filepath.Join(t.TempDir(), "docs.db"))
	t.Setenv("PORT", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr %s", cfg.Server.Addr)
	}
	if cfg.Provider.Type != ProviderOpenAI {
		t.Fatalf("unexpected provider type %s", cfg.Provider.Type)
	}
	if cfg.Provider.RPS != 5 || cfg.Provider.Burst != 10 {
		t.Fatalf("unexpected rate limit defaults %v/%d", cfg.Provider.RPS, cfg.Provider.Burst)
	}
	if cfg.Server.StoreTimeoutSecs != 10 || cfg.Server.PipelineTimeoutSec != 600 {
		t.Fatalf("unexpected timeout defaults %d/%d", cfg.Server.StoreTimeoutSecs, cfg.Server.PipelineTimeoutSec)
	}
	if cfg.Storage.VectorDir != "./chromemdb" {
		t.Fatalf("unexpected vector dir %s", cfg.Storage.VectorDir)
	}
	if cfg.Provider.CompletionDeployment != "gpt-test" {
		t.Fatalf("completion deployment not read from env")
	}
}

func TestLoadMissingEnvListsEveryName(t *testing.T) {
	t.Setenv(EnvCompletionDeployment, "gpt-test")
	t.Setenv(EnvEmbeddingDeployment, "")
	t.Setenv(EnvProviderEndpoint, "")
	t.Setenv(EnvProviderAPIKey, "sk-test")
	t.Setenv(EnvDatabasePath, "")
	t.Setenv("PORT", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected an error for missing environment")
	}
	for _, name := range []string{EnvEmbeddingDeployment, EnvProviderEndpoint, EnvDatabasePath} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("error does not name %s: %v", name, err)
		}
	}
	if strings.Contains(err.Error(), EnvCompletionDeployment) {
		t.Fatalf("error names a variable that is set: %v", err)
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `server:
  addr: ":9000"
provider:
  rps: 2
  burst: 4
debug: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("yaml addr not applied: %s", cfg.Server.Addr)
	}
	if cfg.Provider.RPS != 2 || cfg.Provider.Burst != 4 {
		t.Fatalf("yaml rate limit not applied: %v/%d", cfg.Provider.RPS, cfg.Provider.Burst)
	}
	if !cfg.Debug {
		t.Fatal("yaml debug not applied")
	}
	if cfg.Server.ReadTimeoutSeconds != 30 {
		t.Fatalf("default not applied next to overrides: %d", cfg.Server.ReadTimeoutSeconds)
	}
}

func TestLoadOllamaNeedsNoAPIKey(t *testing.T) {
	t.Setenv(EnvCompletionDeployment, "llama3")
	t.Setenv(EnvEmbeddingDeployment, "nomic-embed-text")
	t.Setenv(EnvProviderEndpoint, "http://localhost:11434")
	t.Setenv(EnvProviderAPIKey, "")
	t.Setenv(EnvDatabasePath, filepath.Join(t.TempDir(), "docs.db"))
	t.Setenv("PORT", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("provider:\n  type: ollama\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestLoadPortOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "3000")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":3000" {
		t.Fatalf("PORT override not applied: %s", cfg.Server.Addr)
	}
}
