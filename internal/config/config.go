package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Provider types the service can talk to.
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderOllama = "ollama"
)

// Required environment variables. The yaml file carries tunables only;
// credentials and storage paths always come from the environment.
const (
	EnvCompletionDeployment = "COMPLETION_DEPLOYMENT"
	EnvEmbeddingDeployment  = "EMBEDDING_DEPLOYMENT"
	EnvProviderEndpoint     = "PROVIDER_ENDPOINT"
	EnvProviderAPIKey       = "PROVIDER_API_KEY"
	EnvDatabasePath         = "DATABASE_PATH"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Provider  ProviderConfig  `yaml:"provider"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Scratch   ScratchConfig   `yaml:"scratch"`
	Storage   StorageConfig   `yaml:"storage"`
	Debug     bool            `yaml:"debug"`
}

type ServerConfig struct {
	Addr               string `yaml:"addr"`
	ReadTimeoutSeconds int    `yaml:"read_timeout_seconds"`
	ShutdownSeconds    int    `yaml:"shutdown_seconds"`
	StoreTimeoutSecs   int    `yaml:"store_timeout_seconds"`
	PipelineTimeoutSec int    `yaml:"pipeline_timeout_seconds"`
}

type ProviderConfig struct {
	Type           string  `yaml:"type"`
	APIVersion     string  `yaml:"api_version"`
	RPS            float64 `yaml:"rps"`
	Burst          int     `yaml:"burst"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`

	// from the environment
	Endpoint             string `yaml:"-"`
	APIKey               string `yaml:"-"`
	CompletionDeployment string `yaml:"-"`
	EmbeddingDeployment  string `yaml:"-"`
}

type EmbeddingConfig struct {
	CacheTTLMinutes   int `yaml:"cache_ttl_minutes"`
	CacheSweepMinutes int `yaml:"cache_sweep_minutes"`
}

type ScratchConfig struct {
	Dir           string `yaml:"dir"`
	MaxFetchBytes int64  `yaml:"max_fetch_bytes"`
	MaxAgeMinutes int    `yaml:"max_age_minutes"`
	SweepMinutes  int    `yaml:"sweep_minutes"`
}

type StorageConfig struct {
	VectorDir string `yaml:"vector_dir"`

	// from the environment
	DatabasePath string `yaml:"-"`
}

// Load reads the optional yaml file at path, overlays the environment and
// validates the required values. A missing file falls back to defaults; a
// missing required environment variable does not.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		log.Debug().Str("path", path).Msg("no config file, using defaults")
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	applyDefaults(cfg)

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}
	cfg.Provider.CompletionDeployment = os.Getenv(EnvCompletionDeployment)
	cfg.Provider.EmbeddingDeployment = os.Getenv(EnvEmbeddingDeployment)
	cfg.Provider.Endpoint = os.Getenv(EnvProviderEndpoint)
	cfg.Provider.APIKey = os.Getenv(EnvProviderAPIKey)
	cfg.Storage.DatabasePath = os.Getenv(EnvDatabasePath)
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}

	if missing := missingEnv(cfg); len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 30
	}
	if cfg.Server.ShutdownSeconds == 0 {
		cfg.Server.ShutdownSeconds = 10
	}
	if cfg.Server.StoreTimeoutSecs == 0 {
		cfg.Server.StoreTimeoutSecs = 10
	}
	// summarize fans out one provider call per chunk
	if cfg.Server.PipelineTimeoutSec == 0 {
		cfg.Server.PipelineTimeoutSec = 600
	}
	if cfg.Provider.Type == "" {
		cfg.Provider.Type = ProviderOpenAI
	}
	if cfg.Provider.APIVersion == "" {
		cfg.Provider.APIVersion = "2023-05-15"
	}
	if cfg.Provider.RPS == 0 {
		cfg.Provider.RPS = 5
	}
	if cfg.Provider.Burst == 0 {
		cfg.Provider.Burst = 10
	}
	if cfg.Provider.TimeoutSeconds == 0 {
		cfg.Provider.TimeoutSeconds = 120
	}
	if cfg.Embedding.CacheTTLMinutes == 0 {
		cfg.Embedding.CacheTTLMinutes = 60
	}
	if cfg.Embedding.CacheSweepMinutes == 0 {
		cfg.Embedding.CacheSweepMinutes = 10
	}
	if cfg.Scratch.Dir == "" {
		cfg.Scratch.Dir = filepath.Join(os.TempDir(), "docgpt")
	}
	if cfg.Scratch.MaxFetchBytes == 0 {
		cfg.Scratch.MaxFetchBytes = 32 << 20
	}
	if cfg.Scratch.MaxAgeMinutes == 0 {
		cfg.Scratch.MaxAgeMinutes = 60
	}
	if cfg.Scratch.SweepMinutes == 0 {
		cfg.Scratch.SweepMinutes = 15
	}
	if cfg.Storage.VectorDir == "" {
		cfg.Storage.VectorDir = "./chromemdb"
	}
}

func missingEnv(cfg *Config) []string {
	var missing []string
	if cfg.Provider.CompletionDeployment == "" {
		missing = append(missing, EnvCompletionDeployment)
	}
	if cfg.Provider.EmbeddingDeployment == "" {
		missing = append(missing, EnvEmbeddingDeployment)
	}
	if cfg.Provider.Endpoint == "" {
		missing = append(missing, EnvProviderEndpoint)
	}
	// ollama listens locally without credentials
	if cfg.Provider.APIKey == "" && cfg.Provider.Type != ProviderOllama {
		missing = append(missing, EnvProviderAPIKey)
	}
	if cfg.Storage.DatabasePath == "" {
		missing = append(missing, EnvDatabasePath)
	}
	return missing
}
