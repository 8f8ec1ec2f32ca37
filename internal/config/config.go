package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/rag-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// External service configurations
	EmbeddingCfg   EmbeddingConnectorConfig   `envPrefix:"EMBEDDING_"`
	VectorStoreCfg VectorStoreConnectorConfig `envPrefix:"VECTORSTORE_"`
	LLMCfg         LLMConnectorConfig         `envPrefix:"LLM_"`

	// Agent configuration
	AgentCfg AgentConfig `envPrefix:"AGENT_"`

	// Ingestion configuration
	IngestCfg IngestConfig `envPrefix:"INGEST_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Agent system prompt (loaded from file, with built-in default)
	SystemPrompt string

	// Environment (set from flag, not from env var)
	Environment string
}

type EmbeddingConnectorConfig struct {
	HTTPClientConfig
	Model string               `env:"MODEL" envDefault:"text-embedding-3-small"`
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type VectorStoreConnectorConfig struct {
	HTTPClientConfig
	Collection string               `env:"COLLECTION" envDefault:"knowledge-base"`
	Retry      pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type LLMConnectorConfig struct {
	APIKey      string        `env:"API_KEY"`
	Model       string        `env:"MODEL" envDefault:"claude-sonnet-4-20250514"`
	MaxTokens   int           `env:"MAX_TOKENS" envDefault:"1024"`
	Temperature float64       `env:"TEMPERATURE" envDefault:"0"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

type AgentConfig struct {
	MaxSteps   int    `env:"MAX_STEPS" envDefault:"5"`
	TopK       int    `env:"TOP_K" envDefault:"2"`
	PromptFile string `env:"PROMPT_FILE"`
}

type IngestConfig struct {
	DocsDir      string `env:"DOCS_DIR" envDefault:"./docs"`
	ChunkSize    int    `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int    `env:"CHUNK_OVERLAP" envDefault:"100"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Load agent system prompt from file, falling back to the default
	if err := loadSystemPrompt(cfg); err != nil {
		return nil, fmt.Errorf("load system prompt: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errs []string

	if cfg.AgentCfg.MaxSteps < 1 || cfg.AgentCfg.MaxSteps > 20 {
		errs = append(errs, fmt.Sprintf("AGENT_MAX_STEPS must be between 1 and 20, got %d", cfg.AgentCfg.MaxSteps))
	}

	if cfg.AgentCfg.TopK < 1 || cfg.AgentCfg.TopK > 10 {
		errs = append(errs, fmt.Sprintf("AGENT_TOP_K must be between 1 and 10, got %d", cfg.AgentCfg.TopK))
	}

	if cfg.IngestCfg.ChunkSize < 1 {
		errs = append(errs, fmt.Sprintf("INGEST_CHUNK_SIZE must be positive, got %d", cfg.IngestCfg.ChunkSize))
	}

	if cfg.IngestCfg.ChunkOverlap < 0 || cfg.IngestCfg.ChunkOverlap >= cfg.IngestCfg.ChunkSize {
		errs = append(errs, fmt.Sprintf("INGEST_CHUNK_OVERLAP must be between 0 and INGEST_CHUNK_SIZE(%d), got %d",
			cfg.IngestCfg.ChunkSize, cfg.IngestCfg.ChunkOverlap))
	}

	// Real connectors need endpoints and credentials; mocks do not.
	if !cfg.EnableMocks {
		if cfg.EmbeddingCfg.Url == "" {
			errs = append(errs, "EMBEDDING_SERVICE_URL is required when mocks are disabled")
		}
		if cfg.VectorStoreCfg.Url == "" {
			errs = append(errs, "VECTORSTORE_SERVICE_URL is required when mocks are disabled")
		}
		if cfg.LLMCfg.APIKey == "" {
			errs = append(errs, "LLM_API_KEY is required when mocks are disabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// defaultSystemPrompt fixes the agent policy when no prompt file is provided.
const defaultSystemPrompt = `You are an internal documentation assistant.

For any question about the project's architecture, authentication, or deployment,
use the search_knowledge_base tool to look up the internal documentation before
answering. Ground your answer in the retrieved context and cite the source file
of every fact you take from it. If the documentation has no relevant information,
say so explicitly before answering from general knowledge.

Always answer in the language the user asked in.`

func loadSystemPrompt(cfg *Config) error {
	path := cfg.AgentCfg.PromptFile
	if path == "" {
		cfg.SystemPrompt = defaultSystemPrompt
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read prompt file %s: %w", path, err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return fmt.Errorf("prompt file is empty: %s", path)
	}

	cfg.SystemPrompt = prompt

	fmt.Printf("Loaded agent system prompt from %s (%d bytes)\n", path, len(prompt))
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
