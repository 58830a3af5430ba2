// Package config provides configuration loading and management for OntoRAG.
//
// The config is an explicit value passed to the pipeline; nothing reads
// ambient state below the command boundary.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/ontorag/llm"
	"github.com/c360studio/ontorag/vocabulary/onto"
)

// Config represents the complete OntoRAG configuration.
type Config struct {
	Ontology OntologyConfig `yaml:"ontology"`
	Store    StoreConfig    `yaml:"store"`
	Ingest   IngestConfig   `yaml:"ingest"`
	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	NATS     NATSConfig     `yaml:"nats"`
}

// OntologyConfig configures the ontology namespace and catalog.
type OntologyConfig struct {
	// Namespace is the IRI prefix minted elements live under.
	Namespace string `yaml:"namespace"`
	// CatalogDir is the baseline catalog directory.
	CatalogDir string `yaml:"catalog_dir"`
}

// StoreConfig configures the DTO store layout.
type StoreConfig struct {
	// OutDir is the root of the DTO store (documents/ and chunks/ live
	// under it).
	OutDir string `yaml:"out_dir"`
}

// IngestConfig configures document chunking.
type IngestConfig struct {
	// ChunkSize is the chunk window in characters.
	ChunkSize int `yaml:"chunk_size"`
	// Overlap is how many characters consecutive chunks share.
	Overlap int `yaml:"overlap"`
}

// LLMConfig configures the OpenRouter adapter. The API key always comes
// from the environment, never from a file.
type LLMConfig struct {
	// Model is the OpenRouter model identifier.
	Model string `yaml:"model"`
	// BaseURL is the chat-completions endpoint base.
	BaseURL string `yaml:"base_url"`
	// MinInterval is the minimum delay between successive calls.
	MinInterval time.Duration `yaml:"min_interval"`
	// Timeout bounds each completion request.
	Timeout time.Duration `yaml:"timeout"`
	// PromptTemplate optionally overrides the embedded prompt template.
	PromptTemplate string `yaml:"prompt_template"`
}

// PipelineConfig configures extraction execution.
type PipelineConfig struct {
	// Workers bounds the extraction worker pool. 1 is sequential.
	Workers int `yaml:"workers"`
}

// NATSConfig configures graph publication.
type NATSConfig struct {
	// URL is the NATS server URL (empty = default local server).
	URL string `yaml:"url"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Ontology: OntologyConfig{
			Namespace:  onto.DefaultNamespace,
			CatalogDir: "catalog",
		},
		Store: StoreConfig{
			OutDir: "out",
		},
		Ingest: IngestConfig{
			ChunkSize: 3000,
			Overlap:   200,
		},
		LLM: LLMConfig{
			Model:       llm.DefaultModel,
			BaseURL:     llm.DefaultBaseURL,
			MinInterval: llm.DefaultMinInterval,
			Timeout:     llm.DefaultTimeout,
		},
		Pipeline: PipelineConfig{
			Workers: 1,
		},
		NATS: NATSConfig{
			URL: "",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Ontology.Namespace == "" {
		return fmt.Errorf("ontology.namespace is required")
	}
	if c.Store.OutDir == "" {
		return fmt.Errorf("store.out_dir is required")
	}
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("ingest.chunk_size must be positive")
	}
	if c.Ingest.Overlap < 0 || c.Ingest.Overlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.overlap must be in [0, chunk_size)")
	}
	if c.LLM.MinInterval < 0 {
		return fmt.Errorf("llm.min_interval must not be negative")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be at least 1")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file, applied over the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LLMClientConfig builds the OpenRouter client config: environment
// variables win over the file, defaults fill the rest.
func (c *Config) LLMClientConfig() llm.Config {
	cfg := llm.ConfigFromEnv()
	if os.Getenv("OPENROUTER_MODEL") == "" && c.LLM.Model != "" {
		cfg.Model = c.LLM.Model
	}
	if os.Getenv("OPENROUTER_BASE_URL") == "" && c.LLM.BaseURL != "" {
		cfg.BaseURL = c.LLM.BaseURL
	}
	if c.LLM.MinInterval > 0 {
		cfg.MinInterval = c.LLM.MinInterval
	}
	if c.LLM.Timeout > 0 {
		cfg.Timeout = c.LLM.Timeout
	}
	return cfg
}
