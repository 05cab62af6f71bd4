// Package config loads runtime configuration from the environment and
// validates it before anything connects to a backend.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Provider selects which LLM backend answers questions.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

// Store selects which vector store holds the index.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds everything the command line tool needs to wire up a pipeline.
type Config struct {
	Provider string // openai, claude, or gemini

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	AnthropicKey  string
	GeminiKey     string

	EmbeddingModel     string
	EmbeddingDimension int

	Store       string // memory or postgres
	PostgresDSN string

	FanOut        int
	MaxIterations int
	ChunkSize     int
	ChunkOverlap  int

	RedisAddr string // enables the answer cache when set
	MongoURI  string // enables query history when set

	OTLPEndpoint string // exports traces to a collector when set
}

// FromEnv reads configuration from DOCQA_* and provider key variables,
// applying defaults for anything unset.
func FromEnv() *Config {
	return &Config{
		Provider: strings.ToLower(envOr("DOCQA_PROVIDER", ProviderOpenAI)),

		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_API_BASE_URL"),
		OpenAIModel:   envOr("DOCQA_MODEL", "gpt-4o-mini"),
		AnthropicKey:  os.Getenv("ANTHROPIC_API_KEY"),
		GeminiKey:     os.Getenv("GEMINI_API_KEY"),

		EmbeddingModel:     envOr("DOCQA_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimension: envInt("DOCQA_EMBEDDING_DIMENSION", 1536),

		Store:       strings.ToLower(envOr("DOCQA_STORE", StoreMemory)),
		PostgresDSN: os.Getenv("DOCQA_POSTGRES_DSN"),

		FanOut:        envInt("DOCQA_TOP_K", 5),
		MaxIterations: envInt("DOCQA_MAX_ITERATIONS", 3),
		ChunkSize:     envInt("DOCQA_CHUNK_SIZE", 500),
		ChunkOverlap:  envInt("DOCQA_CHUNK_OVERLAP", 50),

		RedisAddr: os.Getenv("DOCQA_REDIS_ADDR"),
		MongoURI:  os.Getenv("DOCQA_MONGO_URI"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

// Validate reports configuration problems before any backend is dialed.
func (c *Config) Validate() error {
	v := NewValidator().
		ValidateOneOf("provider", c.Provider, ProviderOpenAI, ProviderClaude, ProviderGemini).
		ValidateOneOf("store", c.Store, StoreMemory, StorePostgres).
		RequirePositive("fan_out", c.FanOut).
		RequirePositive("max_iterations", c.MaxIterations).
		RequirePositive("chunk_size", c.ChunkSize).
		ValidateRange("chunk_overlap", c.ChunkOverlap, 0, c.ChunkSize).
		RequirePositive("embedding_dimension", c.EmbeddingDimension)

	// embeddings always go through OpenAI, so the key is required regardless
	// of which provider generates answers
	v.RequireNonEmpty("OPENAI_API_KEY", c.OpenAIKey)

	switch c.Provider {
	case ProviderClaude:
		v.RequireNonEmpty("ANTHROPIC_API_KEY", c.AnthropicKey)
	case ProviderGemini:
		v.RequireNonEmpty("GEMINI_API_KEY", c.GeminiKey)
	}

	if c.Store == StorePostgres {
		v.RequireNonEmpty("DOCQA_POSTGRES_DSN", c.PostgresDSN)
	}

	return v.Error()
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
