package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
)

// Vector store backends.
const (
	BackendSQLite = "sqlite"
	BackendQdrant = "qdrant"
)

// Embedder kinds.
const (
	EmbedderHTTP = "http"
	EmbedderHash = "hash"
)

// Config holds all configuration for the application.
type Config struct {
	JournalDir string
	IndexDir   string

	VectorBackend string
	QdrantURL     string

	Embedder            string
	EmbeddingBaseURL    string
	EmbeddingAPIKey     string
	EmbeddingModelName  string
	EmbeddingDimensions int
	EmbeddingCache      bool
	EmbedBatchSize      int
	EmbedConcurrency    int

	ChunkMaxSize        int
	ChunkMinSize        int
	SnippetContextChars int

	APIPort   string
	LogFormat string
	LogLevel  slog.Level
}

// Load reads configuration from environment variables and returns a validated Config.
// If a .env file exists in the current directory or a parent directory, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		JournalDir:         getEnv("JOURNAL_DIR", "journal"),
		IndexDir:           getEnv("INDEX_DIR", ".tech/data/index"),
		VectorBackend:      strings.ToLower(getEnv("VECTOR_BACKEND", BackendSQLite)),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		Embedder:           strings.ToLower(getEnv("EMBEDDER", EmbedderHTTP)),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "bge-base-en-v1.5"),
		APIPort:            getEnv("API_PORT", "9010"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	var err error
	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"EMBEDDING_DIMENSIONS", 768, &cfg.EmbeddingDimensions},
		{"EMBED_BATCH_SIZE", 100, &cfg.EmbedBatchSize},
		{"EMBED_CONCURRENCY", 1, &cfg.EmbedConcurrency},
		{"CHUNK_MAX_SIZE", 2000, &cfg.ChunkMaxSize},
		{"CHUNK_MIN_SIZE", 100, &cfg.ChunkMinSize},
		{"SNIPPET_CONTEXT_CHARS", 500, &cfg.SnippetContextChars},
	}
	for _, v := range ints {
		if *v.dest, err = getEnvInt(v.key, v.def); err != nil {
			return nil, err
		}
	}

	if cfg.EmbeddingCache, err = getEnvBool("EMBEDDING_CACHE", true); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = ParseLogLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and enumerations. Call it again after
// applying command-line overrides.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.JournalDir, validation.Required),
		validation.Field(&c.IndexDir, validation.Required),
		validation.Field(&c.VectorBackend, validation.Required, validation.In(BackendSQLite, BackendQdrant)),
		validation.Field(&c.QdrantURL, validation.When(c.VectorBackend == BackendQdrant, validation.Required, is.URL)),
		validation.Field(&c.Embedder, validation.Required, validation.In(EmbedderHTTP, EmbedderHash)),
		validation.Field(&c.EmbeddingBaseURL, validation.When(c.Embedder == EmbedderHTTP, validation.Required, is.URL)),
		validation.Field(&c.EmbeddingModelName, validation.When(c.Embedder == EmbedderHTTP, validation.Required)),
		validation.Field(&c.EmbeddingDimensions, validation.Required, validation.Min(1)),
		validation.Field(&c.EmbedBatchSize, validation.Required, validation.Min(1)),
		validation.Field(&c.EmbedConcurrency, validation.Required, validation.Min(1)),
		validation.Field(&c.ChunkMaxSize, validation.Required, validation.Min(1)),
		validation.Field(&c.ChunkMinSize, validation.Min(0), validation.Max(c.ChunkMaxSize)),
		validation.Field(&c.SnippetContextChars, validation.Min(0)),
		validation.Field(&c.APIPort, validation.Required, is.Port),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
	)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// EmbeddingCachePath is the bbolt file holding cached embeddings.
func (c *Config) EmbeddingCachePath() string {
	return filepath.Join(c.IndexDir, "embeddings.cache")
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %w", err)
	}
	return level, nil
}

// loadDotEnv loads .env from the current directory, then from the nearest
// parent directory that has one.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return // Reached filesystem root
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
