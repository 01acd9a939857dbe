package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	PolicyStrict = "strict"
	PolicyBlend  = "blend"

	RunnerLocal    = "local"
	RunnerTemporal = "temporal"
)

type Config struct {
	LLMProviders   string `yaml:"llm_providers"`
	EmbedProviders string `yaml:"embed_providers"`
	EmbedDim       int    `yaml:"embed_dim"`

	ChunkSize        int     `yaml:"chunk_size"`
	ChunkOverlap     int     `yaml:"chunk_overlap"`
	EmbedBatchSize   int     `yaml:"embed_batch_size"`
	EmbedConcurrency int     `yaml:"embed_concurrency"`
	EmbedRPS         float64 `yaml:"embed_rps"`

	TopK              int    `yaml:"top_k"`
	MaxContextChars   int    `yaml:"max_context_chars"`
	AnswerPolicy      string `yaml:"answer_policy"`
	AnswerMaxTokens   int    `yaml:"answer_max_tokens"`
	SummaryInputChars int    `yaml:"summary_input_chars"`
	SummaryMaxTokens  int    `yaml:"summary_max_tokens"`

	SessionTTL      time.Duration `yaml:"session_ttl"`
	JanitorInterval time.Duration `yaml:"janitor_interval"`
	MaxUploadBytes  int           `yaml:"max_upload_bytes"`

	Runner            string `yaml:"runner"`
	TemporalAddress   string `yaml:"temporal_address"`
	TemporalTaskQueue string `yaml:"temporal_task_queue"`
	PostgresURL       string `yaml:"postgres_url"`
}

func Default() Config {
	return Config{
		LLMProviders:      "mock",
		EmbedProviders:    "mock",
		EmbedDim:          768,
		ChunkSize:         1000,
		ChunkOverlap:      200,
		EmbedBatchSize:    32,
		EmbedConcurrency:  1,
		TopK:              4,
		MaxContextChars:   6000,
		AnswerPolicy:      PolicyBlend,
		AnswerMaxTokens:   1024,
		SummaryInputChars: 12000,
		SummaryMaxTokens:  1024,
		SessionTTL:        2 * time.Hour,
		JanitorInterval:   5 * time.Minute,
		MaxUploadBytes:    16 << 20,
		Runner:            RunnerLocal,
		TemporalAddress:   "localhost:7233",
		TemporalTaskQueue: "paperlens",
	}
}

// Load returns the defaults overlaid with the YAML file named by
// PAPERLENS_CONFIG (if any) and then with PAPERLENS_* environment variables.
func Load() (Config, error) {
	return LoadFile(os.Getenv("PAPERLENS_CONFIG"))
}

// LoadFile is Load with an explicit config file path; an empty path skips the
// file.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LLMProviders = getenv("PAPERLENS_LLM_PROVIDERS", c.LLMProviders)
	c.EmbedProviders = getenv("PAPERLENS_EMBED_PROVIDERS", c.EmbedProviders)
	c.EmbedDim = getenvInt("PAPERLENS_EMBED_DIM", c.EmbedDim)
	c.ChunkSize = getenvInt("PAPERLENS_CHUNK_SIZE", c.ChunkSize)
	c.ChunkOverlap = getenvInt("PAPERLENS_CHUNK_OVERLAP", c.ChunkOverlap)
	c.EmbedBatchSize = getenvInt("PAPERLENS_EMBED_BATCH_SIZE", c.EmbedBatchSize)
	c.EmbedConcurrency = getenvInt("PAPERLENS_EMBED_CONCURRENCY", c.EmbedConcurrency)
	c.EmbedRPS = getenvFloat("PAPERLENS_EMBED_RPS", c.EmbedRPS)
	c.TopK = getenvInt("PAPERLENS_TOP_K", c.TopK)
	c.MaxContextChars = getenvInt("PAPERLENS_MAX_CONTEXT_CHARS", c.MaxContextChars)
	c.AnswerPolicy = strings.ToLower(getenv("PAPERLENS_ANSWER_POLICY", c.AnswerPolicy))
	c.AnswerMaxTokens = getenvInt("PAPERLENS_ANSWER_MAX_TOKENS", c.AnswerMaxTokens)
	c.SummaryInputChars = getenvInt("PAPERLENS_SUMMARY_INPUT_CHARS", c.SummaryInputChars)
	c.SummaryMaxTokens = getenvInt("PAPERLENS_SUMMARY_MAX_TOKENS", c.SummaryMaxTokens)
	c.SessionTTL = getenvDuration("PAPERLENS_SESSION_TTL", c.SessionTTL)
	c.JanitorInterval = getenvDuration("PAPERLENS_JANITOR_INTERVAL", c.JanitorInterval)
	c.MaxUploadBytes = getenvInt("PAPERLENS_MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.Runner = strings.ToLower(getenv("PAPERLENS_RUNNER", c.Runner))
	c.TemporalAddress = getenv("PAPERLENS_TEMPORAL_ADDRESS", c.TemporalAddress)
	c.TemporalTaskQueue = getenv("PAPERLENS_TEMPORAL_TASK_QUEUE", c.TemporalTaskQueue)
	c.PostgresURL = getenv("PAPERLENS_POSTGRES_URL", c.PostgresURL)
}

func (c Config) Validate() error {
	switch {
	case c.ChunkSize <= 0:
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	case c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize:
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size), got %d", c.ChunkOverlap)
	case c.MaxContextChars < c.ChunkSize:
		return fmt.Errorf("max_context_chars (%d) must hold at least one chunk (%d)", c.MaxContextChars, c.ChunkSize)
	case c.TopK <= 0:
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	case c.EmbedBatchSize <= 0:
		return fmt.Errorf("embed_batch_size must be positive, got %d", c.EmbedBatchSize)
	case c.EmbedConcurrency <= 0:
		return fmt.Errorf("embed_concurrency must be positive, got %d", c.EmbedConcurrency)
	case c.EmbedRPS < 0:
		return fmt.Errorf("embed_rps must not be negative")
	case c.SummaryInputChars <= 0:
		return fmt.Errorf("summary_input_chars must be positive, got %d", c.SummaryInputChars)
	}
	if c.AnswerPolicy != PolicyStrict && c.AnswerPolicy != PolicyBlend {
		return fmt.Errorf("unknown answer_policy %q", c.AnswerPolicy)
	}
	if c.Runner != RunnerLocal && c.Runner != RunnerTemporal {
		return fmt.Errorf("unknown runner %q", c.Runner)
	}
	return nil
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(k string, fallback float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvDuration(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
