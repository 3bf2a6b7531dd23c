package model

import "time"

// Config holds the complete wikiprov configuration
type Config struct {
	Topic       string      `yaml:"topic" json:"topic"`             // Reference topic (required)
	Granularity Granularity `yaml:"granularity" json:"granularity"` // sentence or full

	HTTP        HTTPConfig        `yaml:"http" json:"http"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Chunking    ChunkingConfig    `yaml:"chunking" json:"chunking"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" json:"retrieval"`
	Judge       JudgeConfig       `yaml:"judge" json:"judge"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
}

// HTTPConfig controls the Wikipedia fetcher
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	RatePerSecond float64       `yaml:"rate_per_second" json:"rate_per_second"`
	RateBurst     int           `yaml:"rate_burst" json:"rate_burst"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
	NoProxy       string        `yaml:"no_proxy,omitempty" json:"no_proxy,omitempty"`
}

// CacheConfig controls article and index caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Dir       string        `yaml:"dir" json:"dir"` // Disk cache directory ("" = memory only)
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl"`
}

// ChunkingConfig controls how reference text is split into passages
type ChunkingConfig struct {
	MaxLength int `yaml:"max_length" json:"max_length"` // Max passage length in runes
	Overlap   int `yaml:"overlap" json:"overlap"`       // Overlap between consecutive passages
}

// RetrievalConfig controls evidence selection
type RetrievalConfig struct {
	K        int     `yaml:"k" json:"k"`                 // Passages retrieved per claim unit
	MinScore float64 `yaml:"min_score" json:"min_score"` // Drop evidence below this similarity (0 = keep all)
}

// JudgeConfig controls the support judgment
type JudgeConfig struct {
	Model string `yaml:"model" json:"model"` // Judge model name
	// StrictParse aborts validation on an unparseable judge response
	// instead of recording the unit as unsupported.
	StrictParse bool `yaml:"strict_parse" json:"strict_parse"`
}

// LLMConfig selects the providers behind embedding and judging
type LLMConfig struct {
	Provider       string `yaml:"provider" json:"provider"`             // openai, ollama
	EmbedProvider  string `yaml:"embed_provider" json:"embed_provider"` // defaults to Provider
	EmbeddingModel string `yaml:"embedding_model" json:"embedding_model"`
	APIKey         string `yaml:"-" json:"-"` // From env, never persisted
	EmbedAPIKey    string `yaml:"-" json:"-"` // For a separate embedding provider
	BaseURL        string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout        int    `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens      int    `yaml:"max_tokens" json:"max_tokens"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	JudgeWorkers int `yaml:"judge_workers" json:"judge_workers"` // Claim units evaluated in parallel
	BatchWorkers int `yaml:"batch_workers" json:"batch_workers"` // Candidate texts in batch mode
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Granularity: GranularitySentence,
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "wikiprov/0.1 (+https://github.com/wikiprov/wikiprov)",
			MaxBodyBytes:  4_000_000,
			RatePerSecond: 1,
			RateBurst:     3,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   24 * time.Hour,
		},
		Chunking: ChunkingConfig{
			MaxLength: 1200,
			Overlap:   120,
		},
		Retrieval: RetrievalConfig{
			K: 3,
		},
		Judge: JudgeConfig{
			Model: "gpt-4o-mini",
		},
		LLM: LLMConfig{
			Provider:       "openai",
			EmbeddingModel: "text-embedding-3-small",
			Timeout:        30,
			MaxTokens:      16,
		},
		Concurrency: ConcurrencyConfig{
			JudgeWorkers: 4,
			BatchWorkers: 4,
		},
	}
}
