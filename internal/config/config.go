package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Default MIME allow-list: PDF, DOC and DOCX.
var defaultAllowedTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type Config struct {
	Port     string `env:"PORT" envDefault:"8090"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Auth. Empty disables it.
	APIKey string `env:"API_KEY"`

	// Upload validation
	MaxUploadBytes int64    `env:"MAX_UPLOAD_BYTES" envDefault:"20971520"` // 20MB
	AllowedTypes   []string `env:"ALLOWED_TYPES" envSeparator:","`

	// Chunking defaults
	DefaultChunkSize    int `env:"DEFAULT_CHUNK_SIZE" envDefault:"1000"`
	DefaultChunkOverlap int `env:"DEFAULT_CHUNK_OVERLAP" envDefault:"200"`

	// Conversion worker pool
	WorkerCount       int           `env:"WORKER_COUNT" envDefault:"4"`
	MaxQueueSize      int           `env:"MAX_QUEUE_SIZE" envDefault:"100"`
	ConversionTimeout time.Duration `env:"CONVERSION_TIMEOUT" envDefault:"60s"`

	// Job state
	JobTTL time.Duration `env:"JOB_TTL" envDefault:"1h"`

	// Converters
	PDFFallbackPdftotext bool   `env:"PDF_FALLBACK_PDFTOTEXT" envDefault:"true"`
	AntiwordPath         string `env:"ANTIWORD_PATH" envDefault:"antiword"`

	// Optional chunk store
	ChunkstoreURL    string `env:"CHUNKSTORE_URL"`
	ChunkstoreAPIKey string `env:"CHUNKSTORE_API_KEY"`

	// Conversion latency stats window
	StatsWindow time.Duration `env:"STATS_WINDOW" envDefault:"1h"`
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8090"
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 20 * 1024 * 1024
	}
	if len(c.AllowedTypes) == 0 {
		c.AllowedTypes = append([]string(nil), defaultAllowedTypes...)
	}
	for i, t := range c.AllowedTypes {
		c.AllowedTypes[i] = strings.ToLower(strings.TrimSpace(t))
	}
	if c.DefaultChunkSize <= 0 {
		c.DefaultChunkSize = 1000
	}
	if c.DefaultChunkOverlap <= 0 {
		c.DefaultChunkOverlap = 200
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 4
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 100
	}
	if c.ConversionTimeout <= 0 {
		c.ConversionTimeout = 60 * time.Second
	}
	if c.JobTTL <= 0 {
		c.JobTTL = time.Hour
	}
	if c.StatsWindow <= 0 {
		c.StatsWindow = time.Hour
	}
}

func (c Config) Validate() error {
	if c.DefaultChunkOverlap >= c.DefaultChunkSize {
		return fmt.Errorf("DEFAULT_CHUNK_OVERLAP (%d) must be smaller than DEFAULT_CHUNK_SIZE (%d)",
			c.DefaultChunkOverlap, c.DefaultChunkSize)
	}
	if c.ChunkstoreURL != "" && c.ChunkstoreAPIKey == "" {
		return errors.New("CHUNKSTORE_API_KEY is required when CHUNKSTORE_URL is set")
	}
	return nil
}

// ChunkstoreEnabled reports whether results should be published.
func (c Config) ChunkstoreEnabled() bool {
	return c.ChunkstoreURL != ""
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
