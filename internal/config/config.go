package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/codelines/internal/codeblock"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Rendering defaults
	AnnotationMode  string
	ShowLineNumbers bool
	Style           string

	// Path to a YAML redaction rules file, optional.
	RedactionRules string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("CODELINES_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		AnnotationMode:  envOr("ANNOTATION_MODE", string(codeblock.ModeStrip)),
		ShowLineNumbers: envBool("SHOW_LINE_NUMBERS", false),
		Style:           envOr("STYLE", "github"),

		RedactionRules: os.Getenv("REDACTION_RULES"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CODELINES_API_KEY is required")
	}
	if _, err := codeblock.ParseAnnotationMode(c.AnnotationMode); err != nil {
		return fmt.Errorf("ANNOTATION_MODE: %w", err)
	}
	if c.RedactionRules != "" {
		if _, err := os.Stat(c.RedactionRules); err != nil {
			return fmt.Errorf("REDACTION_RULES: %w", err)
		}
	}
	return nil
}

// Mode returns the parsed annotation mode, falling back to strip.
func (c Config) Mode() codeblock.AnnotationMode {
	m, err := codeblock.ParseAnnotationMode(c.AnnotationMode)
	if err != nil {
		return codeblock.ModeStrip
	}
	return m
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
