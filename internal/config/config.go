package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the StaySense server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Model     ModelConfig
	Storage   StorageConfig
	Wordcloud WordcloudConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// ModelConfig locates the pre-trained artifacts and sets the churn decision
// threshold. The threshold changed between model revisions (0.5 in older
// ones, 0.437 in the current one), so it is an explicit operator choice
// rather than a constant.
type ModelConfig struct {
	Dir            string
	ChurnThreshold float64
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	UseSSL        bool
}

type WordcloudConfig struct {
	MaxTextChars int
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("STAYSENSE_PORT", 8080),
			Env:  envString("STAYSENSE_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Model: ModelConfig{
			Dir:            envString("MODEL_DIR", "model"),
			ChurnThreshold: envFloat("CHURN_THRESHOLD", 0.437),
		},
		Storage: StorageConfig{
			Endpoint:      os.Getenv("STORAGE_ENDPOINT"),
			AccessKey:     os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey:     os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:        os.Getenv("STORAGE_BUCKET"),
			PublicBaseURL: os.Getenv("STORAGE_PUBLIC_BASE_URL"),
			UseSSL:        envBool("STORAGE_USE_SSL", true),
		},
		Wordcloud: WordcloudConfig{
			MaxTextChars: envInt("WORDCLOUD_MAX_TEXT_CHARS", 65536),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 120),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Model.Dir == "" {
		return fmt.Errorf("MODEL_DIR is required")
	}
	if c.Model.ChurnThreshold <= 0 || c.Model.ChurnThreshold >= 1 {
		return fmt.Errorf("CHURN_THRESHOLD must be between 0 and 1 exclusive, got %v", c.Model.ChurnThreshold)
	}

	if c.Storage.Endpoint == "" {
		return fmt.Errorf("STORAGE_ENDPOINT is required")
	}
	if c.Storage.AccessKey == "" {
		return fmt.Errorf("STORAGE_ACCESS_KEY is required")
	}
	if c.Storage.SecretKey == "" {
		return fmt.Errorf("STORAGE_SECRET_KEY is required")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("STORAGE_BUCKET is required")
	}

	if c.Wordcloud.MaxTextChars < 1024 {
		return fmt.Errorf("WORDCLOUD_MAX_TEXT_CHARS must be at least 1024, got %d", c.Wordcloud.MaxTextChars)
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimit.RequestsPerMinute)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
