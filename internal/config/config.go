// Package config loads service settings from DOCCHAT_-prefixed environment
// variables, with .env support for local development.
package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// DatabaseURL backs both the document metadata store and the vector index.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	// VectorTable is the collection the vector index client reads and writes.
	VectorTable string `envconfig:"VECTOR_TABLE" default:"chunks"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	// OpenAIBaseURL overrides the OpenAI endpoint, mainly for tests.
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"docchat-uploads"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Bootstrap: create an initial API key for a user on startup
	InitUserID string `envconfig:"INIT_USER_ID"`
	InitAPIKey string `envconfig:"INIT_API_KEY"`

	// Per-client-IP request rate. Zero disables limiting.
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"20"`
}

// Load reads configuration from the environment. A .env file, when present,
// fills in unset variables first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCCHAT", &cfg); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}
