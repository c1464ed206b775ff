package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ErrMissingCredentials is returned when the access key pair is not configured.
// The service refuses to start without it.
var ErrMissingCredentials = errors.New("AWS credentials not set: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are required")

// Config holds the process-wide settings of the URL proxy.
//
// Environment variables:
//
//	AWS_REGION               - Object store region (default: "us-east-1")
//	AWS_BUCKET               - Bucket holding the objects (not validated; errors surface at signing time)
//	AWS_ACCESS_KEY_ID        - Access key ID (required)
//	AWS_SECRET_ACCESS_KEY    - Secret access key (required)
//	PRESIGNED_URL_EXPIRATION - Signed URL lifetime in seconds (default: 14400)
//	AWS_S3_ENDPOINT          - Optional endpoint for S3-compatible services
//	AWS_S3_USE_PATH_STYLE    - Use path-style addressing with a custom endpoint (default: false)
type Config struct {
	Region            string `env:"AWS_REGION" env-default:"us-east-1"`
	Bucket            string `env:"AWS_BUCKET"`
	AccessKeyID       string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey   string `env:"AWS_SECRET_ACCESS_KEY"`
	PresignExpiration int    `env:"PRESIGNED_URL_EXPIRATION" env-default:"14400"`
	Endpoint          string `env:"AWS_S3_ENDPOINT"`
	UsePathStyle      bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
}

// Port is the fixed listen port of the service.
const Port = 8088

// Load reads the configuration from the process environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return ErrMissingCredentials
	}

	if c.PresignExpiration < 0 {
		return fmt.Errorf("PRESIGNED_URL_EXPIRATION must be non-negative, got %d", c.PresignExpiration)
	}

	return nil
}

// Expiration returns the signed URL lifetime
func (c *Config) Expiration() time.Duration {
	return time.Duration(c.PresignExpiration) * time.Second
}

// Addr returns the listen address, bound to all interfaces
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", Port)
}
