package opensearch

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultTimeout is applied when Config.Timeout is zero.
const DefaultTimeout = 60 * time.Second

// DefaultDiscoverInterval is how often the discovery pool re-reads the cluster
// topology when Config.DiscoverInterval is not set.
const DefaultDiscoverInterval = 5 * time.Minute

// Config holds OpenSearch client connection parameters with environment variable mapping.
// A Config is treated as a value: the client factory copies it and never mutates it.
type Config struct {
	Addresses        []string      `env:"OPENSEARCH_ADDRESSES,required" envSeparator:","`
	Username         string        `env:"OPENSEARCH_USERNAME"`
	Password         string        `env:"OPENSEARCH_PASSWORD"`
	Timeout          time.Duration `env:"OPENSEARCH_TIMEOUT" envDefault:"60s"`
	CACertPath       string        `env:"OPENSEARCH_CA_CERT_PATH"`
	DiscoverInterval time.Duration `env:"OPENSEARCH_DISCOVER_INTERVAL" envDefault:"5m"`
}

// Validate checks that at least one address is set and every address is an
// absolute http or https URL.
func (c Config) Validate() error {
	if len(c.Addresses) == 0 {
		return ErrNoAddresses
	}
	for _, addr := range c.Addresses {
		u, err := url.Parse(addr)
		if err != nil {
			return errors.Join(ErrInvalidAddress, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
		}
	}
	return nil
}

// RequestTimeout returns the configured timeout or DefaultTimeout.
func (c Config) RequestTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c Config) discoverInterval() time.Duration {
	if c.DiscoverInterval > 0 {
		return c.DiscoverInterval
	}
	return DefaultDiscoverInterval
}

// LoadConfig reads the given .env files (or ./.env when none are given and it
// exists), then parses OPENSEARCH_* variables into a validated Config.
// Variables already present in the process environment win over file values.
func LoadConfig(files ...string) (Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Config{}, errors.Join(ErrParsingConfig, err)
		}
	} else {
		// The default .env file is optional.
		_ = godotenv.Load()
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
