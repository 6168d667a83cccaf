package wiki

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds connection settings and the engine's tunables. Values
// load from the environment, with an optional YAML file underneath for
// anything not set there.
type Config struct {
	// BaseURL is the wiki API endpoint (e.g., https://wiki.example.com/w/api.php)
	BaseURL string

	// Username for bot password authentication (optional, for editing)
	Username string

	// Password for bot password authentication (optional, for editing)
	Password string

	// Timeout for one API request including all of its retries
	Timeout time.Duration

	// UserAgent identifies the client to the wiki
	UserAgent string

	// MaxRetries for transport-level failures; lag and rate-limit waits
	// are not counted against it
	MaxRetries int

	// MaxLag is the cooperative backpressure threshold in seconds.
	// Negative disables the maxlag parameter entirely.
	MaxLag int

	// ThrottleInterval is the minimum spacing between write operations
	ThrottleInterval time.Duration

	// QueryLimit caps accumulated records per list query when the
	// caller does not pass its own limit. Zero or negative means
	// unlimited.
	QueryLimit int

	// UploadChunkExponent sets the upload chunk size to 1<<exp bytes
	UploadChunkExponent int
}

// fileConfig is the YAML layout accepted via MEDIAWIKI_CONFIG.
type fileConfig struct {
	URL                 string `yaml:"url"`
	Username            string `yaml:"username"`
	Password            string `yaml:"password"`
	UserAgent           string `yaml:"user_agent"`
	Timeout             string `yaml:"timeout"`
	MaxRetries          *int   `yaml:"max_retries"`
	MaxLag              *int   `yaml:"maxlag"`
	Throttle            string `yaml:"throttle"`
	QueryLimit          *int   `yaml:"query_limit"`
	UploadChunkExponent *int   `yaml:"upload_chunk_exponent"`
}

// LoadConfig loads configuration from environment variables, falling
// back to the YAML file named by MEDIAWIKI_CONFIG for unset values.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Timeout:             180 * time.Second,
		MaxRetries:          DefaultMaxRetries,
		MaxLag:              DefaultMaxLag,
		ThrottleInterval:    DefaultThrottleInterval,
		UploadChunkExponent: DefaultUploadChunkExponent,
	}

	if path := os.Getenv("MEDIAWIKI_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("MEDIAWIKI_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("MEDIAWIKI_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("MEDIAWIKI_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("MEDIAWIKI_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if t := os.Getenv("MEDIAWIKI_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}
	if r := os.Getenv("MEDIAWIKI_MAX_RETRIES"); r != "" {
		if n, err := strconv.Atoi(r); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if l := os.Getenv("MEDIAWIKI_MAXLAG"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			cfg.MaxLag = n
		}
	}
	if t := os.Getenv("MEDIAWIKI_THROTTLE"); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d >= 0 {
			cfg.ThrottleInterval = d
		}
	}
	if q := os.Getenv("MEDIAWIKI_QUERY_LIMIT"); q != "" {
		if n, err := strconv.Atoi(q); err == nil {
			cfg.QueryLimit = n
		}
	}
	if e := os.Getenv("MEDIAWIKI_UPLOAD_CHUNK_EXP"); e != "" {
		if n, err := strconv.Atoi(e); err == nil && n > 0 {
			cfg.UploadChunkExponent = n
		}
	}

	if cfg.BaseURL == "" {
		return nil, errors.New("MEDIAWIKI_URL environment variable is required")
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "MediaWikiBot/1.0 (https://github.com/olgasafonova/mediawiki-bot)"
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.BaseURL = fc.URL
	c.Username = fc.Username
	c.Password = fc.Password
	c.UserAgent = fc.UserAgent
	if fc.Timeout != "" {
		if d, err := time.ParseDuration(fc.Timeout); err == nil {
			c.Timeout = d
		}
	}
	if fc.MaxRetries != nil && *fc.MaxRetries >= 0 {
		c.MaxRetries = *fc.MaxRetries
	}
	if fc.MaxLag != nil {
		c.MaxLag = *fc.MaxLag
	}
	if fc.Throttle != "" {
		if d, err := time.ParseDuration(fc.Throttle); err == nil && d >= 0 {
			c.ThrottleInterval = d
		}
	}
	if fc.QueryLimit != nil {
		c.QueryLimit = *fc.QueryLimit
	}
	if fc.UploadChunkExponent != nil && *fc.UploadChunkExponent > 0 {
		c.UploadChunkExponent = *fc.UploadChunkExponent
	}
	return nil
}

// HasCredentials returns true if authentication credentials are configured
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}
