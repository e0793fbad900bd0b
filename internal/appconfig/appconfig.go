package appconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Config holds all configuration details
type Config struct {
	Host      string          `yaml:"host"`
	BasePath  string          `yaml:"basePath"`
	DocsPath  string          `yaml:"docsPath"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	OAuth     OAuthConfig     `yaml:"oauth"`
	Cache     CacheConfig     `yaml:"cache"`
	Pulsar    PulsarConfig    `yaml:"pulsar"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
}

// DatabaseConfig defines the database connection details
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Source string `yaml:"source"`
}

// JWTConfig defines how application tokens are signed and delivered
type JWTConfig struct {
	Secret       string `yaml:"secret"`
	TTL          string `yaml:"ttl"`
	CookieName   string `yaml:"cookieName"`
	SecureCookie bool   `yaml:"secureCookie"`
}

// OAuthConfig defines the Google OAuth2 client
type OAuthConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	RedirectURL  string `yaml:"redirectURL"`
	SuccessPath  string `yaml:"successPath"`
	FailureURL   string `yaml:"failureURL"`
}

// CacheConfig selects and sizes the group cache
type CacheConfig struct {
	Backend string      `yaml:"backend"`
	Size    int         `yaml:"size"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
	TTL    string `yaml:"ttl"`
}

// PulsarConfig defines the messaging system connection details
type PulsarConfig struct {
	URL   string `yaml:"url"`
	Topic string `yaml:"topic"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// TokenTTL returns the lifetime of issued tokens.
func (c JWTConfig) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return 12 * time.Hour
	}
	return d
}

// EntryTTL returns the redis entry lifetime, zero meaning no expiry.
func (c RedisConfig) EntryTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// LoadConfig loads and parses the configuration from a given file path
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		err := errors.New("config file path is required")
		log.Error().Err(err).Msg("config file not provided")
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Msg("error reading config file")
		return nil, err
	}

	return ParseConfig(raw, loadEnvVars())
}

// ParseConfig renders a config template with the given variables and unmarshals it.
func ParseConfig(raw []byte, vars map[string]string) (*Config, error) {
	tmpl, err := template.New("config").Option("missingkey=zero").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("error parsing config file template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return nil, fmt.Errorf("error executing config file template: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(buf.Bytes(), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.DocsPath == "" {
		c.DocsPath = "/api/docs"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.JWT.CookieName == "" {
		c.JWT.CookieName = "newsletter_token"
	}
	if c.OAuth.SuccessPath == "" {
		c.OAuth.SuccessPath = c.BasePath + "/user/authorizedUserDetails"
	}
	if c.OAuth.FailureURL == "" {
		c.OAuth.FailureURL = "/oauth2Failure"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = 1024
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "groupCache:"
	}
	if c.Pulsar.Topic == "" {
		c.Pulsar.Topic = "newsletter-group-events"
	}
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
