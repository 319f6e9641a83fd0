package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "chargesim/backend/libs/config"
	"chargesim/backend/libs/logging"
	"chargesim/backend/libs/password"
)

const (
	defaultPort     = "5000"
	defaultToken    = "UNAD-TEST-TOKEN"
	defaultBuffer   = 256
	defaultRedisTTL = 86400
)

// HTTPConfig controls the listener.
type HTTPConfig struct {
	Port        string   `yaml:"port" env:"CHARGESIM_HTTP_PORT"`
	CORSOrigins []string `yaml:"corsOrigins" env:"CHARGESIM_CORS_ORIGINS"`
}

// AuthConfig is the shared bearer credential.
type AuthConfig struct {
	Token       string   `yaml:"token" env:"CHARGESIM_AUTH_TOKEN"`
	TokenHash   string   `yaml:"tokenHash" env:"CHARGESIM_AUTH_TOKEN_HASH"`
	ExemptPaths []string `yaml:"exemptPaths" env:"CHARGESIM_AUTH_EXEMPT_PATHS"`
}

// CatalogConfig points at the station inventory; empty uses the built-in one.
type CatalogConfig struct {
	Path string `yaml:"path" env:"CHARGESIM_CATALOG_PATH"`
}

// SimulationConfig tunes the random sources.
type SimulationConfig struct {
	Seed uint64 `yaml:"seed" env:"CHARGESIM_SEED"`
}

// EventsConfig sizes the event bus.
type EventsConfig struct {
	BufferSize int `yaml:"bufferSize" env:"CHARGESIM_EVENTS_BUFFER"`
}

// RedisConfig enables the active-session mirror when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"CHARGESIM_REDIS_ADDR"`
	Password string `yaml:"password" env:"CHARGESIM_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"CHARGESIM_REDIS_DB"`
	TTL      int    `yaml:"ttlSeconds" env:"CHARGESIM_REDIS_TTL"`
}

// DatabaseConfig enables the postgres session journal when DSN is set.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"CHARGESIM_POSTGRES_DSN"`
}

// Config defines charging-sim configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Simulation SimulationConfig `yaml:"simulation"`
	Events     EventsConfig     `yaml:"events"`
	Redis      RedisConfig      `yaml:"redis"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        logging.Options  `yaml:"log"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Port: defaultPort},
		Auth: AuthConfig{
			Token:       defaultToken,
			ExemptPaths: []string{"/health", "/metrics"},
		},
		Events: EventsConfig{BufferSize: defaultBuffer},
		Redis:  RedisConfig{TTL: defaultRedisTTL},
	}
}

// Load reads configuration from CONFIG_FILE and the environment.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads configuration from path (falling back to CONFIG_FILE when
// empty) and the environment, then validates it.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	var err error
	if strings.TrimSpace(path) != "" {
		err = libconfig.LoadConfigFrom(path, cfg)
	} else {
		err = libconfig.LoadConfig(cfg)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.Token) == "" && strings.TrimSpace(c.Auth.TokenHash) == "" {
		return errors.New("config: auth token or token hash required")
	}
	if hash := strings.TrimSpace(c.Auth.TokenHash); hash != "" && !password.IsHash(hash) {
		return errors.New("config: auth token hash is not a bcrypt hash")
	}
	if c.Events.BufferSize < 0 {
		return fmt.Errorf("config: events buffer size must not be negative, got %d", c.Events.BufferSize)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis db must not be negative, got %d", c.Redis.DB)
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultPort
	}
	if strings.Contains(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// ActiveSessionTTL returns ttl as duration.
func (c *Config) ActiveSessionTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// RedisEnabled reports whether the active-session mirror is configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}

// DatabaseEnabled reports whether the session journal is configured.
func (c *Config) DatabaseEnabled() bool {
	return strings.TrimSpace(c.Database.DSN) != ""
}
