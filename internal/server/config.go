package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/internal/session"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address     string               `yaml:"address"`
	MaxBodySize string               `yaml:"maxBodySize"`
	Logging     config.LoggingConfig `yaml:"logging"`
	Session     SessionConfig        `yaml:"session"`
	bodySize    int64
	sessionTTL  time.Duration
}

// SessionConfig selects where form sessions are kept.
type SessionConfig struct {
	Store string      `yaml:"store"` // memory, redis
	TTL   string      `yaml:"ttl"`
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig locates the redis server backing the redis session store.
type RedisConfig struct {
	Address   string `yaml:"address"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	ttl, _ := time.ParseDuration(constants.DefaultSessionTTL)
	return &Config{
		Address:     constants.DefaultServerAddress,
		MaxBodySize: fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes),
		Logging:     config.LoggingConfig{},
		Session: SessionConfig{
			Store: constants.SessionStoreMemory,
			TTL:   constants.DefaultSessionTTL,
		},
		bodySize:   constants.DefaultMaxBodySizeBytes,
		sessionTTL: ttl,
	}
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BodySizeBytes returns the configured request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySize
}

// SessionTTL returns how long idle sessions are kept.
func (c *Config) SessionTTL() time.Duration {
	return c.sessionTTL
}

// SessionOptions converts the session section into store options.
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		Backend:   c.Session.Store,
		TTL:       c.sessionTTL,
		RedisAddr: c.Session.Redis.Address,
		RedisDB:   c.Session.Redis.DB,
		KeyPrefix: c.Session.Redis.KeyPrefix,
	}
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}

	switch c.Session.Store {
	case "":
		c.Session.Store = constants.SessionStoreMemory
	case constants.SessionStoreMemory, constants.SessionStoreRedis:
	default:
		return fmt.Errorf("unsupported session store %q", c.Session.Store)
	}
	if c.Session.Store == constants.SessionStoreRedis && c.Session.Redis.Address == "" {
		return fmt.Errorf("session store redis requires session.redis.address")
	}

	ttlStr := strings.TrimSpace(c.Session.TTL)
	if ttlStr == "" {
		ttlStr = constants.DefaultSessionTTL
	}
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return fmt.Errorf("invalid session ttl %q: %w", c.Session.TTL, err)
	}
	c.Session.TTL = ttlStr
	c.sessionTTL = ttl

	sizeStr := strings.TrimSpace(c.MaxBodySize)
	if sizeStr == "" {
		c.bodySize = constants.DefaultMaxBodySizeBytes
		c.MaxBodySize = fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxBodySizeBytes
	}
	c.bodySize = bytes
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "64K", "1M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
