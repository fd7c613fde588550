package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	// Config holds configuration settings for the setup service
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// Store
		Store StoreConfig

		// Bootstrap
		AutoCreateAdmin    bool
		AutoAdminUsername  string
		AutoAdminPassword  string
		TemporaryDirectory string

		// Archive
		ArchiveBucketURL string
		ArchivePrefix    string

		// Sessions
		SessionTTL      time.Duration
		ShutdownTimeout time.Duration
	}

	// StoreConfig holds the Redis connection settings
	StoreConfig struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}
)

const (
	DefaultShutdownTimeout = 10 * time.Second
	DefaultSessionTTL      = 12 * time.Hour

	DefaultAPIPort = 8000
	DefaultAPIHost = "0.0.0.0"
	MaxTCPPort     = 65535
	DefaultRedisDB = 0
	MaxRedisDB     = 15

	DefaultRedisEndpoint     = "localhost:6379"
	DefaultRedisPrefix       = "edms"
	DefaultAutoAdminUsername = "admin"
	DefaultArchivePrefix     = "deleted/"

	MaxSessionTTL      = 30 * 24 * time.Hour
	MaxShutdownTimeout = 5 * time.Minute

	autoAdminPasswordLength = 10
)

var (
	ErrInvalidAPIPort           = errors.New("invalid API port")
	ErrInvalidRedisAddr         = errors.New("redis address is required")
	ErrInvalidRedisDB           = errors.New("invalid redis database")
	ErrInvalidAutoAdminUsername = errors.New(
		"auto admin username is required",
	)
	ErrInvalidAutoAdminPassword = errors.New(
		"auto admin password is required",
	)
	ErrInvalidSessionTTL = errors.New("session TTL must be positive")
	ErrInvalidBool       = errors.New("invalid boolean")
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// server, store, and bootstrap settings. The auto admin password is random
// unless overridden
func NewDefaultConfig() *Config {
	return &Config{
		APIPort: DefaultAPIPort,
		APIHost: DefaultAPIHost,
		Store: StoreConfig{
			Addr:   DefaultRedisEndpoint,
			DB:     DefaultRedisDB,
			Prefix: DefaultRedisPrefix,
		},
		AutoCreateAdmin:   true,
		AutoAdminUsername: DefaultAutoAdminUsername,
		AutoAdminPassword: RandomPassword(),
		ArchivePrefix:     DefaultArchivePrefix,
		SessionTTL:        DefaultSessionTTL,
		ShutdownTimeout:   DefaultShutdownTimeout,
		LogLevel:          "info",
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed
func (c *Config) LoadFromEnv() error {
	LoadStoreConfigFromEnv(&c.Store, "REDIS")

	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if username := os.Getenv("AUTO_ADMIN_USERNAME"); username != "" {
		c.AutoAdminUsername = username
	}
	if password := os.Getenv("AUTO_ADMIN_PASSWORD"); password != "" {
		c.AutoAdminPassword = password
	}
	if tmp := os.Getenv("TEMPORARY_DIRECTORY"); tmp != "" {
		c.TemporaryDirectory = tmp
	}
	if bucket := os.Getenv("ARCHIVE_BUCKET_URL"); bucket != "" {
		c.ArchiveBucketURL = bucket
	}
	if prefix := os.Getenv("ARCHIVE_PREFIX"); prefix != "" {
		c.ArchivePrefix = prefix
	}

	if err := loadEnvBool("AUTO_CREATE_ADMIN", &c.AutoCreateAdmin); err != nil {
		return err
	}
	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"SESSION_TTL", &c.SessionTTL, MaxSessionTTL,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout, MaxShutdownTimeout,
	); err != nil {
		return err
	}

	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if c.Store.Addr == "" {
		return ErrInvalidRedisAddr
	}

	if c.Store.DB < 0 || c.Store.DB > MaxRedisDB {
		return fmt.Errorf("%w: %d", ErrInvalidRedisDB, c.Store.DB)
	}

	if c.AutoCreateAdmin {
		if strings.TrimSpace(c.AutoAdminUsername) == "" {
			return ErrInvalidAutoAdminUsername
		}
		if c.AutoAdminPassword == "" {
			return ErrInvalidAutoAdminPassword
		}
	}

	if c.SessionTTL <= 0 {
		return ErrInvalidSessionTTL
	}

	return nil
}

// LoadStoreConfigFromEnv loads Redis store configuration from environment
// variables with the given prefix (e.g., "REDIS")
func LoadStoreConfigFromEnv(s *StoreConfig, prefix string) {
	if addr := os.Getenv(prefix + "_ADDR"); addr != "" {
		s.Addr = addr
	}
	if password := os.Getenv(prefix + "_PASSWORD"); password != "" {
		s.Password = password
	}
	if dbStr := os.Getenv(prefix + "_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err == nil {
			s.DB = db
		}
	}
	if envPrefix := os.Getenv(prefix + "_PREFIX"); envPrefix != "" {
		s.Prefix = envPrefix
	}
}

// RandomPassword generates a short random password for the auto admin
func RandomPassword() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:autoAdminPasswordLength]
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]. Returns an error if
// the value cannot be parsed or falls outside the valid range
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

func loadEnvDuration(key string, dst *time.Duration, max time.Duration) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	if d <= 0 || d > max {
		return fmt.Errorf("invalid %s: %s out of range (0, %s]", key, d, max)
	}
	*dst = d
	return nil
}

func loadEnvBool(key string, dst *bool) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("%w %s: %q", ErrInvalidBool, key, s)
	}
	*dst = b
	return nil
}
