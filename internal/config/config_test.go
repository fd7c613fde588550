package config_test

import (
	"testing"

	testify "github.com/stretchr/testify/assert"

	"github.com/nadwiabd/insight-edms/internal/assert"
	"github.com/nadwiabd/insight-edms/internal/assert/helpers"
	"github.com/nadwiabd/insight-edms/internal/config"
)

func TestConfigValidation(t *testing.T) {
	as := assert.New(t)

	t.Run("valid_default_config", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		as.ConfigValid(cfg)
	})

	t.Run("valid_test_config", func(t *testing.T) {
		cfg := helpers.NewTestConfig()
		as.ConfigValid(cfg)
	})

	tests := []struct {
		name          string
		configMod     func(*config.Config)
		errorContains string
	}{
		{
			name: "invalid_api_port_zero",
			configMod: func(c *config.Config) {
				c.APIPort = 0
			},
			errorContains: "invalid API port",
		},
		{
			name: "invalid_api_port_too_high",
			configMod: func(c *config.Config) {
				c.APIPort = 70000
			},
			errorContains: "invalid API port",
		},
		{
			name: "missing_redis_addr",
			configMod: func(c *config.Config) {
				c.Store.Addr = ""
			},
			errorContains: "redis address is required",
		},
		{
			name: "redis_db_out_of_range",
			configMod: func(c *config.Config) {
				c.Store.DB = 16
			},
			errorContains: "invalid redis database",
		},
		{
			name: "blank_admin_username",
			configMod: func(c *config.Config) {
				c.AutoAdminUsername = "  "
			},
			errorContains: "auto admin username is required",
		},
		{
			name: "empty_admin_password",
			configMod: func(c *config.Config) {
				c.AutoAdminPassword = ""
			},
			errorContains: "auto admin password is required",
		},
		{
			name: "zero_session_ttl",
			configMod: func(c *config.Config) {
				c.SessionTTL = 0
			},
			errorContains: "session TTL must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := helpers.NewTestConfig()
			tt.configMod(cfg)
			as.ConfigInvalid(cfg, tt.errorContains)
		})
	}
}

func TestAdminCredentialsIgnoredWhenDisabled(t *testing.T) {
	cfg := helpers.NewTestConfig()
	cfg.AutoCreateAdmin = false
	cfg.AutoAdminUsername = ""
	cfg.AutoAdminPassword = ""
	testify.NoError(t, cfg.Validate())
}

func TestDefaultConfigValues(t *testing.T) {
	as := assert.New(t)

	cfg := config.NewDefaultConfig()

	as.Equal(config.DefaultAPIPort, cfg.APIPort)
	as.Equal("0.0.0.0", cfg.APIHost)
	as.Equal(config.DefaultRedisEndpoint, cfg.Store.Addr)
	as.Equal(config.DefaultRedisPrefix, cfg.Store.Prefix)
	as.True(cfg.AutoCreateAdmin)
	as.Equal("admin", cfg.AutoAdminUsername)
	as.Len(cfg.AutoAdminPassword, 10)
	as.Equal(config.DefaultSessionTTL, cfg.SessionTTL)
	as.Equal(config.DefaultShutdownTimeout, cfg.ShutdownTimeout)
	as.Equal("info", cfg.LogLevel)
}

func TestRandomPasswordVaries(t *testing.T) {
	testify.NotEqual(t, config.RandomPassword(), config.RandomPassword())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_HOST", "127.0.0.1")
	t.Setenv("API_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("REDIS_PASSWORD", "secret123")
	t.Setenv("REDIS_DB", "5")
	t.Setenv("REDIS_PREFIX", "custom-prefix")
	t.Setenv("AUTO_CREATE_ADMIN", "false")
	t.Setenv("AUTO_ADMIN_USERNAME", "root")
	t.Setenv("AUTO_ADMIN_PASSWORD", "hunter2")
	t.Setenv("TEMPORARY_DIRECTORY", "/var/tmp/edms")
	t.Setenv("ARCHIVE_BUCKET_URL", "mem://")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg := config.NewDefaultConfig()
	testify.NoError(t, cfg.LoadFromEnv())

	testify.Equal(t, "127.0.0.1", cfg.APIHost)
	testify.Equal(t, 9090, cfg.APIPort)
	testify.Equal(t, "debug", cfg.LogLevel)
	testify.Equal(t, "redis.example.com:6379", cfg.Store.Addr)
	testify.Equal(t, "secret123", cfg.Store.Password)
	testify.Equal(t, 5, cfg.Store.DB)
	testify.Equal(t, "custom-prefix", cfg.Store.Prefix)
	testify.False(t, cfg.AutoCreateAdmin)
	testify.Equal(t, "root", cfg.AutoAdminUsername)
	testify.Equal(t, "hunter2", cfg.AutoAdminPassword)
	testify.Equal(t, "/var/tmp/edms", cfg.TemporaryDirectory)
	testify.Equal(t, "mem://", cfg.ArchiveBucketURL)
	testify.Equal(t, "1h0m0s", cfg.SessionTTL.String())
	testify.Equal(t, "3s", cfg.ShutdownTimeout.String())
}

func TestLoadFromEnvErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port_not_number", key: "API_PORT", value: "abc"},
		{name: "port_out_of_range", key: "API_PORT", value: "70000"},
		{name: "bad_bool", key: "AUTO_CREATE_ADMIN", value: "maybe"},
		{name: "bad_duration", key: "SESSION_TTL", value: "forever"},
		{name: "negative_duration", key: "SHUTDOWN_TIMEOUT", value: "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg := config.NewDefaultConfig()
			err := cfg.LoadFromEnv()
			testify.Error(t, err)
			testify.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestStoreLoadFromEnvInvalidDB(t *testing.T) {
	t.Setenv("BAD_DB", "not_a_number")
	s := config.StoreConfig{DB: 3}
	config.LoadStoreConfigFromEnv(&s, "BAD")
	testify.Equal(t, 3, s.DB)
}
