package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data", cfg.Storage.Root)
	assert.Equal(t, filepath.Join("data", "users"), cfg.Storage.UsersPath())
	assert.Equal(t, filepath.Join("data", "organizations"), cfg.Storage.OrgsPath())
	assert.Equal(t, 30*time.Minute, cfg.Session.MaxAge())
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "*/15 * * * *", cfg.Storage.SweepSchedule)
	assert.Equal(t, 10*time.Minute, cfg.Storage.TempMaxAge())
	assert.Equal(t, DefaultSessionSecret, cfg.Session.Secret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_ROOT", "/var/lib/portal")
	t.Setenv("SESSION_MAX_AGE_SECONDS", "600")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/portal", cfg.Storage.Root)
	assert.Equal(t, 10*time.Minute, cfg.Session.MaxAge())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_RejectsOutOfRangeArgon2(t *testing.T) {
	t.Setenv("ARGON2_PARALLELISM", "300")

	_, err := Load()
	assert.ErrorContains(t, err, "ARGON2_PARALLELISM")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage: StorageConfig{Root: "data", UsersDir: "users", OrgsDir: "organizations"},
			Session: SessionConfig{Secret: "s", MaxAgeSeconds: 1800},
			Argon2:  Argon2Config{MemoryKB: 64 * 1024, Iterations: 3, Parallelism: 2},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty_root", func(c *Config) { c.Storage.Root = "" }, true},
		{"shared_namespace_dir", func(c *Config) { c.Storage.OrgsDir = "users/" }, true},
		{"empty_secret", func(c *Config) { c.Session.Secret = "" }, true},
		{"zero_max_age", func(c *Config) { c.Session.MaxAgeSeconds = 0 }, true},
		{"argon2_iterations_over_cap", func(c *Config) { c.Argon2.Iterations = Argon2MaxIterations + 1 }, true},
		{"argon2_iterations_at_cap", func(c *Config) { c.Argon2.Iterations = Argon2MaxIterations }, false},
		{"argon2_zero_iterations", func(c *Config) { c.Argon2.Iterations = 0 }, true},
		{"argon2_memory_over_cap", func(c *Config) { c.Argon2.MemoryKB = Argon2MaxMemoryKB + 1 }, true},
		{"argon2_parallelism_256", func(c *Config) { c.Argon2.Parallelism = 256 }, true},
		{"argon2_parallelism_300", func(c *Config) { c.Argon2.Parallelism = 300 }, true},
		{"argon2_zero_parallelism", func(c *Config) { c.Argon2.Parallelism = 0 }, true},
		{"sweeper_without_max_age", func(c *Config) { c.Storage.SweepSchedule = "*/5 * * * *" }, true},
		{"sweeper", func(c *Config) {
			c.Storage.SweepSchedule = "*/5 * * * *"
			c.Storage.TempMaxAgeSeconds = 60
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
