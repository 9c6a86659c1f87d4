package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultSessionSecret is only meant for local development.
const DefaultSessionSecret = "change-me-in-production"

// Largest argon2 costs a stored digest may carry.
const (
	Argon2MaxMemoryKB    = 1024 * 1024
	Argon2MaxIterations  = 16
	Argon2MaxParallelism = 255
)

type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Storage StorageConfig
	Session SessionConfig
	Argon2  Argon2Config
	CORS    CORSConfig
	Metrics MetricsConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type LogConfig struct {
	Level string
}

type StorageConfig struct {
	Root              string
	UsersDir          string
	OrgsDir           string
	CacheSize         int
	SweepSchedule     string // empty disables the temp file sweeper
	TempMaxAgeSeconds int
}

type SessionConfig struct {
	Secret        string
	MaxAgeSeconds int
	SecureCookie  bool
}

type Argon2Config struct {
	MemoryKB    int
	Iterations  int
	Parallelism int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type MetricsConfig struct {
	Enabled bool
}

func (s *StorageConfig) UsersPath() string {
	return filepath.Join(s.Root, s.UsersDir)
}

func (s *StorageConfig) OrgsPath() string {
	return filepath.Join(s.Root, s.OrgsDir)
}

func (s *StorageConfig) TempMaxAge() time.Duration {
	return time.Duration(s.TempMaxAgeSeconds) * time.Second
}

func (s *SessionConfig) MaxAge() time.Duration {
	return time.Duration(s.MaxAgeSeconds) * time.Second
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("STORAGE_ROOT", "data")
	v.SetDefault("STORAGE_USERS_DIR", "users")
	v.SetDefault("STORAGE_ORGS_DIR", "organizations")
	v.SetDefault("STORAGE_CACHE_SIZE", 256)
	v.SetDefault("STORAGE_SWEEP_SCHEDULE", "*/15 * * * *")
	v.SetDefault("STORAGE_TEMP_MAX_AGE_SECONDS", 600)
	v.SetDefault("SESSION_SECRET", DefaultSessionSecret)
	v.SetDefault("SESSION_MAX_AGE_SECONDS", 1800)
	v.SetDefault("SESSION_SECURE_COOKIE", false)
	v.SetDefault("ARGON2_MEMORY_KB", 64*1024)
	v.SetDefault("ARGON2_ITERATIONS", 3)
	v.SetDefault("ARGON2_PARALLELISM", 2)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("METRICS_ENABLED", true)

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
			Env:  v.GetString("SERVER_ENV"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Storage: StorageConfig{
			Root:              v.GetString("STORAGE_ROOT"),
			UsersDir:          v.GetString("STORAGE_USERS_DIR"),
			OrgsDir:           v.GetString("STORAGE_ORGS_DIR"),
			CacheSize:         v.GetInt("STORAGE_CACHE_SIZE"),
			SweepSchedule:     strings.TrimSpace(v.GetString("STORAGE_SWEEP_SCHEDULE")),
			TempMaxAgeSeconds: v.GetInt("STORAGE_TEMP_MAX_AGE_SECONDS"),
		},
		Session: SessionConfig{
			Secret:        v.GetString("SESSION_SECRET"),
			MaxAgeSeconds: v.GetInt("SESSION_MAX_AGE_SECONDS"),
			SecureCookie:  v.GetBool("SESSION_SECURE_COOKIE"),
		},
		Argon2: Argon2Config{
			MemoryKB:    v.GetInt("ARGON2_MEMORY_KB"),
			Iterations:  v.GetInt("ARGON2_ITERATIONS"),
			Parallelism: v.GetInt("ARGON2_PARALLELISM"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Storage.Root == "" {
		return fmt.Errorf("STORAGE_ROOT must not be empty")
	}
	if c.Storage.UsersDir == "" || c.Storage.OrgsDir == "" {
		return fmt.Errorf("storage namespace directories must not be empty")
	}
	if filepath.Clean(c.Storage.UsersDir) == filepath.Clean(c.Storage.OrgsDir) {
		return fmt.Errorf("users and organizations must use separate storage directories")
	}
	if c.Storage.SweepSchedule != "" && c.Storage.TempMaxAgeSeconds <= 0 {
		return fmt.Errorf("STORAGE_TEMP_MAX_AGE_SECONDS must be positive when the sweeper is enabled")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET must not be empty")
	}
	if c.Session.MaxAgeSeconds <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE_SECONDS must be positive, got %d", c.Session.MaxAgeSeconds)
	}
	if c.Argon2.MemoryKB < 8 || c.Argon2.MemoryKB > Argon2MaxMemoryKB {
		return fmt.Errorf("ARGON2_MEMORY_KB must be between 8 and %d, got %d", Argon2MaxMemoryKB, c.Argon2.MemoryKB)
	}
	if c.Argon2.Iterations < 1 || c.Argon2.Iterations > Argon2MaxIterations {
		return fmt.Errorf("ARGON2_ITERATIONS must be between 1 and %d, got %d", Argon2MaxIterations, c.Argon2.Iterations)
	}
	if c.Argon2.Parallelism < 1 || c.Argon2.Parallelism > Argon2MaxParallelism {
		return fmt.Errorf("ARGON2_PARALLELISM must be between 1 and %d, got %d", Argon2MaxParallelism, c.Argon2.Parallelism)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
