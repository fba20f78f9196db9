package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
)

const defaultAllowedOrigins = "http://localhost:3000,http://127.0.0.1:3000"

// Config holds application configuration
type Config struct {
	// MySQL / TiDB接続設定
	DBHost     string `env:"DB_HOST,default=localhost"`
	DBPort     string `env:"DB_PORT,default=3306"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSSL      bool   `env:"DB_SSL,default=false"`

	// サーバー設定
	ServerPort string `env:"SERVER_PORT,default=8080"`
	Env        string `env:"ENV,default=development"`
	LogLevel   string `env:"LOG_LEVEL,default=INFO"`

	// CORS設定 (comma separated)
	RawAllowedOrigins string `env:"ALLOWED_ORIGINS"`
	AllowedOrigins    []string
}

// ClientConfig holds the chat CLI configuration
type ClientConfig struct {
	ServerURL    string        `env:"CHAT_SERVER_URL,default=http://localhost:8080"`
	PollInterval time.Duration `env:"CHAT_POLL_INTERVAL,default=2s"`
	Origin       string        `env:"CHAT_ORIGIN"`
	LogLevel     string        `env:"LOG_LEVEL,default=WARN"`
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(es)
}

// LoadFrom decodes configuration from the given variable set
func LoadFrom(es env.EnvSet) (Config, error) {
	var cfg Config
	if err := env.Unmarshal(es, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	raw := cfg.RawAllowedOrigins
	if raw == "" {
		raw = defaultAllowedOrigins
	}
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}

// LoadClient loads the chat CLI configuration from environment variables
func LoadClient() (ClientConfig, error) {
	var cfg ClientConfig
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("config: %w", err)
	}
	if cfg.PollInterval <= 0 {
		return ClientConfig{}, fmt.Errorf("config: CHAT_POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}
	return cfg, nil
}

// IsProduction reports whether ENV is set to production
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// ParseLevel maps LOG_LEVEL onto a slog level, defaulting to INFO
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}
