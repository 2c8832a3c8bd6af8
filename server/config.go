package server

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/campushq/unievents/internal/xtime"
	"github.com/campushq/unievents/server/auth"
	"github.com/campushq/unievents/server/store/postgres"
)

func LoadConfig(cfgPath string) (Config, error) {
	file, err := os.Open(cfgPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	cfg := defaultConfig()
	if _, err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config file: %w", err)
	}

	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:     slog.LevelInfo,
			Format:    LogFormatText,
			AddSource: false,
		},
		Server: ServerConfig{
			Addr: ":8087",
		},
		Storage: StorageMemory,
		Database: postgres.Config{
			Host:     "localhost",
			Port:     5432,
			Username: "postgres",
			Password: "password",
			Database: "unievents",
		},
		Auth: auth.Config{
			SessionTTL: xtime.Duration(24 * time.Hour),
		},
		RateLimit: RateLimitConfig{
			Every: xtime.Duration(100 * time.Millisecond),
			Burst: 50,
		},
	}
}

type Storage string

const (
	StorageMemory   Storage = "memory"
	StoragePostgres Storage = "postgres"
)

type Config struct {
	Log       LogConfig       `toml:"log"`
	Server    ServerConfig    `toml:"server"`
	Storage   Storage         `toml:"storage"`
	Database  postgres.Config `toml:"database"`
	Auth      auth.Config     `toml:"auth"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

func (c Config) String() string {
	return fmt.Sprintf("Log: %s\nServer: %s\nStorage: %s\nDatabase: %s\nAuth: %s\nRateLimit: %s",
		c.Log,
		c.Server,
		c.Storage,
		c.Database,
		c.Auth,
		c.RateLimit,
	)
}

type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatText   LogFormat = "text"
	LogFormatPretty LogFormat = "pretty"
)

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    LogFormat  `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

func (c LogConfig) String() string {
	return fmt.Sprintf("\n Level: %s\n Format: %s\n AddSource: %t",
		c.Level,
		c.Format,
		c.AddSource,
	)
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

func (c ServerConfig) String() string {
	return fmt.Sprintf("\n Address: %s",
		c.Addr,
	)
}

type RateLimitConfig struct {
	Every xtime.Duration `toml:"every"`
	Burst int            `toml:"burst"`
}

func (c RateLimitConfig) String() string {
	return fmt.Sprintf("\n Every: %s\n Burst: %d",
		c.Every,
		c.Burst,
	)
}
