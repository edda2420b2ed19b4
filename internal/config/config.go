package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"GOMOKU_LOG_LEVEL" env-default:"info"`
	HTTP      HTTP      `yaml:"http"`
	Game      Game      `yaml:"game"`
	Store     Store     `yaml:"store"`
	Redis     Redis     `yaml:"redis"`
	SQLite    SQLite    `yaml:"sqlite"`
	Telemetry Telemetry `yaml:"telemetry"`
	Web       Web       `yaml:"web"`
}

type HTTP struct {
	Addr            string        `yaml:"addr" env:"GOMOKU_HTTP_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env:"GOMOKU_HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Game holds the board parameters every new game is created with.
type Game struct {
	BoardSize int `yaml:"board-size" env:"GOMOKU_BOARD_SIZE" env-default:"15"`
	WinLength int `yaml:"win-length" env:"GOMOKU_WIN_LENGTH" env-default:"5"`
}

type Store struct {
	Driver string        `yaml:"driver" env:"GOMOKU_STORE_DRIVER" env-default:"memory"`
	TTL    time.Duration `yaml:"ttl" env:"GOMOKU_STORE_TTL" env-default:"2h"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_CONNSTRING" env-default:"localhost:6379"`
}

type SQLite struct {
	Path string `yaml:"path" env:"GOMOKU_SQLITE_PATH" env-default:":memory:"`
}

type Telemetry struct {
	Enabled       bool   `yaml:"enabled" env:"GOMOKU_TELEMETRY_ENABLED" env-default:"false"`
	CollectorAddr string `yaml:"collector-addr" env:"OTEL_COLLECTOR_ADDR" env-default:"otel-collector:4317"`
	Stdout        bool   `yaml:"stdout" env:"GOMOKU_TELEMETRY_STDOUT" env-default:"false"`
	ServiceName   string `yaml:"service-name" env-default:"gomoku"`
}

type Web struct {
	Dir string `yaml:"dir" env:"GOMOKU_WEB_DIR" env-default:"./web"`
}

// Load reads the YAML file at path, then applies environment overrides.
// A missing file is not an error: defaults and the environment are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("unable to load config file: %w", err)
			}
			return cfg, cfg.Validate()
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("unable to stat config file: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("unable to read config from env: %w", err)
	}
	return cfg, cfg.Validate()
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// PathFromEnv returns the config file path from GOMOKU_CONFIG, or fallback.
func PathFromEnv(fallback string) string {
	if path := os.Getenv("GOMOKU_CONFIG"); path != "" {
		return path
	}
	return fallback
}

// Validate rejects settings no game or store can be built from.
func (c *Config) Validate() error {
	if c.Game.BoardSize < 1 {
		return fmt.Errorf("game.board-size must be positive, got %d", c.Game.BoardSize)
	}
	if c.Game.WinLength < 1 || c.Game.WinLength > c.Game.BoardSize {
		return fmt.Errorf("game.win-length must be between 1 and %d, got %d", c.Game.BoardSize, c.Game.WinLength)
	}
	switch c.Store.Driver {
	case StoreMemory, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("store.driver must be one of %s, %s, %s, got %q", StoreMemory, StoreRedis, StoreSQLite, c.Store.Driver)
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("store.ttl must not be negative, got %s", c.Store.TTL)
	}
	return nil
}
