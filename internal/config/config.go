package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	HTTPAddr string    `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080"`
	Log      Log       `yaml:"log"`
	Store    string    `yaml:"store" env:"STORE" env-default:"memory"`
	Redis    Redis     `yaml:"redis"`
	Auth     Auth      `yaml:"auth"`
	Otel     Otel      `yaml:"otel"`
	WS       WebSocket `yaml:"websocket"`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_CONNSTRING" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	// Sessions are dropped after this long without a move.
	TTL time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"24h"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwt-secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token-ttl" env:"JWT_TTL" env-default:"72h"`
}

type Otel struct {
	ServiceName    string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tic-tac-toe"`
	ServiceVersion string `yaml:"service-version" env:"OTEL_SERVICE_VERSION" env-default:"v0.1.0"`
	// Empty disables the OTLP exporters; traces then go to stdout when
	// StdoutTraces is set.
	Endpoint     string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	StdoutTraces bool   `yaml:"stdout-traces" env:"OTEL_STDOUT_TRACES" env-default:"false"`
}

type WebSocket struct {
	AllowedOrigins []string `yaml:"allowed-origins" env:"WS_ALLOWED_ORIGINS" env-separator:","`
}

// Load reads path and then applies environment overrides. An empty path
// reads the environment only; a path that cannot be read is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
		return cfg, cfg.validate()
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("unable to read config from env: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("%w: token ttl must be positive", ErrInvalidConfig)
	}
	return nil
}
