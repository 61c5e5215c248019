package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/client"
)

// Config is read from SHOPCTL_* environment variables, after an optional
// .env file. Command-line flags override it.
type Config struct {
	ServerURL      string   `env:"SERVER_URL" envDefault:"http://localhost:8080"`
	Store          string   `env:"STORE"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat      string   `env:"LOG_FORMAT" envDefault:"text"`
	ListenAddr     string   `env:"LISTEN_ADDR" envDefault:"127.0.0.1:3000"`
	NonInteractive bool     `env:"NON_INTERACTIVE"`
	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://127.0.0.1:5173"`
	MenuCacheSize  int      `env:"MENU_CACHE_SIZE" envDefault:"64"`
}

const envPrefix = "SHOPCTL_"

// Load reads .env files (missing files are ignored) and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

type contextKey string

const configKey contextKey = "shopctl-config"

// GlobalConfig holds shared state for all shopctl commands. The root
// command's PersistentPreRunE injects it into the command context.
type GlobalConfig struct {
	*Config
	ClientProvider *client.Provider
}

// InjectConfig adds config to the cobra command context.
func InjectConfig(ctx context.Context, cfg *GlobalConfig) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from the cobra command context.
// Returns (nil, false) if config is not present.
func FromContext(ctx context.Context) (*GlobalConfig, bool) {
	cfg, ok := ctx.Value(configKey).(*GlobalConfig)
	return cfg, ok
}

// MustFromContext retrieves config from context or panics.
func MustFromContext(ctx context.Context) *GlobalConfig {
	cfg, ok := FromContext(ctx)
	if !ok {
		panic("shopctl: config not found in context - this is a bug in shopctl")
	}
	return cfg
}
