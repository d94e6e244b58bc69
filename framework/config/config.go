package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/km-arc/go-minidi/framework/validation"
)

// Config is the central typed configuration struct.
type Config struct {
	App       AppConfig
	Container ContainerConfig
	Log       LogConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | development | testing | staging | production
	Debug bool
}

// ContainerConfig locates the container definition file and the keys the
// demo binary resolves.
type ContainerConfig struct {
	File string
	Keys []string
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // console | json
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "MiniDI"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", true),
		},
		Container: ContainerConfig{
			File: env("CONTAINER_FILE", "container.yaml"),
			Keys: envList("CONTAINER_KEYS"),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", "console"),
		},
	}
}

// rules checks the environment values Load accepts.
var rules = validation.Rules{
	"APP_NAME":       "required",
	"APP_ENV":        "required|in:local,development,testing,staging,production",
	"CONTAINER_FILE": "sometimes|in:.yaml,.yml,.json",
	"LOG_LEVEL":      "required|in:debug,info,warn,warning,error,dpanic,panic,fatal",
	"LOG_FORMAT":     "required|in:console,json",
}

// Validate reports every configuration value outside the accepted set.
// CONTAINER_FILE is checked by extension only.
func (c *Config) Validate() error {
	v := validation.Make(map[string]string{
		"APP_NAME":       c.App.Name,
		"APP_ENV":        c.App.Env,
		"CONTAINER_FILE": filepath.Ext(c.Container.File),
		"LOG_LEVEL":      strings.ToLower(c.Log.Level),
		"LOG_FORMAT":     strings.ToLower(c.Log.Format),
	}, rules)
	if v.Passes() {
		return nil
	}
	return fmt.Errorf("invalid configuration: %w", v.Errors())
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// envList splits a comma-separated variable, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
