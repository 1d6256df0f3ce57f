// Package config loads application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/examforge/examforge/internal/examgen"
	"github.com/examforge/examforge/internal/llm"
	"github.com/examforge/examforge/internal/store"
)

// Config holds the application settings.
type Config struct {
	HTTPAddr  string
	DBDriver  string
	DBDSN     string
	JWTSecret string
	LogLevel  string
	LogFormat string

	StrictCount      bool
	StructuredOutput bool

	LLM llm.Config
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv reads EXAMFORGE_* variables.
func FromEnv() (Config, error) {
	c := Config{
		HTTPAddr:         envOr("EXAMFORGE_HTTP_ADDR", ":8080"),
		DBDriver:         envOr("EXAMFORGE_DB_DRIVER", store.DriverSQLite),
		DBDSN:            os.Getenv("EXAMFORGE_DB"),
		JWTSecret:        os.Getenv("EXAMFORGE_JWT_SECRET"),
		LogLevel:         envOr("EXAMFORGE_LOG_LEVEL", "info"),
		LogFormat:        envOr("EXAMFORGE_LOG_FORMAT", "text"),
		StrictCount:      envBool("EXAMFORGE_STRICT_COUNT", false),
		StructuredOutput: envBool("EXAMFORGE_STRUCTURED_OUTPUT", false),
		LLM:              llm.ConfigFromEnv(),
	}
	if c.DBDSN == "" && c.DBDriver == store.DriverSQLite {
		p, err := store.DefaultDBPath()
		if err != nil {
			return c, fmt.Errorf("resolve database path: %w", err)
		}
		c.DBDSN = p
	}
	return c, nil
}

// Generator returns the generation pipeline settings.
func (c Config) Generator() examgen.Config {
	g := examgen.DefaultConfig()
	g.StrictCount = c.StrictCount
	g.StructuredOutput = c.StructuredOutput
	return g
}

// Validate checks settings that have no usable default.
func (c Config) Validate() error {
	switch c.DBDriver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		return fmt.Errorf("unsupported EXAMFORGE_DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("EXAMFORGE_DB is required for driver %s", c.DBDriver)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
