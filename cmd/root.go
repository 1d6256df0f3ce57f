package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/examforge/examforge/internal/config"
	"github.com/examforge/examforge/internal/store"
)

// cfg is resolved once per invocation, before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "examforge",
	Short: "AI-assisted exam generation and versioning",
	Long: `examforge generates exam question sets with an LLM, derives shuffled
versions with answer keys, and stores them as editable activities.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Database DSN or SQLite path (overrides EXAMFORGE_DB)")
	pf.String("db-driver", "", "Database driver: sqlite or postgres (overrides EXAMFORGE_DB_DRIVER)")
	pf.String("log-level", "", "Log level: debug, info, warn, error (overrides EXAMFORGE_LOG_LEVEL)")
	pf.String("log-format", "", "Log format: text or json (overrides EXAMFORGE_LOG_FORMAT)")
	pf.StringSlice("env-file", nil, "Extra .env files to load")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(activitiesCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads .env files and the environment, applies flag overrides and
// installs the default logger.
func setup(cmd *cobra.Command, _ []string) error {
	files, _ := cmd.Flags().GetStringSlice("env-file")
	if err := config.LoadDotEnv(append([]string{".env"}, files...)...); err != nil {
		return err
	}

	c, err := config.FromEnv()
	if err != nil {
		return err
	}
	for flag, dst := range map[string]*string{
		"db":         &c.DBDSN,
		"db-driver":  &c.DBDriver,
		"log-level":  &c.LogLevel,
		"log-format": &c.LogFormat,
	} {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			*dst = v
		}
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	level, _ := config.ParseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch c.LogFormat {
	case "json":
		h = slog.NewJSONHandler(os.Stderr, opts)
	case "text", "":
		h = slog.NewTextHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.LogFormat)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// openStore opens the configured database.
func openStore() (*store.Store, error) {
	s, err := store.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
