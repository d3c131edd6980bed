package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jobpad/jobpad/internal/config"
	"github.com/jobpad/jobpad/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobpad",
	Short: "A job-search notebook with a block editor",
	Long: "jobpad is a terminal notebook for your job search: structured notes\n" +
		"with slash commands, record mentions, and an AI edit assistant.",
	// Default to `edit` so that `jobpad` with no args opens the notebook.
	RunE: runEdit,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBPAD_CONFIG env var or ~/.jobpad/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it. Priority: explicit path
// arg > JOBPAD_CONFIG env var > ~/.jobpad/config.yaml. A missing default
// file falls back to built-in defaults so first runs need no setup.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if path == "" {
		if env := os.Getenv("JOBPAD_CONFIG"); env != "" {
			path = env
			explicit = true
		} else if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".jobpad", "config.yaml")
		}
	}
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// setupTUILogger returns a logger safe to use while the editor owns the
// terminal: it writes next to the database, or discards when that fails.
func setupTUILogger(cfg *config.Config, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	logPath := filepath.Join(filepath.Dir(cfg.Store.Path), "jobpad.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: logLevel}))
}

// openStore makes sure the database directory exists and opens the store.
func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	if dir := filepath.Dir(cfg.Store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	return store.NewSQLiteStore(cfg.Store.Path)
}
