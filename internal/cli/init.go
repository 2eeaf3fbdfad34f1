// Package cli wires configuration, storage and the remote gateway into the
// daybook subcommands.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"daybook/internal/config"
	"daybook/internal/log"
	"daybook/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger at the configured level, writing to w,
// and makes it the slog default.
func SetupLogger(level string, w io.Writer) *log.Logger {
	logger := log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(w, &slog.HandlerOptions{Level: log.ParseLevel(level)}),
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig(logger *log.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
		return nil, err
	}
	return cfg, nil
}

// InitSQLite opens the SQLite repository at dbPath, running migrations.
func InitSQLite(logger *log.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeDatabase,
			"path", dbPath)
		return nil, err
	}
	return repo, nil
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
