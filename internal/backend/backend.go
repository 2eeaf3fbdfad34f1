// Package backend builds the gateway the dashboard reads and writes through.
package backend

import (
	"context"
	"fmt"
	"time"

	"daybook/internal/log"
	"daybook/internal/remote"
	"daybook/internal/remote/httpapi"
	"daybook/internal/remote/memory"
)

// Type names a gateway implementation.
type Type string

const (
	// RemoteBackend talks to the tracking service over HTTP.
	RemoteBackend Type = "remote"
	// MemoryBackend keeps everything in process, for demos and tests.
	MemoryBackend Type = "memory"
)

// Types lists the supported backends.
var Types = []Type{RemoteBackend, MemoryBackend}

// IsValid reports whether t is a supported backend.
func (t Type) IsValid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// Config selects and configures a backend.
type Config struct {
	Type           Type
	APIBaseURL     string
	APIToken       string
	RequestTimeout time.Duration
}

// New creates the gateway described by cfg.
func New(ctx context.Context, cfg Config, logger *log.Logger) (remote.Gateway, error) {
	if logger == nil {
		logger = log.Discard()
	}
	switch cfg.Type {
	case MemoryBackend:
		logger.Info("Initialized memory backend", "backend", string(cfg.Type))
		return memory.New(), nil
	case RemoteBackend:
		client, err := httpapi.New(ctx, httpapi.Options{
			BaseURL: cfg.APIBaseURL,
			Token:   cfg.APIToken,
			Timeout: cfg.RequestTimeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize remote backend: %w", err)
		}
		logger.Info("Initialized remote backend",
			"backend", string(cfg.Type),
			log.FieldURL, cfg.APIBaseURL,
			"authenticated", cfg.APIToken != "",
			"timeout", cfg.RequestTimeout.String())
		return client, nil
	default:
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}
}
