// Package store provides the key-value persistence used to keep the last
// parsed record between sessions.
//
// All operations are whole-value: a key is read, overwritten, or deleted.
// Backends are selected by name through Open.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// ErrCorrupt is returned by Get when the backing data cannot be decoded.
var ErrCorrupt = errors.New("store data is corrupt")

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Store abstracts the persistence capability.
// The default implementation is FileStore; MemoryStore is provided for tests
// and RedisStore for shared deployments.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Backend is one of "file", "memory", "redis" (default: file)
	Backend string
	// Path is the file used by the file backend
	Path string
	// Redis configures the redis backend
	Redis RedisConfig
	// Logger is used for backend diagnostics
	Logger *slog.Logger
}

// Open creates the store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	switch cfg.Backend {
	case "", BackendFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file store requires a path")
		}
		return NewFileStore(cfg.Path).WithLogger(cfg.Logger), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		s := NewRedisStore(cfg.Redis)
		if err := s.Ping(ctx); err != nil {
			cfg.Logger.Warn("redis store not reachable yet", "addr", cfg.Redis.Addr, "error", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
