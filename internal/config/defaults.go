package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrNoDefault is returned when no default value exists for a config key.
var ErrNoDefault = errors.New("no default exists")

// ErrInvalidKey is returned when a config key contains invalid characters.
var ErrInvalidKey = errors.New("invalid config key")

// Entry describes one configuration key.
type Entry struct {
	Key         string `json:"key" yaml:"key"`
	Value       any    `json:"value" yaml:"value"`
	Description string `json:"description" yaml:"description"`
}

// Env returns the environment variable that overrides the key.
func (e Entry) Env() string {
	return EnvVar(e.Key)
}

// EnvVar maps a config key to its environment variable ("ocr.base_url" -> "DOCPARSE_OCR_BASE_URL").
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(envKeyReplacer.Replace(key))
}

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// DefaultEntries returns every known configuration key with its default.
func DefaultEntries() []Entry {
	d := DefaultConfig()
	return []Entry{
		// Server
		{Key: "server.host", Value: d.Server.Host, Description: "Address the HTTP server binds to"},
		{Key: "server.port", Value: d.Server.Port, Description: "Port the HTTP server listens on"},

		// OCR
		{Key: "ocr.base_url", Value: d.OCR.BaseURL, Description: "OCR service base URL; documents are posted to {base_url}/api/submit"},
		{Key: "ocr.timeout_seconds", Value: d.OCR.TimeoutSeconds, Description: "Per-submission timeout in seconds (0 = transport default)"},

		// Store
		{Key: "store.backend", Value: d.Store.Backend, Description: "Record store backend: file, memory or redis"},
		{Key: "store.path", Value: d.Store.Path, Description: "File store path (empty = ~/.docparse/data/store.json)"},
		{Key: "store.key", Value: d.Store.Key, Description: "Key the saved record is stored under"},
		{Key: "store.redis.addr", Value: d.Store.Redis.Addr, Description: "Redis address for the redis backend"},
		{Key: "store.redis.password", Value: d.Store.Redis.Password, Description: "Redis password (supports ${ENV_VAR})"},
		{Key: "store.redis.db", Value: d.Store.Redis.DB, Description: "Redis database number"},
		{Key: "store.redis.prefix", Value: d.Store.Redis.Prefix, Description: "Prefix applied to every redis key"},

		// Managed Redis container
		{Key: "redis.container_name", Value: d.Redis.ContainerName, Description: "Docker container name (empty = derived from home directory)"},
		{Key: "redis.image", Value: d.Redis.Image, Description: "Docker image for the managed Redis"},
		{Key: "redis.port", Value: d.Redis.Port, Description: "Host port for the managed Redis"},

		// Logging
		{Key: "log.level", Value: d.Log.Level, Description: "Log level: debug, info, warn or error"},
	}
}

// GetDefault returns the default entry for a config key.
// Returns ErrNoDefault if the key is unknown.
func GetDefault(key string) (*Entry, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	for _, entry := range DefaultEntries() {
		if entry.Key == key {
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("%w for key %q", ErrNoDefault, key)
}

// ValidateKey checks if a config key contains only allowed characters.
// Valid keys contain: letters, digits, dots, underscores, and hyphens.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}
	for i, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '_' && r != '-' {
			return fmt.Errorf("%w: invalid character %q at position %d", ErrInvalidKey, r, i)
		}
	}
	if key[0] == '.' || key[len(key)-1] == '.' {
		return fmt.Errorf("%w: key cannot start or end with a dot", ErrInvalidKey)
	}
	return nil
}
