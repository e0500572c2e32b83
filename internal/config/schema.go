package config

import "time"

// Config holds docparse configuration.
// Stored at: ~/.docparse/config.yaml (or ./config.yaml)
type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	OCR    OCRConfig    `mapstructure:"ocr" yaml:"ocr"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Redis  RedisConfig  `mapstructure:"redis" yaml:"redis"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// OCRConfig configures the OCR submission endpoint.
type OCRConfig struct {
	// BaseURL is the OCR service root; requests go to {BaseURL}/api/submit.
	// Supports ${ENV_VAR} syntax.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// TimeoutSeconds bounds each submission. 0 uses the transport default.
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns TimeoutSeconds as a duration.
func (c OCRConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResolvedBaseURL returns BaseURL with ${ENV_VAR} references expanded.
func (c OCRConfig) ResolvedBaseURL() string {
	return ResolveEnvVars(c.BaseURL)
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Backend string           `mapstructure:"backend" yaml:"backend"` // "file", "memory", "redis"
	Path    string           `mapstructure:"path" yaml:"path"`       // file backend; empty uses ~/.docparse/data/store.json
	Key     string           `mapstructure:"key" yaml:"key"`
	Redis   StoreRedisConfig `mapstructure:"redis" yaml:"redis"`
}

// StoreRedisConfig configures the redis store backend.
type StoreRedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"` // supports ${ENV_VAR} syntax
	DB       int    `mapstructure:"db" yaml:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

// RedisConfig holds the managed Redis container configuration.
type RedisConfig struct {
	// ContainerName is the Docker container name. Empty derives one from the home directory.
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	// Image is the Docker image to use (default: redis:7-alpine)
	Image string `mapstructure:"image" yaml:"image"`
	// Port is the host port to bind (default: 6379)
	Port string `mapstructure:"port" yaml:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8080",
		},
		OCR: OCRConfig{
			BaseURL:        "http://localhost:4000",
			TimeoutSeconds: 0,
		},
		Store: StoreConfig{
			Backend: "file",
			Key:     "parsedData",
			Redis: StoreRedisConfig{
				Addr:   "localhost:6379",
				Prefix: "docparse:",
			},
		},
		Redis: RedisConfig{
			Image: "redis:7-alpine",
			Port:  "6379",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
