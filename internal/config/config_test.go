package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configFile
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.OCR.BaseURL != "http://localhost:4000" {
		t.Errorf("OCR.BaseURL = %q", cfg.OCR.BaseURL)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("Store.Backend = %q, want file", cfg.Store.Backend)
	}
	if cfg.Store.Key != "parsedData" {
		t.Errorf("Store.Key = %q, want parsedData", cfg.Store.Key)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"redis backend", func(c *Config) { c.Store.Backend = "redis" }, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "sqlite" }, true},
		{"empty key", func(c *Config) { c.Store.Key = "" }, true},
		{"negative timeout", func(c *Config) { c.OCR.TimeoutSeconds = -1 }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"upper-case log level", func(c *Config) { c.Log.Level = "DEBUG" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOCRConfig(t *testing.T) {
	t.Setenv("TEST_OCR_HOST", "ocr.internal:4000")

	c := OCRConfig{BaseURL: "http://${TEST_OCR_HOST}", TimeoutSeconds: 30}
	if got := c.ResolvedBaseURL(); got != "http://ocr.internal:4000" {
		t.Errorf("ResolvedBaseURL() = %q", got)
	}
	if got := c.Timeout(); got != 30*time.Second {
		t.Errorf("Timeout() = %v", got)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		t.Setenv("TEST_REDIS_PASSWORD", "secret123")

		result := ResolveEnvVars("${TEST_REDIS_PASSWORD}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"debug", "DEBUG", false},
		{"info", "INFO", false},
		{"WARN", "WARN", false},
		{"error", "ERROR", false},
		{"verbose", "INFO", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got.String() != tt.want {
				t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewManager(t *testing.T) {
	t.Run("defaults without config file", func(t *testing.T) {
		mgr, err := NewManager("", t.TempDir())
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		cfg := mgr.Get()
		if cfg.Server.Port != "8080" || cfg.Store.Backend != "file" {
			t.Errorf("unexpected defaults: %+v", cfg)
		}
	})

	t.Run("loads from config file", func(t *testing.T) {
		configFile := writeConfig(t, `
ocr:
  base_url: "http://ocr.example:9000"
store:
  backend: memory
`)
		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.OCR.BaseURL != "http://ocr.example:9000" {
			t.Errorf("expected file base URL, got %s", cfg.OCR.BaseURL)
		}
		if cfg.Store.Backend != "memory" {
			t.Errorf("expected memory backend, got %s", cfg.Store.Backend)
		}
		// Unset keys keep their defaults.
		if cfg.Store.Key != "parsedData" {
			t.Errorf("expected default store key, got %s", cfg.Store.Key)
		}
		if mgr.ConfigFileUsed() != configFile {
			t.Errorf("ConfigFileUsed() = %q, want %q", mgr.ConfigFileUsed(), configFile)
		}
	})

	t.Run("finds config in search dir", func(t *testing.T) {
		configFile := writeConfig(t, "server:\n  port: \"9999\"\n")
		mgr, err := NewManager("", filepath.Dir(configFile))
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if got := mgr.Get().Server.Port; got != "9999" {
			t.Errorf("Server.Port = %q, want 9999", got)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("DOCPARSE_OCR_BASE_URL", "http://from-env:4000")
		t.Setenv("DOCPARSE_STORE_REDIS_DB", "3")
		configFile := writeConfig(t, "ocr:\n  base_url: http://from-file:4000\n")

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		cfg := mgr.Get()
		if cfg.OCR.BaseURL != "http://from-env:4000" {
			t.Errorf("OCR.BaseURL = %q, want env value", cfg.OCR.BaseURL)
		}
		if cfg.Store.Redis.DB != 3 {
			t.Errorf("Store.Redis.DB = %d, want 3", cfg.Store.Redis.DB)
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		configFile := writeConfig(t, "store:\n  backend: floppy\n")
		if _, err := NewManager(configFile); err == nil {
			t.Fatal("expected error for unknown backend")
		}
	})

	t.Run("rejects unreadable file", func(t *testing.T) {
		configFile := writeConfig(t, "server: [unterminated\n")
		if _, err := NewManager(configFile); err == nil {
			t.Fatal("expected error for malformed yaml")
		}
	})
}

func TestManager_Value(t *testing.T) {
	mgr, err := NewManager("", t.TempDir())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	v, err := mgr.Value("store.key")
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if v != "parsedData" {
		t.Errorf("Value(store.key) = %v", v)
	}

	if _, err := mgr.Value("store.nope"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestManager_OnChange_Multiple(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log:\n  level: info\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestManager_Get_ThreadSafe(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log:\n  level: info\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				_ = mgr.Get().Log.Level
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestManager_WatchConfig(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping fsnotify test in short mode")
	}

	configFile := writeConfig(t, "log:\n  level: info\n")
	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	var callbackCount atomic.Int32
	var lastLevel atomic.Value
	mgr.OnChange(func(cfg *Config) {
		callbackCount.Add(1)
		lastLevel.Store(cfg.Log.Level)
	})

	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("failed to write updated config file: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if callbackCount.Load() > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if callbackCount.Load() == 0 {
		t.Fatal("callback was not invoked after config file change")
	}
	if got := mgr.Get().Log.Level; got != "debug" {
		t.Errorf("config not updated: got %s", got)
	}
	if v := lastLevel.Load(); v != "debug" {
		t.Errorf("callback received wrong value: %v", v)
	}
}

func TestManager_ReloadKeepsPreviousOnInvalid(t *testing.T) {
	configFile := writeConfig(t, "store:\n  backend: file\n")
	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	called := false
	mgr.OnChange(func(*Config) { called = true })

	if err := os.WriteFile(configFile, []byte("store:\n  backend: tape\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := mgr.v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}
	mgr.reload(configFile)

	if called {
		t.Error("callback invoked for invalid config")
	}
	if got := mgr.Get().Store.Backend; got != "file" {
		t.Errorf("Store.Backend = %q, want previous value", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("DOCPARSE_TEST_DOTENV=loaded\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCPARSE_TEST_DOTENV", "")
	os.Unsetenv("DOCPARSE_TEST_DOTENV")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), envFile); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("DOCPARSE_TEST_DOTENV"); got != "loaded" {
		t.Errorf("DOCPARSE_TEST_DOTENV = %q, want loaded", got)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("written default config does not load: %v", err)
	}
	if got := mgr.Get().OCR.BaseURL; got != DefaultConfig().OCR.BaseURL {
		t.Errorf("OCR.BaseURL = %q", got)
	}
}
