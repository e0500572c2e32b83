package main

import (
	"testing"

	"github.com/jackzampolin/docparse/internal/config"
	"github.com/jackzampolin/docparse/internal/store"
)

func TestUseManagedRedis(t *testing.T) {
	tests := []struct {
		name    string
		backend string
	}{
		{"default file backend", store.BackendFile},
		{"memory backend", store.BackendMemory},
		{"already redis", store.BackendRedis},
		{"unset", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Store.Backend = tt.backend
			cfg.Store.Redis.Addr = "10.0.0.1:6379"

			useManagedRedis(cfg, "127.0.0.1:16379")

			if cfg.Store.Backend != store.BackendRedis {
				t.Errorf("Backend = %q, want %q", cfg.Store.Backend, store.BackendRedis)
			}
			if cfg.Store.Redis.Addr != "127.0.0.1:16379" {
				t.Errorf("Redis.Addr = %q, want managed container address", cfg.Store.Redis.Addr)
			}
		})
	}
}

func TestServeFlags(t *testing.T) {
	f := serveCmd.Flags().Lookup("with-redis")
	if f == nil {
		t.Fatal("serve has no --with-redis flag")
	}
	if f.DefValue != "false" {
		t.Errorf("--with-redis default = %q, want false", f.DefValue)
	}
}
