package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}

	value := []byte("v1")
	if err := s.Set(ctx, "k", value); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value[0] = 'x' // caller mutation must not leak into the store

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("Get() = %s, want v1", got)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s.Has("k") {
		t.Error("key should be gone after Delete")
	}
	if s.WriteCount() != 2 {
		t.Errorf("WriteCount() = %d, want 2", s.WriteCount())
	}
}

func TestMemoryStore_ErrorInjection(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	s := NewMemoryStore()
	s.SetErr = boom
	if err := s.Set(ctx, "k", []byte("v")); !errors.Is(err, boom) {
		t.Errorf("Set() error = %v, want boom", err)
	}
	if s.Has("k") {
		t.Error("failed Set should not store the value")
	}

	s.GetErr = boom
	if _, err := s.Get(ctx, "k"); !errors.Is(err, boom) {
		t.Errorf("Get() error = %v, want boom", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("file is default", func(t *testing.T) {
		s, err := Open(ctx, Config{Path: t.TempDir() + "/store.json"})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if _, ok := s.(*FileStore); !ok {
			t.Errorf("Open() = %T, want *FileStore", s)
		}
	})

	t.Run("file requires path", func(t *testing.T) {
		if _, err := Open(ctx, Config{Backend: BackendFile}); err == nil {
			t.Error("expected error for missing path")
		}
	})

	t.Run("memory", func(t *testing.T) {
		s, err := Open(ctx, Config{Backend: BackendMemory})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if _, ok := s.(*MemoryStore); !ok {
			t.Errorf("Open() = %T, want *MemoryStore", s)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Open(ctx, Config{Backend: "localstorage"})
		if !errors.Is(err, ErrUnknownBackend) {
			t.Errorf("Open() error = %v, want ErrUnknownBackend", err)
		}
	})
}
