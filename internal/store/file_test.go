package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "store.json")
	s := NewFileStore(path)

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "parsedData")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		if err := s.Set(ctx, "parsedData", []byte(`{"name":"Jane Doe"}`)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := s.Get(ctx, "parsedData")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != `{"name":"Jane Doe"}` {
			t.Errorf("Get() = %s", got)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := s.Set(ctx, "parsedData", []byte(`{"name":"John"}`)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, _ := s.Get(ctx, "parsedData")
		if string(got) != `{"name":"John"}` {
			t.Errorf("Get() after overwrite = %s", got)
		}
	})

	t.Run("survives reopen", func(t *testing.T) {
		reopened := NewFileStore(path)
		got, err := reopened.Get(ctx, "parsedData")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != `{"name":"John"}` {
			t.Errorf("Get() after reopen = %s", got)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		if err := s.Delete(ctx, "parsedData"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := s.Delete(ctx, "parsedData"); err != nil {
			t.Fatalf("second Delete() error = %v", err)
		}
		if _, err := s.Get(ctx, "parsedData"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
		}
	})
}

func TestFileStore_KeepsOtherKeys(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "store.json"))

	_ = s.Set(ctx, "a", []byte("1"))
	_ = s.Set(ctx, "b", []byte("2"))
	_ = s.Delete(ctx, "a")

	got, err := s.Get(ctx, "b")
	if err != nil || string(got) != "2" {
		t.Errorf("Get(b) = %q, %v", got, err)
	}
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "store.json"))

	for i := 0; i < 5; i++ {
		if err := s.Set(ctx, "k", []byte("v")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "store.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want only store.json", names)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	ctx := context.Background()

	corrupt := func(t *testing.T) *FileStore {
		t.Helper()
		path := filepath.Join(t.TempDir(), "store.json")
		if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
			t.Fatal(err)
		}
		return NewFileStore(path).WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	}

	t.Run("get reports corruption", func(t *testing.T) {
		s := corrupt(t)
		if _, err := s.Get(ctx, "parsedData"); !errors.Is(err, ErrCorrupt) {
			t.Errorf("Get() error = %v, want ErrCorrupt", err)
		}
	})

	t.Run("delete replaces the file", func(t *testing.T) {
		s := corrupt(t)
		if err := s.Delete(ctx, "parsedData"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := s.Delete(ctx, "parsedData"); err != nil {
			t.Fatalf("second Delete() error = %v", err)
		}
		if _, err := s.Get(ctx, "parsedData"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("set replaces the file", func(t *testing.T) {
		s := corrupt(t)
		if err := s.Set(ctx, "parsedData", []byte(`{"name":"Jane"}`)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := s.Get(ctx, "parsedData")
		if err != nil || string(got) != `{"name":"Jane"}` {
			t.Errorf("Get() = %q, %v", got, err)
		}
	})
}
