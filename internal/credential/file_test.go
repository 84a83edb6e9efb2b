package credential

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested")

	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if got, want := store.Path(), filepath.Join(dir, TokenKey); got != want {
		t.Fatalf("Path() = %q, want %q", got, want)
	}

	if _, err := store.Read(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Read on empty store: got %v, want ErrNoToken", err)
	}

	if err := store.Write(ctx, "  abc\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file permissions = %04o, want 0600", perm)
	}

	token, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if token != "abc" {
		t.Errorf("Read() = %q, want %q", token, "abc")
	}

	if err := store.Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Read(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Read after Delete: got %v, want ErrNoToken", err)
	}
	if err := store.Delete(ctx); err != nil {
		t.Fatalf("second Delete should be a no-op: %v", err)
	}
}

func TestFileStoreRejectsInsecurePermissions(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := os.WriteFile(store.Path(), []byte("abc"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = store.Read(ctx)
	if err == nil || errors.Is(err, ErrNoToken) {
		t.Fatalf("Read with 0644 permissions: got %v, want permission error", err)
	}
}

func TestFileStoreEmptyPath(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestFileStoreCanceledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Write(ctx, "abc"); !errors.Is(err, context.Canceled) {
		t.Errorf("Write: got %v, want context.Canceled", err)
	}
	if _, err := store.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Read: got %v, want context.Canceled", err)
	}
}
