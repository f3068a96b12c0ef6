package tokenstore

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestBoltStore_SaveLoadDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.db")

	store, err := OpenBolt(path, "api.example.com")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	// Load before any save reports absence
	if _, err := store.Load(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Save("abc123"); err != nil {
		t.Fatalf("failed to save token: %v", err)
	}

	token, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load token: %v", err)
	}
	if token != "abc123" {
		t.Errorf("expected token 'abc123', got %q", token)
	}

	if err := store.Delete(); err != nil {
		t.Fatalf("failed to delete token: %v", err)
	}

	if _, err := store.Load(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestBoltStore_DeleteIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.db")

	store, err := OpenBolt(path, "api.example.com")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	// Deleting with no file, then twice after a save, never errors
	if err := store.Delete(); err != nil {
		t.Errorf("delete without file should succeed, got %v", err)
	}

	if err := store.Save("abc123"); err != nil {
		t.Fatalf("failed to save token: %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Errorf("first delete failed: %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Errorf("second delete failed: %v", err)
	}
}

func TestBoltStore_TokensAreScopedPerServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.db")

	first, err := OpenBolt(path, "one.example.com")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	second, err := OpenBolt(path, "two.example.com")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	if err := first.Save("token-one"); err != nil {
		t.Fatalf("failed to save token: %v", err)
	}
	if err := second.Save("token-two"); err != nil {
		t.Fatalf("failed to save token: %v", err)
	}

	token, err := first.Load()
	if err != nil {
		t.Fatalf("failed to load token: %v", err)
	}
	if token != "token-one" {
		t.Errorf("expected 'token-one', got %q", token)
	}

	if err := second.Delete(); err != nil {
		t.Fatalf("failed to delete token: %v", err)
	}
	if _, err := first.Load(); err != nil {
		t.Errorf("deleting two.example.com should not affect one.example.com: %v", err)
	}
}

func TestOpen_UsesBoltWhenTokenFileSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.db")
	t.Setenv("BOOKSHELF_TOKEN_FILE", path)

	store, err := Open("api.example.com")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if _, ok := store.(*Bolt); !ok {
		t.Errorf("expected a *Bolt store, got %T", store)
	}
}
