package credential

import (
	"context"
	"errors"
	"testing"
)

type failingStore struct{ err error }

func (f failingStore) Read(context.Context) (string, error) { return "", f.err }
func (f failingStore) Write(context.Context, string) error { return f.err }
func (f failingStore) Delete(context.Context) error { return f.err }

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	session, err := NewSession(NewMemoryStore())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if session.Authenticated(ctx) {
		t.Fatal("new session should not be authenticated")
	}
	if _, ok, err := session.Token(ctx); ok || err != nil {
		t.Fatalf("Token() on empty session = ok %v, err %v", ok, err)
	}

	if err := session.SignIn(ctx, "abc"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	token, ok, err := session.Token(ctx)
	if err != nil || !ok || token != "abc" {
		t.Fatalf("Token() = %q, %v, %v; want abc, true, nil", token, ok, err)
	}
	if !session.Authenticated(ctx) {
		t.Fatal("session should be authenticated after SignIn")
	}

	// A second SignIn replaces the first token.
	if err := session.SignIn(ctx, "def"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if token, _, _ := session.Token(ctx); token != "def" {
		t.Fatalf("Token() = %q, want def", token)
	}

	if err := session.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if session.Authenticated(ctx) {
		t.Fatal("session should not be authenticated after SignOut")
	}
}

func TestSessionRejectsEmptyToken(t *testing.T) {
	session, _ := NewSession(NewMemoryStore())
	if err := session.SignIn(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank token")
	}
}

func TestSessionBackendFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	session, _ := NewSession(failingStore{err: boom})

	if _, _, err := session.Token(ctx); !errors.Is(err, boom) {
		t.Fatalf("Token() error = %v, want wrapped boom", err)
	}
	if session.Authenticated(ctx) {
		t.Fatal("backend failure must count as signed out")
	}
}

func TestNewSessionNilStore(t *testing.T) {
	if _, err := NewSession(nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestSessionSignOutReadOnlyStore(t *testing.T) {
	ctx := context.Background()
	env := map[string]string{EnvKey: "stale"}
	store := &EnvStore{lookup: func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}}
	session, _ := NewSession(store)

	if !session.Authenticated(ctx) {
		t.Fatal("env token should authenticate")
	}
	if err := session.SignOut(ctx); err != nil {
		t.Fatalf("SignOut on read-only store: %v", err)
	}
	if _, ok, err := session.Token(ctx); ok || err != nil {
		t.Fatalf("Token() after SignOut = ok %v, err %v; want revoked", ok, err)
	}
	if session.Authenticated(ctx) {
		t.Fatal("revoked token must not authenticate")
	}

	// A different value in the store is a fresh credential.
	env[EnvKey] = "fresh"
	if token, ok, _ := session.Token(ctx); !ok || token != "fresh" {
		t.Fatalf("Token() = %q, %v; want fresh, true", token, ok)
	}
}
