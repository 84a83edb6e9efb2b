package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Session is the explicit authentication context shared by the API client and
// the route guard. It is the only writer, reader and deleter of the token.
type Session struct {
	store   Store
	writeMu sync.Mutex

	// revoked hides a token a read-only store could not delete.
	revokedMu sync.RWMutex
	revoked   string
}

// NewSession wraps store in a Session.
func NewSession(store Store) (*Session, error) {
	if store == nil {
		return nil, fmt.Errorf("missing token store")
	}
	return &Session{store: store}, nil
}

// Token returns the stored token and whether one is present. ErrNoToken and a
// revoked token are reported as ("", false, nil); other backend failures are
// returned.
func (s *Session) Token(ctx context.Context) (string, bool, error) {
	token, err := s.store.Read(ctx)
	if errors.Is(err, ErrNoToken) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading token: %w", err)
	}
	if s.isRevoked(token) {
		return "", false, nil
	}
	return token, true, nil
}

func (s *Session) isRevoked(token string) bool {
	s.revokedMu.RLock()
	defer s.revokedMu.RUnlock()
	return s.revoked != "" && s.revoked == token
}

func (s *Session) setRevoked(token string) {
	s.revokedMu.Lock()
	s.revoked = token
	s.revokedMu.Unlock()
}

// Authenticated reports whether a token is stored. Backend failures count as
// unauthenticated.
func (s *Session) Authenticated(ctx context.Context) bool {
	_, ok, err := s.Token(ctx)
	if err != nil {
		slog.WarnContext(ctx, "token lookup failed, treating session as signed out", "error", err)
		return false
	}
	return ok
}

// SignIn stores token, replacing any previous one.
func (s *Session) SignIn(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("empty token")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.Write(ctx, token); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	s.setRevoked("")
	return nil
}

// SignOut deletes the stored token. On a read-only store the current token is
// revoked for the lifetime of the Session instead, so Token and Authenticated
// stop reporting it until the store holds a different value.
func (s *Session) SignOut(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.store.Delete(ctx)
	if err == nil {
		s.setRevoked("")
		return nil
	}
	if !errors.Is(err, ErrReadOnly) {
		return fmt.Errorf("deleting token: %w", err)
	}

	token, readErr := s.store.Read(ctx)
	if errors.Is(readErr, ErrNoToken) {
		return nil
	}
	if readErr != nil {
		return fmt.Errorf("reading token to revoke: %w", readErr)
	}
	s.setRevoked(token)
	slog.DebugContext(ctx, "token storage is read-only, revoked token in memory")
	return nil
}
