package credential

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvPrefix prefixes the environment variable derived from TokenKey.
const EnvPrefix = "TASKGATE_"

// EnvKey is the environment variable read by EnvStore (TASKGATE_AUTH_TOKEN).
var EnvKey = EnvPrefix + strings.ToUpper(TokenKey)

// EnvStore provides read-only access to a token injected through the environment.
// Login and logout are unavailable with this backend.
type EnvStore struct {
	lookup func(string) (string, bool)
}

// Compile-time check to ensure EnvStore implements Store
var _ Store = (*EnvStore)(nil)

// NewEnvStore creates an EnvStore reading EnvKey from the process environment.
func NewEnvStore() *EnvStore {
	return &EnvStore{lookup: os.LookupEnv}
}

// Read returns the token from the environment. An unset or blank variable is ErrNoToken.
func (e *EnvStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	token, ok := e.lookup(EnvKey)
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Write is not supported for environment variables.
func (e *EnvStore) Write(ctx context.Context, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("environment variable %s: %w", EnvKey, ErrReadOnly)
}

// Delete is not supported for environment variables.
func (e *EnvStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("environment variable %s: %w", EnvKey, ErrReadOnly)
}
