package credential

import (
	"context"
	"errors"
	"testing"
)

func TestEnvStore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		env     map[string]string
		want    string
		wantErr error
	}{
		{name: "unset", env: map[string]string{}, wantErr: ErrNoToken},
		{name: "blank", env: map[string]string{EnvKey: "  "}, wantErr: ErrNoToken},
		{name: "set", env: map[string]string{EnvKey: "abc"}, want: "abc"},
		{name: "other key ignored", env: map[string]string{"TASKGATE_TOKEN": "abc"}, wantErr: ErrNoToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &EnvStore{lookup: func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			}}

			got, err := store.Read(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Read() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnvStoreIsReadOnly(t *testing.T) {
	ctx := context.Background()
	store := NewEnvStore()

	if err := store.Write(ctx, "abc"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Write: got %v, want ErrReadOnly", err)
	}
	if err := store.Delete(ctx); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Delete: got %v, want ErrReadOnly", err)
	}
}

func TestEnvKeyDerivesFromTokenKey(t *testing.T) {
	if EnvKey != "TASKGATE_AUTH_TOKEN" {
		t.Errorf("EnvKey = %q, want TASKGATE_AUTH_TOKEN", EnvKey)
	}
}
