package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/florianilch/taskgate/internal/credential"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	if cfg.Server.Host != DefaultConfigServerHost || cfg.Server.Port != DefaultConfigServerPort {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Backend.BaseURL != DefaultConfigBackendBaseURL {
		t.Errorf("backend base url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Auth.Storage != TokenStorageTypeFile || filepath.Base(cfg.Auth.Dir) != "taskgate" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
}

func TestApplyDefaultsKeyring(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{Storage: TokenStorageTypeKeyring}}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
	if cfg.Auth.KeyringService != credential.DefaultKeyringService {
		t.Errorf("keyring service = %q", cfg.Auth.KeyringService)
	}
	if cfg.Auth.Dir != "" {
		t.Errorf("keyring storage should not set a directory, got %q", cfg.Auth.Dir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid memory", mutate: func(c *Config) { c.Auth.Storage = TokenStorageTypeMemory }},
		{name: "valid env", mutate: func(c *Config) { c.Auth.Storage = TokenStorageTypeEnv }},
		{name: "bad base url", mutate: func(c *Config) { c.Backend.BaseURL = "not a url" }, wantErr: "BaseURL"},
		{name: "bad storage", mutate: func(c *Config) { c.Auth.Storage = "cloud" }, wantErr: "Storage"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "LogFormat"},
		{name: "bad exporter", mutate: func(c *Config) { c.Telemetry.Exporter = "kafka" }, wantErr: "Exporter"},
		{name: "bad host", mutate: func(c *Config) { c.Server.Host = "not a host!" }, wantErr: "Host"},
		{name: "file without dir", mutate: func(c *Config) { c.Auth.Dir = "" }, wantErr: "auth.dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Auth: AuthConfig{Dir: t.TempDir()}}
			if err := cfg.ApplyDefaults(); err != nil {
				t.Fatalf("ApplyDefaults: %v", err)
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestAuthConfigNewTokenStore(t *testing.T) {
	tests := []struct {
		storage  TokenStorageType
		writable bool
		wantType string
	}{
		{TokenStorageTypeFile, true, "*credential.FileStore"},
		{TokenStorageTypeEnv, false, "*credential.EnvStore"},
		{TokenStorageTypeKeyring, true, "*credential.KeyringStore"},
		{TokenStorageTypeMemory, true, "*credential.MemoryStore"},
	}
	for _, tt := range tests {
		t.Run(string(tt.storage), func(t *testing.T) {
			auth := AuthConfig{Storage: tt.storage, Dir: t.TempDir(), KeyringService: "taskgate-test"}
			store, err := auth.NewTokenStore()
			if err != nil {
				t.Fatalf("NewTokenStore: %v", err)
			}
			if got := fmt.Sprintf("%T", store); got != tt.wantType {
				t.Errorf("store type = %s, want %s", got, tt.wantType)
			}
			if auth.Writable() != tt.writable {
				t.Errorf("Writable() = %v, want %v", auth.Writable(), tt.writable)
			}
		})
	}
}
