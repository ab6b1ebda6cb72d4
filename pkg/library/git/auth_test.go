package git

import (
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/callisto/pkg/config"
)

// TestTokenAuth_GetAuth tests token authentication.
func TestTokenAuth_GetAuth(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{
			name:    "valid token",
			token:   "ghp_validtoken123",
			wantErr: false,
		},
		{
			name:    "empty token",
			token:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := NewTokenAuth(tt.token)

			if auth.Type() != "token" {
				t.Errorf("Type() = %v, want %v", auth.Type(), "token")
			}

			_, err := auth.GetAuth()
			if (err != nil) != tt.wantErr {
				t.Errorf("GetAuth() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestSSHAuth_GetAuth tests SSH key authentication.
func TestSSHAuth_GetAuth(t *testing.T) {
	// Create temporary directory for test keys
	tmpDir := t.TempDir()

	// Create a dummy SSH key file with correct permissions
	validKeyPath := filepath.Join(tmpDir, "valid_key")
	if err := os.WriteFile(validKeyPath, []byte("dummy key content"), 0600); err != nil {
		t.Fatal(err)
	}

	// Create a key file with wrong permissions
	wrongPermsPath := filepath.Join(tmpDir, "wrong_perms_key")
	if err := os.WriteFile(wrongPermsPath, []byte("dummy key content"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		keyPath    string
		passphrase string
		wantErr    bool
	}{
		{
			name:       "empty key path",
			keyPath:    "",
			passphrase: "",
			wantErr:    true,
		},
		{
			name:       "non-existent key file",
			keyPath:    "/nonexistent/key",
			passphrase: "",
			wantErr:    true,
		},
		{
			name:       "wrong permissions",
			keyPath:    wrongPermsPath,
			passphrase: "",
			wantErr:    true,
		},
		{
			name:       "valid key path but invalid key format",
			keyPath:    validKeyPath,
			passphrase: "",
			wantErr:    true, // Will fail because it's not a real SSH key
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := NewSSHAuth(tt.keyPath, tt.passphrase)

			if auth.Type() != "ssh" {
				t.Errorf("Type() = %v, want %v", auth.Type(), "ssh")
			}

			_, err := auth.GetAuth()
			if (err != nil) != tt.wantErr {
				t.Errorf("GetAuth() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestSSHAuth_FilePermissions tests SSH key file permission checking.
func TestSSHAuth_FilePermissions(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name        string
		permissions os.FileMode
		wantErr     bool
	}{
		{
			name:        "correct permissions 0600",
			permissions: 0600,
			wantErr:     true, // Still error because not a real key
		},
		{
			name:        "correct permissions 0400",
			permissions: 0400,
			wantErr:     true, // Still error because not a real key
		},
		{
			name:        "too open 0644",
			permissions: 0644,
			wantErr:     true,
		},
		{
			name:        "too open 0666",
			permissions: 0666,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyPath := filepath.Join(tmpDir, "test_key_"+tt.name)
			if err := os.WriteFile(keyPath, []byte("dummy key"), tt.permissions); err != nil {
				t.Fatal(err)
			}

			auth := NewSSHAuth(keyPath, "")
			_, err := auth.GetAuth()

			if (err != nil) != tt.wantErr {
				t.Errorf("GetAuth() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestNoAuth_GetAuth tests no authentication.
func TestNoAuth_GetAuth(t *testing.T) {
	auth := NewNoAuth()

	if auth.Type() != "none" {
		t.Errorf("Type() = %v, want %v", auth.Type(), "none")
	}

	method, err := auth.GetAuth()
	if err != nil {
		t.Errorf("GetAuth() error = %v, want nil", err)
	}
	if method != nil {
		t.Errorf("GetAuth() = %v, want nil", method)
	}
}

// TestNewAuthProvider tests that the provider is inferred from which
// credential fields are set.
func TestNewAuthProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.GitConfig
		wantType string
		wantErr  bool
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: true,
		},
		{
			name: "token set",
			cfg: &config.GitConfig{
				Token: "ghp_validtoken",
			},
			wantType: "token",
		},
		{
			name: "ssh key path set",
			cfg: &config.GitConfig{
				SSHKeyPath: "/path/to/key",
			},
			wantType: "ssh",
		},
		{
			name:     "no credentials",
			cfg:      &config.GitConfig{},
			wantType: "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewAuthProvider(tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Errorf("NewAuthProvider() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if err == nil {
				if provider.Type() != tt.wantType {
					t.Errorf("NewAuthProvider().Type() = %v, want %v", provider.Type(), tt.wantType)
				}
			}
		})
	}
}

// TestAuthProvider_Interface tests that all auth types implement AuthProvider.
func TestAuthProvider_Interface(t *testing.T) {
	var _ AuthProvider = (*TokenAuth)(nil)
	var _ AuthProvider = (*SSHAuth)(nil)
	var _ AuthProvider = (*NoAuth)(nil)
}
