package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/library"
)

func resetLibraryFlags() {
	libraryFlags.dir = ""
	libraryFlags.format = "text"
}

// writeCatalog writes a catalog file into dir and returns its path.
func writeCatalog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validCatalogYAML = `version: "1.0"
patterns:
  - name: octet
    pattern: "(0|1){8}"
    description: A binary octet
  - name: greeting
    pattern: "hello"
`

func TestListCatalogs(t *testing.T) {
	config.SetConfig(config.DefaultConfig())
	resetLibraryFlags()

	tmpDir := t.TempDir()
	writeCatalog(t, tmpDir, "network.yaml", validCatalogYAML)

	libraryFlags.dir = tmpDir

	err := listCatalogs(nil, []string{})
	if err != nil {
		t.Errorf("listCatalogs() with valid directory returned error: %v", err)
	}
}

func TestListCatalogsJSONFormat(t *testing.T) {
	config.SetConfig(config.DefaultConfig())
	resetLibraryFlags()

	tmpDir := t.TempDir()
	writeCatalog(t, tmpDir, "network.yaml", validCatalogYAML)

	libraryFlags.dir = tmpDir
	libraryFlags.format = "json"

	err := listCatalogs(nil, []string{})
	if err != nil {
		t.Errorf("listCatalogs() with JSON format returned error: %v", err)
	}
}

func TestShowCatalog(t *testing.T) {
	config.SetConfig(config.DefaultConfig())
	resetLibraryFlags()

	tmpDir := t.TempDir()
	writeCatalog(t, tmpDir, "network.yaml", validCatalogYAML)

	libraryFlags.dir = tmpDir

	err := showCatalog(nil, []string{"network"})
	if err != nil {
		t.Errorf("showCatalog() for existing catalog returned error: %v", err)
	}
}

func TestShowCatalogUnknown(t *testing.T) {
	config.SetConfig(config.DefaultConfig())
	resetLibraryFlags()

	tmpDir := t.TempDir()
	writeCatalog(t, tmpDir, "network.yaml", validCatalogYAML)

	libraryFlags.dir = tmpDir

	err := showCatalog(nil, []string{"netwrok"})
	if err == nil {
		t.Error("showCatalog() for unknown catalog should return error")
	}
}

func TestVerifyCatalogsValid(t *testing.T) {
	config.SetConfig(config.DefaultConfig())
	resetLibraryFlags()

	tmpDir := t.TempDir()
	writeCatalog(t, tmpDir, "network.yaml", validCatalogYAML)

	libraryFlags.dir = tmpDir

	err := verifyCatalogs(nil, []string{})
	if err != nil {
		t.Errorf("verifyCatalogs() with valid catalogs returned error: %v", err)
	}
}

func TestVerifyCatalogsBrokenPattern(t *testing.T) {
	config.SetConfig(config.DefaultConfig())
	resetLibraryFlags()

	tmpDir := t.TempDir()
	writeCatalog(t, tmpDir, "good.yaml", validCatalogYAML)
	writeCatalog(t, tmpDir, "bad.yaml", `version: "1.0"
patterns:
  - name: broken
    pattern: "(ab"
`)

	libraryFlags.dir = tmpDir

	err := verifyCatalogs(nil, []string{})
	if err == nil {
		t.Error("verifyCatalogs() with broken catalog should return error")
	}
}

func TestVerifyCatalogsEmptyDir(t *testing.T) {
	config.SetConfig(config.DefaultConfig())
	resetLibraryFlags()

	libraryFlags.dir = t.TempDir()

	err := verifyCatalogs(nil, []string{})
	if err == nil {
		t.Error("verifyCatalogs() with empty directory should return error")
	}
}

func TestFlattenLoadErrors(t *testing.T) {
	nested := &library.ErrorList{
		Errors: []error{
			errors.New("first"),
			&library.ErrorList{
				Errors: []error{
					errors.New("second"),
					errors.New("third"),
				},
			},
		},
	}

	flat := flattenLoadErrors(nested)
	if len(flat) != 3 {
		t.Errorf("flattenLoadErrors() returned %d errors, want 3", len(flat))
	}

	if got := flattenLoadErrors(nil); got != nil {
		t.Errorf("flattenLoadErrors(nil) = %v, want nil", got)
	}

	single := flattenLoadErrors(errors.New("plain"))
	if len(single) != 1 {
		t.Errorf("flattenLoadErrors(plain) returned %d errors, want 1", len(single))
	}
}

func TestShortSHA(t *testing.T) {
	tests := []struct {
		sha  string
		want string
	}{
		{"0123456789abcdef", "01234567"},
		{"abc", "abc"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := shortSHA(tt.sha); got != tt.want {
			t.Errorf("shortSHA(%q) = %q, want %q", tt.sha, got, tt.want)
		}
	}
}
