package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"mercator-hq/callisto/pkg/cpl/parser"
)

// Loader handles loading pattern catalogs from the file system.
// It supports single files and directory structures with validation:
// every pattern entry must parse as CPL before the catalog is accepted.
type Loader struct {
	config *LoaderConfig
	parser *parser.Parser
}

// NewLoader creates a new catalog loader with the given configuration.
func NewLoader(config *LoaderConfig, p *parser.Parser) *Loader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	if p == nil {
		p = parser.NewParser()
	}
	return &Loader{
		config: config,
		parser: p,
	}
}

// LoadFile loads a single catalog file from the given path.
// It performs file size validation, UTF-8 validation, YAML parsing,
// and parses every pattern entry, aggregating bad entries into an
// ErrorList with file context.
func (l *Loader) LoadFile(path string) (*Catalog, error) {
	// Check if file exists and get info
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{
				FilePath: path,
				Message:  "file not found",
				Cause:    err,
			}
		}
		if os.IsPermission(err) {
			return nil, &LoadError{
				FilePath: path,
				Message:  "permission denied",
				Cause:    err,
			}
		}
		return nil, &LoadError{
			FilePath: path,
			Message:  "failed to access file",
			Cause:    err,
		}
	}

	// Check if it's a regular file
	if !fileInfo.Mode().IsRegular() {
		return nil, &LoadError{
			FilePath: path,
			Message:  "not a regular file",
		}
	}

	// Validate file size
	if fileInfo.Size() > l.config.MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", fileInfo.Size(), l.config.MaxFileSize),
		}
	}

	// Read file contents
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			FilePath: path,
			Message:  "failed to read file",
			Cause:    err,
		}
	}

	// Validate UTF-8 encoding
	if !utf8.Valid(data) {
		return nil, &LoadError{
			FilePath: path,
			Message:  "file contains invalid UTF-8 encoding",
		}
	}

	// Parse catalog YAML
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, &LoadError{
			FilePath: path,
			Message:  "YAML parsing failed",
			Cause:    err,
		}
	}

	catalog.SourceFile = path

	// Derive catalog name from the file name if the file does not set one
	if catalog.Name == "" {
		base := filepath.Base(path)
		catalog.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	// Verify every pattern entry
	if err := l.checkPatterns(&catalog); err != nil {
		return nil, err
	}

	return &catalog, nil
}

// checkPatterns verifies all entries in a catalog: names must be
// present and unique, and every pattern must parse as CPL. Bad entries
// accumulate so a catalog with three broken patterns reports all three.
func (l *Loader) checkPatterns(catalog *Catalog) error {
	errList := &ErrorList{}
	seen := make(map[string]bool, len(catalog.Patterns))

	for i := range catalog.Patterns {
		p := &catalog.Patterns[i]

		if p.Name == "" {
			errList.Add(&CatalogError{
				FilePath: catalog.SourceFile,
				Message:  fmt.Sprintf("entry %d has no name", i),
			})
			continue
		}

		if seen[p.Name] {
			errList.Add(&CatalogError{
				FilePath:    catalog.SourceFile,
				PatternName: p.Name,
				Message:     "duplicate pattern name",
			})
			continue
		}
		seen[p.Name] = true

		if _, err := l.parser.Parse(p.Pattern); err != nil {
			errList.Add(&CatalogError{
				FilePath:    catalog.SourceFile,
				PatternName: p.Name,
				Message:     "pattern does not parse",
				Cause:       err,
			})
		}
	}

	return errList.ToError()
}

// LoadDir loads all catalog files from the given directory recursively.
// It returns a list of successfully loaded catalogs and any errors
// encountered.
func (l *Loader) LoadDir(dir string) ([]*Catalog, error) {
	// Check if directory exists
	fileInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{
				FilePath: dir,
				Message:  "directory not found",
				Cause:    err,
			}
		}
		return nil, &LoadError{
			FilePath: dir,
			Message:  "failed to access directory",
			Cause:    err,
		}
	}

	if !fileInfo.IsDir() {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "not a directory",
		}
	}

	// Collect all catalog files
	catalogFiles, err := l.collectCatalogFiles(dir)
	if err != nil {
		return nil, err
	}

	if len(catalogFiles) == 0 {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "no catalog files found in directory",
		}
	}

	// Load all catalogs
	var catalogs []*Catalog
	errList := &ErrorList{}

	for _, filePath := range catalogFiles {
		catalog, err := l.LoadFile(filePath)
		if err != nil {
			errList.Add(err)
			continue
		}
		catalogs = append(catalogs, catalog)
	}

	// Return error if all files failed to load
	if len(catalogs) == 0 && errList.HasErrors() {
		return nil, errList
	}

	// Return catalogs with partial errors
	if errList.HasErrors() {
		return catalogs, errList
	}

	return catalogs, nil
}

// collectCatalogFiles collects all catalog file paths in the given
// directory. It filters by extension and skips hidden files based on
// configuration.
func (l *Loader) collectCatalogFiles(dir string) ([]string, error) {
	var catalogFiles []string
	visited := make(map[string]bool)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip hidden files/directories if configured
		if l.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Handle directories
		if d.IsDir() {
			return nil
		}

		// Handle symbolic links
		if d.Type()&fs.ModeSymlink != 0 {
			if !l.config.FollowSymlinks {
				return nil
			}

			// Resolve symlink
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return &LoadError{
					FilePath: path,
					Message:  "failed to resolve symlink",
					Cause:    err,
				}
			}

			// Detect symlink loops
			if visited[realPath] {
				return &LoadError{
					FilePath: path,
					Message:  "symlink loop detected",
				}
			}
			visited[realPath] = true

			// Check if symlink points to a file with valid extension
			if !l.hasValidExtension(realPath) {
				return nil
			}

			catalogFiles = append(catalogFiles, path)
			return nil
		}

		// Check file extension
		if !l.hasValidExtension(path) {
			return nil
		}

		catalogFiles = append(catalogFiles, path)
		return nil
	})

	if err != nil {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "failed to walk directory",
			Cause:    err,
		}
	}

	return catalogFiles, nil
}

// hasValidExtension checks if the file has a valid catalog file extension.
func (l *Loader) hasValidExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, validExt := range l.config.AllowedExtensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// IsDirectory checks if the given path is a directory.
func (l *Loader) IsDirectory(path string) (bool, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, &LoadError{
				FilePath: path,
				Message:  "path does not exist",
				Cause:    err,
			}
		}
		return false, &LoadError{
			FilePath: path,
			Message:  "failed to access path",
			Cause:    err,
		}
	}

	return fileInfo.IsDir(), nil
}
