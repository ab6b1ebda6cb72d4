package library

// Pattern is a single named pattern in a catalog.
type Pattern struct {
	// Name is the unique pattern name within its catalog.
	Name string `yaml:"name"`

	// Pattern is the CPL pattern text.
	Pattern string `yaml:"pattern"`

	// Description explains what the pattern matches.
	Description string `yaml:"description,omitempty"`

	// Tags are free-form labels for grouping patterns.
	Tags []string `yaml:"tags,omitempty"`
}

// Catalog is a named collection of patterns loaded from one YAML file.
type Catalog struct {
	// Version is the catalog format version.
	Version string `yaml:"version"`

	// Name is the unique catalog name. If empty in the file, the
	// loader derives it from the file name.
	Name string `yaml:"name"`

	// Patterns is the list of patterns in this catalog.
	Patterns []Pattern `yaml:"patterns"`

	// SourceFile is the path the catalog was loaded from.
	// Set by the loader, never read from the file.
	SourceFile string `yaml:"-"`
}

// FindPattern returns the pattern with the given name, if present.
func (c *Catalog) FindPattern(name string) (*Pattern, bool) {
	for i := range c.Patterns {
		if c.Patterns[i].Name == name {
			return &c.Patterns[i], true
		}
	}
	return nil, false
}

// PatternNames returns the names of all patterns in the catalog,
// in file order.
func (c *Catalog) PatternNames() []string {
	names := make([]string, 0, len(c.Patterns))
	for _, p := range c.Patterns {
		names = append(names, p.Name)
	}
	return names
}

// LoaderConfig contains configuration for the catalog loader.
type LoaderConfig struct {
	// MaxFileSize is the maximum catalog file size in bytes (default: 10MB)
	MaxFileSize int64

	// AllowedExtensions is the list of allowed file extensions (default: [".yaml", ".yml"])
	AllowedExtensions []string

	// FollowSymlinks controls whether to follow symbolic links (default: true)
	FollowSymlinks bool

	// SkipHidden controls whether to skip hidden files/directories (default: true)
	SkipHidden bool
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		MaxFileSize:       10 * 1024 * 1024, // 10MB
		AllowedExtensions: []string{".yaml", ".yml"},
		FollowSymlinks:    true,
		SkipHidden:        true,
	}
}
