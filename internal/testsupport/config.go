package testsupport

import (
	"path/filepath"
	"testing"

	"kashi/internal/config"
)

// Option adjusts a test config. base is the temp directory that holds every
// path the config points at.
type Option func(t testing.TB, cfg *config.Config, base string)

// NewConfig returns the default config rooted in a fresh temp directory:
// songs/ for output, logs/ for logs and catalog.db for the catalog.
func NewConfig(t testing.TB, opts ...Option) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.Paths{
		OutputDir:   filepath.Join(base, "songs"),
		LogDir:      filepath.Join(base, "logs"),
		CatalogPath: filepath.Join(base, "catalog.db"),
	}
	cfg.Batch.Workers = 2
	for _, opt := range opts {
		opt(t, &cfg, base)
	}
	return &cfg
}

// WithoutCatalog turns the catalog off.
func WithoutCatalog() Option {
	return func(_ testing.TB, cfg *config.Config, _ string) {
		cfg.Catalog.Enabled = false
	}
}

// WithFontFile stores data as fonts.bin and sets paths.font_file to it.
func WithFontFile(data []byte) Option {
	return func(t testing.TB, cfg *config.Config, base string) {
		cfg.Paths.FontFile = WriteFile(t, filepath.Join(base, "fonts.bin"), data)
	}
}

// BaseDir returns the temp directory NewConfig created for cfg.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
