package testsupport

import (
	"testing"

	"kashi/internal/catalog"
	"kashi/internal/config"
)

// OpenCatalog opens the catalog at cfg.Paths.CatalogPath without taking the
// writer lock. The store is closed when the test finishes.
func OpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg.Paths.CatalogPath)
	if err != nil {
		t.Fatalf("open catalog %s: %v", cfg.Paths.CatalogPath, err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
