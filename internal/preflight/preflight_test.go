package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kashi/internal/catalog"
	"kashi/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCreatableDirectory(t *testing.T) {
	base := t.TempDir()
	result := CheckCreatableDirectory("out", filepath.Join(base, "a", "b"))
	if !result.Passed || !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("expected creatable, got %+v", result)
	}

	file := filepath.Join(base, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckCreatableDirectory("out", filepath.Join(file, "sub")); result.Passed {
		t.Fatal("expected failure below a regular file")
	}
	if result := CheckCreatableDirectory("out", ""); result.Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestCheckReadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fonts.bin")
	if err := os.WriteFile(path, []byte("1234"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckReadableFile("font", path); !result.Passed || !strings.Contains(result.Detail, "4 bytes") {
		t.Fatalf("expected pass, got %+v", result)
	}
	if result := CheckReadableFile("font", dir); result.Passed {
		t.Fatal("expected failure for directory")
	}
	if result := CheckReadableFile("font", filepath.Join(dir, "missing")); result.Passed {
		t.Fatal("expected failure for missing file")
	}
}

func TestCheckCatalogLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	if result := CheckCatalog(path); !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}

	store, err := catalog.OpenWriter(path)
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}
	defer store.Close()

	result := CheckCatalog(path)
	if result.Passed || !strings.Contains(result.Detail, "locked") {
		t.Fatalf("expected lock failure, got %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "songs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CatalogPath = filepath.Join(base, "catalog.db")
	cfg.Paths.FontFile = filepath.Join(base, "missing-fonts.bin")

	results := RunAll(&cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d: %+v", len(results), results)
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Font file" {
		t.Fatalf("unexpected failures %+v", failed)
	}

	cfg.Catalog.Enabled = false
	cfg.Paths.FontFile = ""
	if got := len(RunAll(&cfg)); got != 2 {
		t.Fatalf("expected 2 results, got %d", got)
	}
	if RunAll(nil) != nil {
		t.Fatal("nil config should yield no results")
	}
}
