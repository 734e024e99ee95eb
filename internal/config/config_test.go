package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"kashi/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("KASHI_OUTPUT_DIR", "")
	t.Setenv("KASHI_CONFIG", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, ".local", "share", "kashi", "songs")
	if cfg.Paths.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	if cfg.Paths.CatalogPath != filepath.Join(tempHome, ".local", "share", "kashi", "catalog.db") {
		t.Fatalf("unexpected catalog path: %q", cfg.Paths.CatalogPath)
	}
	if cfg.Decode.LegacySchema != "legacy" || cfg.Decode.FuriganaPolicy != "nearest" {
		t.Fatalf("unexpected decode defaults: %+v", cfg.Decode)
	}
	if cfg.Decode.FuriganaRadius != 640 || cfg.Decode.CartridgeOffsetMS != 200 || cfg.Decode.LegacyOffsetMS != 0 {
		t.Fatalf("unexpected decode defaults: %+v", cfg.Decode)
	}
	if !cfg.Catalog.Enabled || !cfg.Catalog.StoreDocuments {
		t.Fatal("expected catalog enabled by default")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.CatalogPath)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestOutputDirEnvFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	envDir := filepath.Join(t.TempDir(), "from-env")
	t.Setenv("KASHI_OUTPUT_DIR", envDir)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.OutputDir != envDir {
		t.Fatalf("expected output dir from env, got %q", cfg.Paths.OutputDir)
	}

	configPath := filepath.Join(t.TempDir(), "kashi.toml")
	fileDir := filepath.Join(t.TempDir(), "from-file")
	if err := os.WriteFile(configPath, []byte("[paths]\noutput_dir = \""+fileDir+"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err = config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.OutputDir != fileDir {
		t.Fatalf("file value should win over env, got %q", cfg.Paths.OutputDir)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "kashi.toml")

	type payload struct {
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		Decode struct {
			LegacySchema   string `toml:"legacy_schema"`
			SizeVariant    int    `toml:"size_variant"`
			FuriganaPolicy string `toml:"furigana_policy"`
			RejectOverlaps bool   `toml:"reject_overlaps"`
		} `toml:"decode"`
		Batch struct {
			Workers    int      `toml:"workers"`
			Extensions []string `toml:"extensions"`
		} `toml:"batch"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.OutputDir = filepath.Join(tempDir, "out")
	custom.Decode.LegacySchema = " Revision "
	custom.Decode.SizeVariant = 2
	custom.Decode.FuriganaPolicy = " LAST"
	custom.Decode.RejectOverlaps = true
	custom.Batch.Workers = 3
	custom.Batch.Extensions = []string{"BIN", ".ujk", "bin", " "}
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Decode.LegacySchema != "revision" || cfg.Decode.FuriganaPolicy != "last" {
		t.Fatalf("enum values not normalized: %+v", cfg.Decode)
	}
	if cfg.Decode.SizeVariant != 2 || !cfg.Decode.RejectOverlaps {
		t.Fatalf("unexpected decode settings: %+v", cfg.Decode)
	}
	if cfg.Batch.Workers != 3 {
		t.Fatalf("unexpected workers: %d", cfg.Batch.Workers)
	}
	if strings.Join(cfg.Batch.Extensions, ",") != ".bin,.ujk" {
		t.Fatalf("unexpected extensions: %v", cfg.Batch.Extensions)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	if !cfg.MatchesExtension("/a/SONG.BIN") || cfg.MatchesExtension("/a/song.txt") {
		t.Fatal("extension filter mismatch")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "kashi.toml")
	if err := os.WriteFile(configPath, []byte("[decode]\nradius = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.WriteSample(path, false); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path, false); !errors.Is(err, config.ErrSampleExists) {
		t.Fatalf("expected ErrSampleExists, got %v", err)
	}
	if err := config.WriteSample(path, true); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Decode.CartridgeOffsetMS != 200 || cfg.Decode.FuriganaPolicy != "nearest" {
		t.Fatalf("unexpected sample decode section: %+v", cfg.Decode)
	}

	t.Setenv("HOME", t.TempDir())
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.Paths.OutputDir = "/tmp/out"
		return cfg
	}
	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	tests := map[string]func(*config.Config){
		"schema":       func(c *config.Config) { c.Decode.LegacySchema = "cartridge" },
		"policy":       func(c *config.Config) { c.Decode.FuriganaPolicy = "both" },
		"size variant": func(c *config.Config) { c.Decode.SizeVariant = 3 },
		"radius":       func(c *config.Config) { c.Decode.FuriganaRadius = -5 },
		"workers":      func(c *config.Config) { c.Batch.Workers = -1 },
		"log level":    func(c *config.Config) { c.Logging.Level = "trace" },
		"output dir":   func(c *config.Config) { c.Paths.OutputDir = "" },
		"catalog path": func(c *config.Config) { c.Paths.CatalogPath = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = "/out"
	if got := cfg.OutputPath("/in/song.ujk"); got != filepath.Join("/out", "song"+config.DocumentExtension) {
		t.Fatalf("OutputPath = %q", got)
	}
}

func TestDocumentPathKeepsSubdirectories(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = "/out"
	first := cfg.DocumentPath(filepath.Join("disc1", "track01.joy"))
	second := cfg.DocumentPath(filepath.Join("disc2", "track01.joy"))
	if first == second {
		t.Fatalf("sibling inputs share %q", first)
	}
	if want := filepath.Join("/out", "disc1", "track01"+config.DocumentExtension); first != want {
		t.Fatalf("DocumentPath = %q, want %q", first, want)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "env.toml")
	if err := os.WriteFile(path, []byte("[batch]\nworkers = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("KASHI_CONFIG", path)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if resolved != path || !exists {
		t.Fatalf("resolved %q exists=%v, want %q", resolved, exists, path)
	}
	if cfg.Batch.Workers != 3 {
		t.Fatalf("workers = %d, want 3", cfg.Batch.Workers)
	}
}

func TestLoadReportsSyntaxPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[decode]\nsize_variant = = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("expected positioned error, got %v", err)
	}
}
