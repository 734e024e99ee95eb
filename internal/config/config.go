package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"kashi/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output and state locations.
type Paths struct {
	OutputDir   string `toml:"output_dir"`
	LogDir      string `toml:"log_dir"`
	CatalogPath string `toml:"catalog_path"`
	// FontFile is used for bare JOY-U2 input that has no container fonts.
	FontFile string `toml:"font_file"`
}

// Decode contains pipeline tuning.
type Decode struct {
	LegacySchema      string `toml:"legacy_schema"`
	SizeVariant       int    `toml:"size_variant"`
	FuriganaRadius    int    `toml:"furigana_radius"`
	FuriganaPolicy    string `toml:"furigana_policy"`
	RejectOverlaps    bool   `toml:"reject_overlaps"`
	LegacyOffsetMS    int    `toml:"legacy_offset_ms"`
	CartridgeOffsetMS int    `toml:"cartridge_offset_ms"`
}

// Batch contains settings for multi-file runs.
type Batch struct {
	// Workers bounds concurrent decodes; 0 uses one per CPU.
	Workers int `toml:"workers"`
	// Extensions filters files found when a directory is given.
	Extensions []string `toml:"extensions"`
}

// Catalog contains settings for the song index.
type Catalog struct {
	Enabled        bool `toml:"enabled"`
	StoreDocuments bool `toml:"store_documents"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for kashi.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Decode  Decode  `toml:"decode"`
	Batch   Batch   `toml:"batch"`
	Catalog Catalog `toml:"catalog"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the per-user configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigPath)
}

// Load reads the configuration at path, or the first file found in the
// discovery order when path is empty: $KASHI_CONFIG, the per-user file, then
// kashi.toml in the working directory. A missing file yields defaults. Load
// returns the config, the file it was read from and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	source, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		if err := decodeFile(source, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, source, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("config %s has unknown keys:\n%s", path, strict.String())
		}
		var syntax *toml.DecodeError
		if errors.As(err, &syntax) {
			row, col := syntax.Position()
			return fmt.Errorf("config %s:%d:%d: %w", path, row, col, err)
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func locate(explicit string) (string, bool, error) {
	if explicit == "" {
		explicit = strings.TrimSpace(os.Getenv(configEnv))
	}
	if explicit != "" {
		path, err := ExpandPath(explicit)
		if err != nil {
			return "", false, err
		}
		exists, err := isFile(path)
		return path, exists, err
	}

	user, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	local, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{user, local} {
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return user, false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	case info.IsDir():
		return false, fmt.Errorf("config path %s is a directory", path)
	}
	return true, nil
}

// EnsureDirectories creates the output and log directories and the catalog's
// parent directory when the catalog is enabled.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, c.Paths.LogDir}
	if c.Catalog.Enabled {
		dirs = append(dirs, filepath.Dir(c.Paths.CatalogPath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// OutputPath returns where the document for input is written when it is
// decoded on its own.
func (c *Config) OutputPath(input string) string {
	return c.DocumentPath(filepath.Base(input))
}

// DocumentPath maps rel, an input path relative to a scanned directory, to
// its document under the output directory. Subdirectories are kept and the
// input extension is replaced with DocumentExtension.
func (c *Config) DocumentPath(rel string) string {
	rel = filepath.Clean(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(c.Paths.OutputDir, rel+DocumentExtension)
}

// MatchesExtension reports whether path passes the batch extension filter.
// An empty filter matches everything.
func (c *Config) MatchesExtension(path string) bool {
	if len(c.Batch.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(c.Batch.Extensions, ext)
}

// ExpandPath resolves a leading ~ to the home directory and makes the result
// absolute. The empty string is returned unchanged.
func ExpandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", p, err)
	}
	return abs, nil
}

// ErrSampleExists is returned by WriteSample when the target is present and
// overwrite is false.
var ErrSampleExists = errors.New("config file already exists")

// WriteSample writes the annotated sample configuration to path.
func WriteSample(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w at %s", ErrSampleExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("check config path: %w", err)
		}
	}
	return fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644)
}
