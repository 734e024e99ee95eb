package config

import (
	"errors"
	"fmt"
	"strings"
)

// sizeVariants is the number of JOY-U2 screen-size variants.
const sizeVariants = 3

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDecode(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Catalog.Enabled && strings.TrimSpace(c.Paths.CatalogPath) == "" {
		return errors.New("paths.catalog_path must be set when catalog.enabled is true")
	}
	return nil
}

func (c *Config) validateDecode() error {
	switch c.Decode.LegacySchema {
	case "legacy", "revision":
	default:
		return fmt.Errorf("decode.legacy_schema must be legacy or revision, got %q", c.Decode.LegacySchema)
	}
	switch c.Decode.FuriganaPolicy {
	case "nearest", "last":
	default:
		return fmt.Errorf("decode.furigana_policy must be nearest or last, got %q", c.Decode.FuriganaPolicy)
	}
	if c.Decode.SizeVariant < 0 || c.Decode.SizeVariant >= sizeVariants {
		return fmt.Errorf("decode.size_variant must be between 0 and %d", sizeVariants-1)
	}
	if c.Decode.FuriganaRadius <= 0 {
		return errors.New("decode.furigana_radius must be positive")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers < 0 {
		return errors.New("batch.workers must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
