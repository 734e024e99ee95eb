package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"kashi/internal/config"
	"kashi/internal/decode"
	"kashi/internal/furigana"
	"kashi/internal/logging"
	"kashi/internal/record"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// decodeOptions translates the [decode] and [paths] config sections.
func (c *commandContext) decodeOptions() (decode.Options, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return decode.Options{}, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return decode.Options{}, err
	}
	opts, err := decodeOptionsFromConfig(cfg)
	if err != nil {
		return decode.Options{}, err
	}
	opts.Logger = logger
	return opts, nil
}

func decodeOptionsFromConfig(cfg *config.Config) (decode.Options, error) {
	opts := decode.DefaultOptions()

	schema, err := record.ParseSchema(cfg.Decode.LegacySchema)
	if err != nil {
		return opts, fmt.Errorf("decode.legacy_schema: %w", err)
	}
	policy, err := furigana.ParsePolicy(cfg.Decode.FuriganaPolicy)
	if err != nil {
		return opts, fmt.Errorf("decode.furigana_policy: %w", err)
	}

	opts.Schema = schema
	opts.Policy = policy
	opts.SizeVariant = cfg.Decode.SizeVariant
	opts.Radius = cfg.Decode.FuriganaRadius
	opts.RejectOverlaps = cfg.Decode.RejectOverlaps
	opts.LegacyOffset = time.Duration(cfg.Decode.LegacyOffsetMS) * time.Millisecond
	opts.CartridgeOffset = time.Duration(cfg.Decode.CartridgeOffsetMS) * time.Millisecond

	if cfg.Paths.FontFile != "" {
		fonts, err := os.ReadFile(cfg.Paths.FontFile)
		if err != nil {
			return opts, fmt.Errorf("read font file: %w", err)
		}
		opts.Fonts = fonts
	}
	return opts, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
