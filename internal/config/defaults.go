package config

const (
	defaultConfigPath        = "~/.config/kashi/config.toml"
	defaultOutputDir         = "~/.local/share/kashi/songs"
	defaultLogDir            = "~/.local/share/kashi/logs"
	defaultCatalogPath       = "~/.local/share/kashi/catalog.db"
	defaultLegacySchema      = "legacy"
	defaultFuriganaPolicy    = "nearest"
	defaultFuriganaRadius    = 640
	defaultCartridgeOffsetMS = 200
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"

	// DocumentExtension is appended to decoded song documents.
	DocumentExtension = ".kashi.txt"

	outputDirEnv      = "KASHI_OUTPUT_DIR"
	configEnv         = "KASHI_CONFIG"
	projectConfigName = "kashi.toml"
)

// Default returns a Config populated with repository defaults. OutputDir is
// left empty so normalization can apply the environment fallback.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:      defaultLogDir,
			CatalogPath: defaultCatalogPath,
		},
		Decode: Decode{
			LegacySchema:      defaultLegacySchema,
			FuriganaRadius:    defaultFuriganaRadius,
			FuriganaPolicy:    defaultFuriganaPolicy,
			CartridgeOffsetMS: defaultCartridgeOffsetMS,
		},
		Catalog: Catalog{
			Enabled:        true,
			StoreDocuments: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
