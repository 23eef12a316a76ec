package config

const (
	defaultConfigPath           = "~/.config/celldump/config.toml"
	defaultParserBinary         = "skyrim-cell-dump"
	defaultParserTimeoutSeconds = 60
	defaultCacheEnabled         = true
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	parserBinaryEnv             = "CELLDUMP_PARSER_BINARY"
	maxParserTimeoutSeconds     = 3600
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Parser: Parser{
			Binary:         defaultParserBinary,
			TimeoutSeconds: defaultParserTimeoutSeconds,
		},
		Cache: Cache{
			Enabled: defaultCacheEnabled,
			Path:    defaultCachePath(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
