package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateParser(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateParser() error {
	if strings.TrimSpace(c.Parser.Binary) == "" {
		return fmt.Errorf("parser.binary must be set (or export %s)", parserBinaryEnv)
	}
	if c.Parser.TimeoutSeconds <= 0 {
		return errors.New("parser.timeout_seconds must be positive")
	}
	if c.Parser.TimeoutSeconds > maxParserTimeoutSeconds {
		return fmt.Errorf("parser.timeout_seconds must be at most %d", maxParserTimeoutSeconds)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Path) == "" {
		return errors.New("cache.path must be set when cache.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q (want debug, info, warn or error)", c.Logging.Level)
	}
	return nil
}
