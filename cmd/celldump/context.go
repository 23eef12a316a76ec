package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"celldump/internal/api"
	"celldump/internal/config"
	"celldump/internal/dumptool"
	"celldump/internal/fpcache"
	"celldump/internal/logging"
	"celldump/internal/services"
)

type commandContext struct {
	configFlag   *string
	formatFlag   *string
	logLevelFlag *string

	requestID string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, formatFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		formatFlag:   formatFlag,
		logLevelFlag: logLevelFlag,
		requestID:    uuid.NewString(),
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
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = services.Wrap(services.ErrConfiguration, "cli", "log level", "", err)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loggerFor returns the invocation logger tagged with the correlation id.
func (c *commandContext) loggerFor(ctx context.Context) *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.config)
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return logging.WithContext(ctx, c.logger)
}

// requestContext derives the per-invocation context from the command.
func (c *commandContext) requestContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return services.WithRequestID(ctx, c.requestID)
}

func (c *commandContext) openCache(ctx context.Context) (*fpcache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	cache, err := api.OpenCache(cfg, c.loggerFor(ctx))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "open cache", "", err)
	}
	return cache, nil
}

func (c *commandContext) parser(ctx context.Context) (*dumptool.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return api.NewParser(cfg, c.loggerFor(ctx))
}

func (c *commandContext) outputFormat() (string, error) {
	format := formatText
	if c.formatFlag != nil && strings.TrimSpace(*c.formatFlag) != "" {
		format = strings.ToLower(strings.TrimSpace(*c.formatFlag))
	}
	switch format {
	case formatText, formatTable, formatJSON, formatYAML, formatCBOR:
		return format, nil
	default:
		return "", services.Wrap(services.ErrValidation, "cli", "format",
			fmt.Sprintf("unsupported output format %q", format), nil)
	}
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
