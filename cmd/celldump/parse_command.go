package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"celldump/internal/api"
	"celldump/internal/fpcache"
	"celldump/internal/logging"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a plugin and print its worlds and cells",
		Long:  "Parse a plugin file (or standard input when the file is \"-\") through the configured skyrim-cell-dump binary.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqCtx := ctx.requestContext(cmd)
			logger := ctx.loggerFor(reqCtx)

			parser, err := ctx.parser(reqCtx)
			if err != nil {
				return err
			}
			req := api.ParseFileRequest{Path: args[0], Parser: parser, Logger: logger}
			if args[0] == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				req.Path = ""
				req.Data = data
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var cache *fpcache.Cache
			if cfg.Cache.Enabled && !noCache {
				cache, err = ctx.openCache(reqCtx)
				if err != nil {
					logging.WarnWithContext(logger, "fingerprint cache unavailable", "fpcache_open_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "plugin parsed without cache"),
					)
				} else {
					defer cache.Close()
					req.Cache = cache
				}
			}

			result, err := api.ParseFile(reqCtx, req)
			if err != nil {
				return err
			}

			return ctx.render(cmd, view{
				data: result,
				text: func(w io.Writer, _ bool) error {
					source := "parsed"
					if result.FromCache {
						source = "cached"
					}
					label := result.Path
					if strings.TrimSpace(label) == "" {
						label = "<stdin>"
					}
					if _, err := fmt.Fprintf(w, "Plugin:             %s\nFingerprint:        %s (%s)\n", label, result.Fingerprint, source); err != nil {
						return err
					}
					return renderPluginText(w, result.Plugin)
				},
				table: func() tableData { return pluginCellTable(result.Plugin) },
			})
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the fingerprint cache")
	return cmd
}
