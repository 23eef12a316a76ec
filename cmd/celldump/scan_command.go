package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"celldump/internal/api"
	"celldump/internal/services"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <dir>",
		Short: "Parse every plugin below a directory into the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqCtx := ctx.requestContext(cmd)
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			parser, err := ctx.parser(reqCtx)
			if err != nil {
				return err
			}
			cache, err := ctx.openCache(reqCtx)
			if err != nil {
				return err
			}
			defer cache.Close()

			summary, err := api.ScanDirectory(reqCtx, api.ScanRequest{
				Dir:      args[0],
				Parser:   parser,
				Cache:    cache,
				LockPath: cfg.ScanLockPath(),
				Logger:   ctx.loggerFor(reqCtx),
			})
			if err != nil {
				return err
			}

			if err := ctx.render(cmd, view{
				data: summary,
				text: func(w io.Writer, _ bool) error { return renderScanText(w, summary) },
				table: func() tableData {
					rows := make([][]string, 0, len(summary.Items)+len(summary.Failures))
					for _, item := range summary.Items {
						source := "parsed"
						if item.FromCache {
							source = "cached"
						}
						rows = append(rows, []string{item.Path, item.Fingerprint, source, strconv.Itoa(item.Worlds), strconv.Itoa(item.Cells)})
					}
					for _, failure := range summary.Failures {
						rows = append(rows, []string{failure.Path, "-", "failed", "-", "-"})
					}
					return tableData{
						headers: []string{"Plugin", "Fingerprint", "Source", "Worlds", "Cells"},
						rows:    rows,
						aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
					}
				},
			}); err != nil {
				return err
			}

			if len(summary.Failures) > 0 {
				return services.Wrap(services.ErrExternalTool, "cli", "scan",
					fmt.Sprintf("%d of %d plugins failed", len(summary.Failures), summary.Total), nil)
			}
			return nil
		},
	}
}

func renderScanText(w io.Writer, summary api.ScanSummary) error {
	if _, err := fmt.Fprintf(w, "Scanned %s: %d plugins, %d parsed, %d cached, %d failed (%s)\n",
		summary.Dir, summary.Total, summary.Parsed, summary.Cached, len(summary.Failures), summary.Elapsed.Round(1e6)); err != nil {
		return err
	}
	for _, failure := range summary.Failures {
		if _, err := fmt.Fprintf(w, "  failed %s: %s\n", failure.Path, failure.Error); err != nil {
			return err
		}
	}
	return nil
}
