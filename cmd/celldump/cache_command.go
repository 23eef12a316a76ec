package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"celldump/internal/fpcache"
	"celldump/internal/plugin"
	"celldump/internal/services"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the fingerprint cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))

	return cacheCmd
}

func (c *commandContext) withCache(cmd *cobra.Command, fn func(*fpcache.Cache) error) error {
	cache, err := c.openCache(c.requestContext(cmd))
	if err != nil {
		return err
	}
	defer cache.Close()
	return fn(cache)
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached plugins, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(cache *fpcache.Cache) error {
				entries, err := cache.List(ctx.requestContext(cmd))
				if err != nil {
					return err
				}
				if entries == nil {
					entries = []fpcache.Entry{}
				}
				table := func() tableData { return cacheEntryTable(entries) }
				return ctx.render(cmd, view{
					data: entries,
					text: func(w io.Writer, _ bool) error {
						if len(entries) == 0 {
							_, err := fmt.Fprintln(w, "Cache is empty")
							return err
						}
						return writeTable(w, table())
					},
					table: table,
				})
			})
		},
	}
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <fingerprint>",
		Short: "Show a cached plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(cache *fpcache.Cache) error {
				entry, p, ok, err := cache.Lookup(ctx.requestContext(cmd), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return services.Wrap(services.ErrNotFound, "cli", "cache show", "no cache entry for "+args[0], nil)
				}
				payload := struct {
					Entry  fpcache.Entry  `json:"entry" yaml:"entry" cbor:"entry"`
					Plugin *plugin.Plugin `json:"plugin" yaml:"plugin" cbor:"plugin"`
				}{entry, p}
				return ctx.render(cmd, view{
					data: payload,
					text: func(w io.Writer, _ bool) error {
						if _, err := fmt.Fprintf(w, "Fingerprint:        %s (%s)\nSource:             %s\nCached at:          %s\n",
							entry.Fingerprint, entry.Algorithm, fallback(entry.SourcePath, "-"), entry.CachedAt.Format(time.RFC3339)); err != nil {
							return err
						}
						return renderPluginText(w, p)
					},
					table: func() tableData { return pluginCellTable(p) },
				})
			})
		},
	}
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <fingerprint>...",
		Short: "Remove cache entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(cache *fpcache.Cache) error {
				out := cmd.OutOrStdout()
				var errs []error
				for _, fp := range args {
					if err := cache.Remove(ctx.requestContext(cmd), fp); err != nil {
						errs = append(errs, err)
						continue
					}
					fmt.Fprintf(out, "Removed %s\n", strings.ToLower(strings.TrimSpace(fp)))
				}
				return errors.Join(errs...)
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(cache *fpcache.Cache) error {
				removed, err := cache.Clear(ctx.requestContext(cmd))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cache entries\n", removed)
				return nil
			})
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove cache entries older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(cache *fpcache.Cache) error {
				removed, err := cache.Prune(ctx.requestContext(cmd), olderThan)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d cache entries older than %s\n", removed, olderThan)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Minimum entry age to prune (e.g. 720h)")
	_ = cmd.MarkFlagRequired("older-than")
	return cmd
}

func cacheEntryTable(entries []fpcache.Entry) tableData {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		lastHit := "-"
		if !entry.LastHitAt.IsZero() {
			lastHit = entry.LastHitAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			entry.Fingerprint,
			fallback(entry.SourcePath, "-"),
			strconv.FormatInt(entry.SizeBytes, 10),
			strconv.Itoa(entry.WorldCount),
			strconv.Itoa(entry.CellCount),
			entry.CachedAt.Format(time.RFC3339),
			lastHit,
		})
	}
	return tableData{
		headers: []string{"Fingerprint", "Source", "Bytes", "Worlds", "Cells", "Cached", "Last hit"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	}
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
