package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"celldump/internal/preflight"
	"celldump/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the parser binary and cache paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(ctx.requestContext(cmd), cfg)

			if err := ctx.render(cmd, view{
				data: results,
				text: func(w io.Writer, colorize bool) error {
					for _, result := range results {
						if _, err := fmt.Fprintln(w, renderStatusLine(result.Name, result.Passed, result.Detail, colorize)); err != nil {
							return err
						}
					}
					return nil
				},
				table: func() tableData {
					rows := make([][]string, 0, len(results))
					for _, result := range results {
						status := "OK"
						if !result.Passed {
							status = "FAIL"
						}
						rows = append(rows, []string{result.Name, status, result.Detail})
					}
					return tableData{headers: []string{"Check", "Status", "Detail"}, rows: rows}
				},
			}); err != nil {
				return err
			}

			if !preflight.Passed(results) {
				return services.Wrap(services.ErrConfiguration, "cli", "doctor", "", errors.New("one or more checks failed"))
			}
			return nil
		},
	}
}
