package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"celldump/internal/api"
	"celldump/internal/contenthash"
	"celldump/internal/services"
)

func newHashCommand(ctx *commandContext) *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:         "hash [file...]",
		Short:       "Print the content fingerprint of plugin files",
		Long:        "Print the base-36 SeaHash fingerprint and its decimal value for each file, or for standard input with --stdin.",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var results []api.HashResult
			switch {
			case fromStdin && len(args) > 0:
				return services.Wrap(services.ErrValidation, "cli", "hash", "--stdin cannot be combined with file arguments", nil)
			case fromStdin:
				counter := &countingReader{r: cmd.InOrStdin()}
				sum, err := contenthash.SumReader(counter)
				if err != nil {
					return err
				}
				results = []api.HashResult{{
					Path:        "-",
					Fingerprint: contenthash.Format(sum),
					Sum:         sum,
					SizeBytes:   counter.n,
				}}
			case len(args) == 0:
				return errors.New("hash requires at least one file or --stdin")
			default:
				var err error
				results, err = api.HashFiles(args)
				if err != nil {
					return err
				}
			}

			return ctx.render(cmd, view{
				data: results,
				text: func(w io.Writer, _ bool) error {
					for _, r := range results {
						if _, err := fmt.Fprintf(w, "%s  %d  %s\n", r.Fingerprint, r.Sum, r.Path); err != nil {
							return err
						}
					}
					return nil
				},
				table: func() tableData {
					rows := make([][]string, 0, len(results))
					for _, r := range results {
						rows = append(rows, []string{r.Path, r.Fingerprint, strconv.FormatUint(r.Sum, 10), strconv.FormatInt(r.SizeBytes, 10)})
					}
					return tableData{
						headers: []string{"File", "Fingerprint", "SeaHash", "Bytes"},
						rows:    rows,
						aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
					}
				},
			})
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Hash standard input instead of files")
	return cmd
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
