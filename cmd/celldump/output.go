package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatText  = "text"
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatCBOR  = "cbor"
)

// cborEncMode uses core deterministic encoding so output is byte-stable.
var cborEncMode cbor.EncMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("celldump: CBOR encoder initialization failed: " + err.Error())
	}
}

// view describes one command result. data feeds the structured encoders;
// text and table render for humans and fall back to each other.
type view struct {
	data  any
	text  func(w io.Writer, colorize bool) error
	table func() tableData
}

type tableData struct {
	headers []string
	rows    [][]string
	aligns  []columnAlignment
}

func (c *commandContext) render(cmd *cobra.Command, v view) error {
	format, err := c.outputFormat()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch format {
	case formatJSON:
		return writeJSON(out, v.data)
	case formatYAML:
		return writeYAML(out, v.data)
	case formatCBOR:
		return writeCBOR(out, v.data)
	case formatTable:
		if v.table != nil {
			return writeTable(out, v.table())
		}
	}
	if v.text != nil {
		return v.text(out, shouldColorize(out))
	}
	if v.table != nil {
		return writeTable(out, v.table())
	}
	return writeJSON(out, v.data)
}

// writeJSON encodes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func writeCBOR(w io.Writer, v any) error {
	data, err := cborEncMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cbor: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func writeTable(w io.Writer, t tableData) error {
	rendered := renderTable(t.headers, t.rows, t.aligns)
	if rendered == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, rendered)
	return err
}
