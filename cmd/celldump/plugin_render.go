package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"celldump/internal/plugin"
)

func renderPluginText(w io.Writer, p *plugin.Plugin) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Version:            %s\n", strconv.FormatFloat(float64(p.Header.Version), 'f', -1, 32))
	fmt.Fprintf(&b, "Records and groups: %d\n", p.Header.NumRecordsAndGroups)
	fmt.Fprintf(&b, "Next object ID:     %s\n", formID(p.Header.NextObjectID))
	fmt.Fprintf(&b, "Author:             %s\n", optionalString(p.Header.Author))
	fmt.Fprintf(&b, "Description:        %s\n", optionalString(p.Header.Description))
	if len(p.Header.Masters) == 0 {
		b.WriteString("Masters:            -\n")
	} else {
		fmt.Fprintf(&b, "Masters:            %s\n", strings.Join(p.Header.Masters, ", "))
	}

	fmt.Fprintf(&b, "Worlds (%d):\n", len(p.Worlds))
	for _, world := range p.Worlds {
		fmt.Fprintf(&b, "  %s %s\n", formID(world.FormID), world.EditorID)
	}

	fmt.Fprintf(&b, "Cells (%d):\n", len(p.Cells))
	for _, cell := range p.Cells {
		fmt.Fprintf(&b, "  %s %s", formID(cell.FormID), optionalString(cell.EditorID))
		if cell.X != nil || cell.Y != nil {
			fmt.Fprintf(&b, " (%s, %s)", optionalInt(cell.X), optionalInt(cell.Y))
		}
		if cell.WorldFormID != nil {
			fmt.Fprintf(&b, " world %s", formID(*cell.WorldFormID))
		} else if !cell.IsExterior() {
			b.WriteString(" interior")
		}
		if cell.IsPersistent {
			b.WriteString(" persistent")
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func pluginCellTable(p *plugin.Plugin) tableData {
	rows := make([][]string, 0, len(p.Cells))
	for _, cell := range p.Cells {
		world := "-"
		if cell.WorldFormID != nil {
			world = formID(*cell.WorldFormID)
			if w, ok := p.WorldByFormID(*cell.WorldFormID); ok {
				world += " " + w.EditorID
			}
		}
		rows = append(rows, []string{
			formID(cell.FormID),
			optionalString(cell.EditorID),
			optionalInt(cell.X),
			optionalInt(cell.Y),
			world,
			yesNo(cell.IsPersistent),
		})
	}
	return tableData{
		headers: []string{"Form ID", "Editor ID", "X", "Y", "World", "Persistent"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	}
}

func formID(id uint32) string {
	return fmt.Sprintf("0x%08X", id)
}

func optionalString(value *string) string {
	if value == nil {
		return "-"
	}
	if *value == "" {
		return `""`
	}
	return *value
}

func optionalInt(value *int32) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatInt(int64(*value), 10)
}
