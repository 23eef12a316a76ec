package plugin

import (
	"strings"

	"celldump/internal/nativeplugin"
)

// Project converts a parser result into a Plugin. A nil input yields the
// zero Plugin.
func Project(native *nativeplugin.Plugin) Plugin {
	if native == nil {
		return Plugin{}
	}
	out := Plugin{
		Header: ProjectHeader(native.Header),
		Worlds: make([]World, 0, len(native.Worlds)),
		Cells:  make([]Cell, 0, len(native.Cells)),
	}
	for _, world := range native.Worlds {
		out.Worlds = append(out.Worlds, ProjectWorld(world))
	}
	for _, cell := range native.Cells {
		out.Cells = append(out.Cells, ProjectCell(cell))
	}
	return out
}

// ProjectHeader converts the parser's header.
func ProjectHeader(h nativeplugin.Header) Header {
	masters := make([]string, 0, len(h.Masters))
	for _, master := range h.Masters {
		masters = append(masters, strings.Clone(master))
	}
	return Header{
		Version:             h.Version,
		NumRecordsAndGroups: h.NumRecordsAndGroups,
		NextObjectID:        h.NextObjectID,
		Author:              cloneString(h.Author),
		Description:         cloneString(h.Description),
		Masters:             masters,
	}
}

// ProjectWorld converts a parser world record.
func ProjectWorld(w nativeplugin.World) World {
	return World{
		FormID:   w.FormID,
		EditorID: strings.Clone(w.EditorID),
	}
}

// ProjectCell converts a parser cell record.
func ProjectCell(c nativeplugin.Cell) Cell {
	return Cell{
		FormID:       c.FormID,
		EditorID:     cloneString(c.EditorID),
		X:            clonePtr(c.X),
		Y:            clonePtr(c.Y),
		WorldFormID:  clonePtr(c.WorldFormID),
		IsPersistent: c.IsPersistent,
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.Clone(*s)
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
