package plugin

// Header describes the plugin file header.
//
// NumRecordsAndGroups is echoed from the file as stored. The format tolerates
// stale values there and nothing in celldump recomputes it.
type Header struct {
	Version             float32  `json:"version" yaml:"version" cbor:"version"`
	NumRecordsAndGroups int32    `json:"num_records_and_groups" yaml:"num_records_and_groups" cbor:"num_records_and_groups"`
	NextObjectID        uint32   `json:"next_object_id" yaml:"next_object_id" cbor:"next_object_id"`
	Author              *string  `json:"author" yaml:"author" cbor:"author"`
	Description         *string  `json:"description" yaml:"description" cbor:"description"`
	Masters             []string `json:"masters" yaml:"masters" cbor:"masters"`
}

// World is a worldspace. EditorID is always present for worlds.
type World struct {
	FormID   uint32 `json:"form_id" yaml:"form_id" cbor:"form_id"`
	EditorID string `json:"editor_id" yaml:"editor_id" cbor:"editor_id"`
}

// Cell is an interior or exterior cell.
//
// WorldFormID is a weak reference by form ID; it is not checked against the
// plugin's worlds, which may not contain the target when it lives in a master.
type Cell struct {
	FormID       uint32  `json:"form_id" yaml:"form_id" cbor:"form_id"`
	EditorID     *string `json:"editor_id" yaml:"editor_id" cbor:"editor_id"`
	X            *int32  `json:"x" yaml:"x" cbor:"x"`
	Y            *int32  `json:"y" yaml:"y" cbor:"y"`
	WorldFormID  *uint32 `json:"world_form_id" yaml:"world_form_id" cbor:"world_form_id"`
	IsPersistent bool    `json:"is_persistent" yaml:"is_persistent" cbor:"is_persistent"`
}

// Plugin is the projected plugin. Worlds and Cells keep parser order, which
// is stable but not sorted.
type Plugin struct {
	Header Header  `json:"header" yaml:"header" cbor:"header"`
	Worlds []World `json:"worlds" yaml:"worlds" cbor:"worlds"`
	Cells  []Cell  `json:"cells" yaml:"cells" cbor:"cells"`
}

// WorldByFormID returns the first world with the given form ID.
func (p *Plugin) WorldByFormID(formID uint32) (World, bool) {
	if p == nil {
		return World{}, false
	}
	for _, world := range p.Worlds {
		if world.FormID == formID {
			return world, true
		}
	}
	return World{}, false
}

// IsExterior reports whether the cell has grid coordinates.
func (c Cell) IsExterior() bool {
	return c.X != nil && c.Y != nil
}

// InWorld reports whether the cell references the given worldspace.
func (c Cell) InWorld(formID uint32) bool {
	return c.WorldFormID != nil && *c.WorldFormID == formID
}
