// Package nativeplugin defines the contract between celldump and the plugin
// parser it delegates binary decoding to.
//
// A Parser turns the raw bytes of a plugin file into a Plugin graph. The
// graph mirrors what the parser exposes and is considered parser-owned: its
// slices and pointers may alias parser buffers, so consumers copy out of it
// (see package plugin) instead of holding on to it.
//
// Any parser implementation can be plugged in: the exec-based adapter in
// package dumptool, or a ParserFunc stub in tests.
package nativeplugin

import (
	"context"
	"errors"
)

// Header is the parser's view of the plugin's TES4 header record.
type Header struct {
	Version             float32  `json:"version"`
	NumRecordsAndGroups int32    `json:"num_records_and_groups"`
	NextObjectID        uint32   `json:"next_object_id"`
	Author              *string  `json:"author"`
	Description         *string  `json:"description"`
	Masters             []string `json:"masters"`
}

// World is a worldspace record as reported by the parser.
type World struct {
	FormID   uint32 `json:"form_id"`
	EditorID string `json:"editor_id"`
}

// Cell is a cell record as reported by the parser.
type Cell struct {
	FormID       uint32  `json:"form_id"`
	EditorID     *string `json:"editor_id"`
	X            *int32  `json:"x"`
	Y            *int32  `json:"y"`
	WorldFormID  *uint32 `json:"world_form_id"`
	IsPersistent bool    `json:"is_persistent"`
}

// Plugin is the parser's result graph.
type Plugin struct {
	Header Header  `json:"header"`
	Worlds []World `json:"worlds"`
	Cells  []Cell  `json:"cells"`
}

// Parser decodes a complete plugin file image.
type Parser interface {
	Parse(ctx context.Context, data []byte) (*Plugin, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(ctx context.Context, data []byte) (*Plugin, error)

// Parse calls f(ctx, data).
func (f ParserFunc) Parse(ctx context.Context, data []byte) (*Plugin, error) {
	return f(ctx, data)
}

// ErrNilResult is reported when a parser returns neither a graph nor an error.
var ErrNilResult = errors.New("parser returned no plugin")

// ParseError reports a parser failure. The parser's diagnostic is kept as-is
// in Err; this package adds no taxonomy of its own.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	if e == nil || e.Err == nil {
		return "parse plugin: unknown failure"
	}
	return "parse plugin: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
