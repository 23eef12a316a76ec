package celldump

import (
	"context"
	"errors"

	"celldump/internal/contenthash"
	"celldump/internal/nativeplugin"
	"celldump/internal/plugin"
	"celldump/internal/services"
)

type (
	// Plugin is the projected plugin handed to callers.
	Plugin = plugin.Plugin
	// PluginHeader is the projected file header.
	PluginHeader = plugin.Header
	// World is a projected worldspace.
	World = plugin.World
	// Cell is a projected cell.
	Cell = plugin.Cell

	// NativePlugin is the graph a Parser returns.
	NativePlugin = nativeplugin.Plugin
	// Parser decodes plugin bytes into a NativePlugin.
	Parser = nativeplugin.Parser
	// ParserFunc adapts a function to Parser.
	ParserFunc = nativeplugin.ParserFunc
	// ParseError wraps a parser failure unchanged.
	ParseError = nativeplugin.ParseError
)

// ErrNilParser is returned by ParsePlugin when no parser is supplied.
var ErrNilParser = services.Wrap(services.ErrConfiguration, "celldump", "parse", "parser is nil", nil)

// ParsePlugin parses data with parser and returns the projected plugin.
//
// Any parser failure is returned as a *ParseError whose Err is the parser's
// error, so errors.Is and errors.As reach the original diagnostic.
func ParsePlugin(ctx context.Context, parser Parser, data []byte) (*Plugin, error) {
	if parser == nil {
		return nil, ErrNilParser
	}
	native, err := parser.Parse(ctx, data)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			return nil, err
		}
		return nil, &ParseError{Err: err}
	}
	if native == nil {
		return nil, &ParseError{Err: nativeplugin.ErrNilResult}
	}
	projected := plugin.Project(native)
	return &projected, nil
}

// HashPlugin returns the 64-bit SeaHash of data. It never fails.
func HashPlugin(data []byte) uint64 {
	return contenthash.Sum64(data)
}

// HashPluginToString returns HashPlugin(data) in base 36.
func HashPluginToString(data []byte) string {
	return contenthash.String(data)
}
