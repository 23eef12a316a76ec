// Package plugin holds the host-facing data model extracted from a parsed
// plugin file and the projection that builds it from a parser result.
//
// Key types:
//   - Plugin: aggregate root owning a Header, Worlds and Cells
//   - Header: file format version, record count, masters, author/description
//   - World: worldspace form ID and editor ID
//   - Cell: cell form ID, optional editor ID, grid coordinates and worldspace
//
// Optional fields are pointers; nil means the parser reported the value as
// absent. Empty strings and zeros are real values and are never used to mean
// "missing".
//
// Project copies every field of a nativeplugin.Plugin one to one. It keeps
// sequence order, allocates fresh strings and pointers so the result never
// aliases parser memory, and performs no validation: a cell carrying X
// without Y is passed through exactly as reported.
package plugin
