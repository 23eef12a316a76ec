// Package celldump extracts a small data model from parsed Elder Scrolls
// plugin files and fingerprints raw plugin content.
//
// Entry points:
//   - ParsePlugin: run a Parser over plugin bytes and project the result
//   - HashPlugin: SeaHash of the bytes as a uint64
//   - HashPluginToString: the same hash in base 36
//
// Binary decoding is delegated to a Parser. The projected Plugin owns all of
// its memory and never aliases the parser's graph. Hashing is total and
// deterministic across processes and platforms.
package celldump
