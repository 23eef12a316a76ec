// Package preflight provides readiness checks for the external parser and
// the filesystem paths celldump writes into.
//
// The CLI "celldump doctor" command runs RunAll and renders the results.
// Individual checks (CheckParser, CheckDirectoryAccess, CheckCacheDatabase)
// are exported for callers that only need one of them.
//
// Each check is gated by its config toggle -- a disabled cache is skipped.
package preflight
