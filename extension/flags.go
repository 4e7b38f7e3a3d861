// flags.go defines constants for all CLI flag names.
//
// Naming convention: Flag<PascalCaseName> where name matches the kebab-case
// CLI flag (e.g., "dry-run" -> FlagDryRun).

package extension

// Flag name constants for CLI commands.
const (
	// Boolean flags

	FlagAutosave = "autosave" // Treat as an autosave
	FlagDryRun   = "dry-run"  // Preview without making changes
	FlagLocal    = "local"    // Use local scope (gitignored)
	FlagMarkdown = "markdown" // Render results as markdown
	FlagNoIndex  = "no-index" // Skip indexing after import
	FlagRaw      = "raw"      // Raw output without formatting
	FlagReindex  = "reindex"  // Rebuild the index afterwards
	FlagRevision = "revision" // Treat as a stored revision
	FlagShare    = "share"    // Mark as shared (committed)

	// String flags

	FlagAddr  = "addr"  // Listen address
	FlagKind  = "kind"  // Entity kind
	FlagTypes = "types" // Comma-separated search types

	// Integer flags

	FlagLimit = "limit" // Limit number of results
)
