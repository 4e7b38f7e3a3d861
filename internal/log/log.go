// Package log provides the audit log of smartbar operations.
// Entries are stored in ~/.smartbar/log/smartbar-log.db and record index
// writes, reindexes and searches from the CLI, HTTP API and MCP tools across
// workspaces.
//
// # Fluent API
//
//	log.Event("index:entity", "index").
//		Actor(actorID).
//		Target(index.DocID(kind, id)).
//		Write(err)
//
//	log.Event("http:search", "search").
//		Actor(actorID).
//		Detail("query", text).
//		Count(len(hits)).
//		Write(err)
//
// The source parameter follows the format "{surface}:{operation}", for
// example "cli:reindex", "http:search" or "mcp:smartbar_index".
package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single log entry.
type Entry struct {
	Source string // e.g., "cli:index", "mcp:smartbar_search"
	Actor  int64  // acting account, 0 for system operations
	Action string // verb: index, remove, reindex, search, config
	Target string // document ID, entity ID or config key

	Count int // output: documents written or hits returned

	Start int64 // unix timestamp when Event() called
	End   int64 // unix timestamp when Write() called

	Success bool           // whether operation succeeded
	Error   string         // error message if failed
	Detail  map[string]any // additional operation-specific data
}

// Builder constructs a log entry using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write].
type Builder struct {
	entry Entry
}

// Event creates a new log entry builder for an operation.
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().Unix(),
		},
	}
}

// Actor sets the account that performed the operation.
func (b *Builder) Actor(id int64) *Builder {
	b.entry.Actor = id
	return b
}

// Target sets what the operation affected.
func (b *Builder) Target(target string) *Builder {
	b.entry.Target = target
	return b
}

// Count records how many documents or hits the operation produced.
func (b *Builder) Count(n int) *Builder {
	b.entry.Count = n
	return b
}

// Detail adds a key-value pair to the log entry's detail map.
// Can be called multiple times.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write writes the log entry, deriving success/failure from err.
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().Unix()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Errors are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetProject sets the workspace identifier for subsequent log entries.
// The dir should be the absolute path to the .smartbar directory.
func SetProject(dir string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.project = hash(dir)
	}
}

// Log writes an entry. Safe to call if logger not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
