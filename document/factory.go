package document

import "fmt"

// Open creates an Engine based on the backend name.
//
// Supported backends:
//
//	"json"   - single JSON file at path (default)
//	"sqlite" - SQLite database at path, document in one row
//	"memory" - in-memory (ephemeral, for testing)
//
// defaults is the document written on first creation; it is ignored when the
// backing location already holds a document.
func Open(backend, path string, defaults Document) (Engine, error) {
	switch backend {
	case "json", "":
		return NewFileEngine(path, defaults)
	case "sqlite":
		return NewSqliteEngine(path, defaults)
	case "memory":
		return NewMemoryEngine(defaults), nil
	default:
		return nil, fmt.Errorf("unknown document backend: %q (supported: json, sqlite, memory)", backend)
	}
}
