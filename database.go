package jsondb

import (
	"fmt"
	"sort"

	"github.com/stevemurr/jsondb/document"
)

// Database is a multi-table store: any number of named record sequences
// inside one document, tracked by the reserved metadata key. Tables are
// created and dropped at runtime; handles to them are obtained via
// [Database.Table] and fail with ErrTableNotFound while their name is absent.
type Database struct {
	eng document.Engine
}

// NewDatabase wraps an already-open engine. Most callers use [OpenDatabase]
// instead.
func NewDatabase(eng document.Engine) *Database {
	return &Database{eng: eng}
}

// Table returns a handle bound to name. Existence is not checked here, only
// when the handle is first used.
func (d *Database) Table(name string) *Table {
	return &Table{eng: d.eng, name: name}
}

// ListTables returns the names of all current tables, sorted. The metadata
// key is never included.
func (d *Database) ListTables() []string {
	var names []string
	d.eng.View(func(doc document.Document) {
		names = tableNames(doc)
	})
	return names
}

// CreateTable sets the table to the given initial records (nil means empty)
// and records it in the metadata table list. Creating an existing table
// resets its contents.
func (d *Database) CreateTable(name string, initial []Record) error {
	if name == MetadataKey {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	return d.eng.Update(func(doc document.Document) error {
		recs := make([]Record, len(initial))
		copy(recs, initial)
		doc[name] = recs
		syncTableList(doc)
		return nil
	})
}

// DropTable deletes the table key entirely and removes it from the metadata
// table list. Dropping an absent table is a no-op.
func (d *Database) DropTable(name string) error {
	if name == MetadataKey {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	return d.eng.Update(func(doc document.Document) error {
		delete(doc, name)
		syncTableList(doc)
		return nil
	})
}

// Query calls fn with the whole live document and returns fn's result.
// Read-only: nothing is persisted, and fn must not modify the document.
func (d *Database) Query(fn func(doc document.Document) any) any {
	var out any
	d.eng.View(func(doc document.Document) {
		out = fn(doc)
	})
	return out
}

// UpdateData calls fn with the whole live document for arbitrary edits and
// always persists afterwards. The metadata table list is re-derived from the
// document keys when fn returns, so table keys added or removed by fn stay
// tracked.
func (d *Database) UpdateData(fn func(doc document.Document)) error {
	return d.eng.Update(func(doc document.Document) error {
		fn(doc)
		syncTableList(doc)
		return nil
	})
}

// Close closes the underlying engine.
func (d *Database) Close() error {
	return d.eng.Close()
}

// tableNames enumerates the document's table keys, sorted. A table is a
// non-metadata key holding a sequence.
func tableNames(doc document.Document) []string {
	var names []string
	for k, v := range doc {
		if k == MetadataKey {
			continue
		}
		if _, ok := asRecords(v); ok {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// syncTableList rewrites the metadata table list from the document's own
// keys. The list is derivable; this keeps it consistent after every
// mutation that can change the key set. Caller must be inside eng.Update.
func syncTableList(doc document.Document) {
	meta, ok := doc[MetadataKey].(map[string]any)
	if !ok {
		meta = map[string]any{"version": databaseVersion}
		doc[MetadataKey] = meta
	}
	names := tableNames(doc)
	if names == nil {
		names = []string{}
	}
	meta["tables"] = names
}
