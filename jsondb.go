package jsondb

import (
	"fmt"
	"sort"
	"time"

	"github.com/stevemurr/jsondb/document"
)

// Options configures how a store is opened.
type Options struct {
	// Backend selects the document engine: "json" (default), "sqlite" or
	// "memory".
	Backend string

	// Defaults holds extra top-level fields merged into the document when
	// the backing file is first created. Ignored if the file already
	// exists.
	Defaults document.Document
}

// Open opens a single-collection store at path, bound to the named
// collection. On first creation the document contains the collection as an
// empty sequence plus any Options.Defaults fields; an existing file is used
// as-is, and opening fails if its content is malformed or the collection
// key holds something other than a sequence.
func Open(path, collection string, opts Options) (*Collection, error) {
	defaults := document.Document{}
	for k, v := range opts.Defaults {
		defaults[k] = v
	}
	if _, ok := defaults[collection]; !ok {
		defaults[collection] = []Record{}
	}

	eng, err := document.Open(opts.Backend, path, defaults)
	if err != nil {
		return nil, err
	}

	c := NewCollection(eng, collection)
	if err := c.validate(); err != nil {
		eng.Close()
		return nil, err
	}
	return c, nil
}

// OpenDatabase opens a multi-table store at path. On first creation the
// document contains Options.Defaults (each entry becomes an initial table)
// plus the metadata key listing them; an existing file is used as-is.
func OpenDatabase(path string, opts Options) (*Database, error) {
	defaults := document.Document{}
	tables := []string{}
	for k, v := range opts.Defaults {
		if k == MetadataKey {
			return nil, fmt.Errorf("%w: %q", ErrReservedName, k)
		}
		defaults[k] = v
		tables = append(tables, k)
	}
	sort.Strings(tables)
	defaults[MetadataKey] = map[string]any{
		"created": time.Now().UTC().Format(time.RFC3339),
		"version": databaseVersion,
		"tables":  tables,
	}

	eng, err := document.Open(opts.Backend, path, defaults)
	if err != nil {
		return nil, err
	}
	return NewDatabase(eng), nil
}
