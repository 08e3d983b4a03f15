package jsondb

import (
	"fmt"
	"slices"

	"github.com/stevemurr/jsondb/document"
)

// Table is a stateless handle bound to one table name inside a Database.
// It carries no state of its own; every call resolves the name against the
// live document, so a handle stays valid across CreateTable/DropTable and
// simply starts failing with ErrTableNotFound once its table is gone.
type Table struct {
	eng  document.Engine
	name string
}

// Name returns the bound table name.
func (t *Table) Name() string {
	return t.name
}

// Exists reports whether the bound name currently is a table in the
// document.
func (t *Table) Exists() bool {
	var ok bool
	t.eng.View(func(doc document.Document) {
		_, ok = asRecords(doc[t.name])
	})
	return ok
}

// view runs fn against the table's records under the read lock, failing if
// the table is absent.
func (t *Table) view(fn func(recs []Record)) error {
	var err error
	t.eng.View(func(doc document.Document) {
		recs, ok := asRecords(doc[t.name])
		if !ok {
			err = fmt.Errorf("%w: %q", ErrTableNotFound, t.name)
			return
		}
		fn(recs)
	})
	return err
}

// mutate runs fn inside the engine's update path, failing before any edit
// if the table is absent.
func (t *Table) mutate(fn func(doc document.Document, recs []Record) error) error {
	return t.eng.Update(func(doc document.Document) error {
		recs, ok := ensureRecords(doc, t.name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrTableNotFound, t.name)
		}
		return fn(doc, recs)
	})
}

// All returns the table's records in order as a live, non-copied view.
func (t *Table) All() ([]Record, error) {
	var recs []Record
	err := t.view(func(r []Record) { recs = r })
	return recs, err
}

// Get returns the first record with a matching id. The boolean result is
// false on a lookup miss; the error is reserved for an absent table.
func (t *Table) Get(id any) (Record, bool, error) {
	var rec Record
	var found bool
	err := t.view(func(recs []Record) {
		if i := indexByID(recs, id); i >= 0 {
			rec, found = recs[i], true
		}
	})
	if err != nil {
		return nil, false, err
	}
	return rec, found, nil
}

// Find returns the records matching pred, preserving table order.
func (t *Table) Find(pred func(Record) bool) ([]Record, error) {
	var out []Record
	err := t.view(func(recs []Record) {
		for _, r := range recs {
			if pred(r) {
				out = append(out, r)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindOne returns the first record matching pred, or false if none does.
func (t *Table) FindOne(pred func(Record) bool) (Record, bool, error) {
	var rec Record
	var found bool
	err := t.view(func(recs []Record) {
		for _, r := range recs {
			if pred(r) {
				rec, found = r, true
				return
			}
		}
	})
	if err != nil {
		return nil, false, err
	}
	return rec, found, nil
}

// Count returns the number of records in the table.
func (t *Table) Count() (int, error) {
	var n int
	err := t.view(func(recs []Record) { n = len(recs) })
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Query calls fn with the table's records and returns fn's result.
// Read-only: nothing is persisted, and fn must not modify the records.
func (t *Table) Query(fn func(recs []Record) any) (any, error) {
	var out any
	err := t.view(func(recs []Record) { out = fn(recs) })
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Add appends rec to the table and returns it. Duplicate ids are permitted;
// later lookups return the first match.
func (t *Table) Add(rec Record) (Record, error) {
	err := t.mutate(func(doc document.Document, recs []Record) error {
		doc[t.name] = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update shallow-merges fields over the first record matching id and
// returns the merged record. A missing id is not an error: the second
// result is false and the table is unchanged.
func (t *Table) Update(id any, fields Record) (Record, bool, error) {
	var rec Record
	var found bool
	err := t.mutate(func(doc document.Document, recs []Record) error {
		if i := indexByID(recs, id); i >= 0 {
			for k, v := range fields {
				recs[i][k] = v
			}
			rec, found = recs[i], true
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return rec, found, nil
}

// Remove deletes the first record matching id and returns it, preserving
// the order of the remaining records. A missing id is not an error.
func (t *Table) Remove(id any) (Record, bool, error) {
	var rec Record
	var found bool
	err := t.mutate(func(doc document.Document, recs []Record) error {
		if i := indexByID(recs, id); i >= 0 {
			rec, found = recs[i], true
			doc[t.name] = slices.Delete(recs, i, i+1)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return rec, found, nil
}

// Clear replaces the table with an empty sequence.
func (t *Table) Clear() error {
	return t.mutate(func(doc document.Document, _ []Record) error {
		doc[t.name] = []Record{}
		return nil
	})
}
