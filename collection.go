package jsondb

import (
	"fmt"
	"slices"

	"github.com/stevemurr/jsondb/document"
)

// Collection is a single-collection store: identity-keyed CRUD over one
// named record sequence inside the document. The bound collection always
// exists; a record lookup miss is an ordinary false result, never an error.
type Collection struct {
	eng  document.Engine
	name string
}

// NewCollection binds a collection name on an already-open engine. Most
// callers use [Open] instead.
func NewCollection(eng document.Engine, name string) *Collection {
	return &Collection{eng: eng, name: name}
}

// Name returns the bound collection name.
func (c *Collection) Name() string {
	return c.name
}

// validate checks that the bound key, if present, holds a sequence.
func (c *Collection) validate() error {
	var err error
	c.eng.View(func(doc document.Document) {
		if raw, ok := doc[c.name]; ok && raw != nil {
			if _, ok := asRecords(raw); !ok {
				err = fmt.Errorf("%w: %q", ErrBadCollection, c.name)
			}
		}
	})
	return err
}

// All returns the collection's records in order. The result is a live view:
// the record maps alias the in-memory document and are not defensive copies.
func (c *Collection) All() []Record {
	var recs []Record
	c.eng.View(func(doc document.Document) {
		recs, _ = asRecords(doc[c.name])
	})
	return recs
}

// Get returns the first record with a matching id, or false if none exists.
func (c *Collection) Get(id any) (Record, bool) {
	var rec Record
	var ok bool
	c.eng.View(func(doc document.Document) {
		recs, _ := asRecords(doc[c.name])
		if i := indexByID(recs, id); i >= 0 {
			rec, ok = recs[i], true
		}
	})
	return rec, ok
}

// Find returns the records matching pred, preserving collection order.
func (c *Collection) Find(pred func(Record) bool) []Record {
	var out []Record
	c.eng.View(func(doc document.Document) {
		recs, _ := asRecords(doc[c.name])
		for _, r := range recs {
			if pred(r) {
				out = append(out, r)
			}
		}
	})
	return out
}

// FindOne returns the first record matching pred, or false if none does.
func (c *Collection) FindOne(pred func(Record) bool) (Record, bool) {
	var rec Record
	var ok bool
	c.eng.View(func(doc document.Document) {
		recs, _ := asRecords(doc[c.name])
		for _, r := range recs {
			if pred(r) {
				rec, ok = r, true
				return
			}
		}
	})
	return rec, ok
}

// Count returns the number of records in the collection.
func (c *Collection) Count() int {
	var n int
	c.eng.View(func(doc document.Document) {
		recs, _ := asRecords(doc[c.name])
		n = len(recs)
	})
	return n
}

// Query calls fn with the collection's records and returns fn's result.
// Read-only: nothing is persisted, and fn must not modify the records.
func (c *Collection) Query(fn func(recs []Record) any) any {
	var out any
	c.eng.View(func(doc document.Document) {
		recs, _ := asRecords(doc[c.name])
		out = fn(recs)
	})
	return out
}

// Add appends rec to the collection and returns it. Duplicate ids are
// permitted; later lookups return the first match.
func (c *Collection) Add(rec Record) (Record, error) {
	err := c.eng.Update(func(doc document.Document) error {
		recs := c.liveRecords(doc)
		doc[c.name] = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update shallow-merges fields over the first record matching id and
// returns the merged record. A missing id is not an error: the second
// result is false and the collection is unchanged.
func (c *Collection) Update(id any, fields Record) (Record, bool, error) {
	var rec Record
	var found bool
	err := c.eng.Update(func(doc document.Document) error {
		recs := c.liveRecords(doc)
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
func (c *Collection) Remove(id any) (Record, bool, error) {
	var rec Record
	var found bool
	err := c.eng.Update(func(doc document.Document) error {
		recs := c.liveRecords(doc)
		if i := indexByID(recs, id); i >= 0 {
			rec, found = recs[i], true
			doc[c.name] = slices.Delete(recs, i, i+1)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return rec, found, nil
}

// Clear replaces the collection with an empty sequence.
func (c *Collection) Clear() error {
	return c.eng.Update(func(doc document.Document) error {
		doc[c.name] = []Record{}
		return nil
	})
}

// UpdateData calls fn with the whole live document for arbitrary multi-field
// edits and always persists afterwards. Escape hatch; prefer the record
// operations.
func (c *Collection) UpdateData(fn func(doc document.Document)) error {
	return c.eng.Update(func(doc document.Document) error {
		fn(doc)
		return nil
	})
}

// Close closes the underlying engine.
func (c *Collection) Close() error {
	return c.eng.Close()
}

// liveRecords returns the normalized record slice for the bound name,
// recreating it as empty if the key went missing (an UpdateData edit can
// remove it). Caller must be inside eng.Update.
func (c *Collection) liveRecords(doc document.Document) []Record {
	recs, ok := ensureRecords(doc, c.name)
	if !ok {
		recs = []Record{}
		doc[c.name] = recs
	}
	return recs
}
