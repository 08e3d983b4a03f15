// Package document defines the persistent-document engine interface and its
// implementations. An engine owns exactly one JSON document: it loads the
// document into memory when opened and writes it back in full after every
// successful update.
package document

import (
	"encoding/json"
	"errors"
)

// ErrMalformed is returned when an existing document cannot be parsed as a
// JSON object. There is no partial recovery; the caller decides what to do
// with the broken file.
var ErrMalformed = errors.New("malformed document")

// Document is the whole persisted JSON value of one engine. Top-level keys
// map collection names to record sequences, plus any metadata fields the
// caller maintains.
type Document map[string]any

// Engine is the interface that all document backends must implement.
// It holds the live in-memory document and persists it as a whole.
//
// One engine instance must be the only writer of its backing location;
// nothing here coordinates concurrent processes sharing a file.
type Engine interface {
	// View calls fn with shared read access to the live document.
	// fn must not modify the document.
	View(fn func(doc Document))

	// Update calls fn with exclusive access to the live document and
	// persists the document after fn returns nil. If fn returns an error,
	// nothing is persisted and the error is returned; fn must fail before
	// mutating the document. A persistence failure leaves the in-memory
	// document already mutated.
	Update(fn func(doc Document) error) error

	// Close releases any resources held by the engine.
	Close() error
}

// clone deep-copies a document by round-tripping through JSON, so engines
// never alias caller-supplied defaults.
func clone(src Document) Document {
	if src == nil {
		return Document{}
	}
	b, _ := json.Marshal(src)
	var dst Document
	_ = json.Unmarshal(b, &dst)
	if dst == nil {
		dst = Document{}
	}
	return dst
}
