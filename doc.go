// Package jsondb is a small JSON-file-backed record store.
//
// A store keeps its entire state as one JSON document, loaded into memory
// when opened and rewritten in full after every mutation. Two shapes are
// offered: [Collection] binds a single named record sequence inside the
// document, and [Database] manages any number of named tables plus a
// reserved metadata key tracking them. Records are schemaless JSON objects
// identified by an "id" field (string or integer); duplicate ids are
// permitted and lookups return the first match.
//
// Reads observe the live in-memory document and never touch disk. Mutations
// run one at a time through the backing [document.Engine], which persists
// the document before the call returns. A persistence failure surfaces as an
// error but leaves the in-memory document already mutated; there is no
// rollback.
//
// One store instance must be the sole user of its backing file. Nothing here
// coordinates multiple instances or external writers on the same path.
package jsondb
