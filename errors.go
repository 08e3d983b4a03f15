package jsondb

import "errors"

// MetadataKey is the reserved top-level document key a Database uses to
// track its table names. It never names a table.
const MetadataKey = "_metadata"

// databaseVersion is stamped into the metadata of newly created databases.
const databaseVersion = "1.0"

var (
	// ErrTableNotFound is returned by every Table operation whose bound
	// name is not currently a table in the document. This is a real
	// failure, unlike a record lookup miss, which is a plain false result.
	ErrTableNotFound = errors.New("table does not exist")

	// ErrReservedName is returned when a caller tries to create or drop a
	// table under the metadata key.
	ErrReservedName = errors.New("table name is reserved")

	// ErrBadCollection is returned at open time when the bound collection
	// key exists in the document but does not hold a sequence.
	ErrBadCollection = errors.New("collection is not a sequence")
)
