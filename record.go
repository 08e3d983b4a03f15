package jsondb

import (
	"encoding/json"
	"time"

	"github.com/maruel/ksid"

	"github.com/stevemurr/jsondb/document"
)

// Record is one entry in a table: a schemaless JSON object expected to carry
// an "id" field of type string or integer. No other field is constrained.
type Record = map[string]any

// GenerateID returns a new unique, time-sortable string id for a record.
func GenerateID() string {
	return ksid.NewID().String()
}

// WithTimestamps stamps rec with "createdAt" and "updatedAt" set to the
// current UTC time in RFC 3339 and returns rec.
func WithTimestamps(rec Record) Record {
	now := time.Now().UTC().Format(time.RFC3339)
	rec["createdAt"] = now
	rec["updatedAt"] = now
	return rec
}

// UpdateTimestamp refreshes rec's "updatedAt" field and returns rec.
func UpdateTimestamp(rec Record) Record {
	rec["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
	return rec
}

// sameID reports whether two id values identify the same record. Ids are
// strings or integers; numbers are compared by value since JSON decoding
// turns every number into float64.
func sameID(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	af, aok := idNumber(a)
	bf, bok := idNumber(b)
	return aok && bok && af == bf
}

func idNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// indexByID returns the index of the first record whose "id" matches id,
// or -1 if none does.
func indexByID(recs []Record, id any) int {
	for i, r := range recs {
		if sameID(r["id"], id) {
			return i
		}
	}
	return -1
}

// asRecords converts a stored table value to a record slice without
// modifying the document, so it is safe under a read lock. Freshly decoded
// documents hold []any; non-object elements are skipped. The returned
// records alias the live document either way.
func asRecords(raw any) ([]Record, bool) {
	switch v := raw.(type) {
	case []Record:
		return v, true
	case []any:
		recs := make([]Record, 0, len(v))
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				recs = append(recs, m)
			}
		}
		return recs, true
	default:
		return nil, false
	}
}

// ensureRecords normalizes doc[name] to []Record in place and returns the
// slice. Returns false when the key is absent or does not hold a sequence.
// Caller must hold the engine's write lock.
func ensureRecords(doc document.Document, name string) ([]Record, bool) {
	recs, ok := asRecords(doc[name])
	if !ok {
		return nil, false
	}
	doc[name] = recs
	return recs, true
}
