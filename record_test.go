package jsondb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameID(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal strings", "abc", "abc", true},
		{"different strings", "abc", "abd", false},
		{"equal ints", 7, 7, true},
		{"different ints", 7, 8, false},
		{"int vs float64", 7, float64(7), true},
		{"int64 vs float64", int64(7), float64(7), true},
		{"uint vs int", uint(3), 3, true},
		{"string vs number", "7", 7, false},
		{"number vs string", 7, "7", false},
		{"nil a", nil, 1, false},
		{"nil b", 1, nil, false},
		{"both nil", nil, nil, false},
		{"non-id types", []int{1}, []int{1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sameID(tt.a, tt.b))
		})
	}
}

func TestIndexByID(t *testing.T) {
	recs := []Record{
		{"id": 1},
		{"id": "two"},
		{"id": 1}, // duplicate: first match wins
	}
	assert.Equal(t, 0, indexByID(recs, 1))
	assert.Equal(t, 0, indexByID(recs, float64(1)))
	assert.Equal(t, 1, indexByID(recs, "two"))
	assert.Equal(t, -1, indexByID(recs, "missing"))
	assert.Equal(t, -1, indexByID(nil, 1))
}

func TestAsRecords(t *testing.T) {
	// Freshly decoded documents hold []any.
	recs, ok := asRecords([]any{map[string]any{"id": 1}, "junk", map[string]any{"id": 2}})
	require.True(t, ok)
	require.Len(t, recs, 2) // non-object elements are skipped

	// Already normalized slices pass through unchanged.
	orig := []Record{{"id": 1}}
	recs, ok = asRecords(orig)
	require.True(t, ok)
	require.Len(t, recs, 1)

	_, ok = asRecords("not a sequence")
	require.False(t, ok)
	_, ok = asRecords(nil)
	require.False(t, ok)
}

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := GenerateID()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}

func TestTimestamps(t *testing.T) {
	rec := WithTimestamps(Record{"id": 1})

	created, ok := rec["createdAt"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, created)
	require.NoError(t, err)
	require.Equal(t, rec["createdAt"], rec["updatedAt"])

	rec["updatedAt"] = "1999-01-01T00:00:00Z"
	UpdateTimestamp(rec)
	require.NotEqual(t, "1999-01-01T00:00:00Z", rec["updatedAt"])
	require.Equal(t, created, rec["createdAt"])
}
