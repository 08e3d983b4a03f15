package document_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/stevemurr/jsondb/document"
)

// runEngineTests runs a common conformance suite against any Engine.
func runEngineTests(t *testing.T, open func(t *testing.T) document.Engine) {
	t.Helper()

	t.Run("defaults applied", func(t *testing.T) {
		e := open(t)
		defer e.Close()

		e.View(func(doc document.Document) {
			require.Equal(t, "hello", doc["greeting"])
			require.Empty(t, doc["items"])
		})
	})

	t.Run("update mutates live document", func(t *testing.T) {
		e := open(t)
		defer e.Close()

		err := e.Update(func(doc document.Document) error {
			doc["n"] = 1
			return nil
		})
		require.NoError(t, err)

		e.View(func(doc document.Document) {
			require.Equal(t, 1, doc["n"])
		})
	})

	t.Run("mutator error aborts persistence", func(t *testing.T) {
		e := open(t)
		defer e.Close()

		boom := fmt.Errorf("boom")
		err := e.Update(func(doc document.Document) error {
			return boom
		})
		require.ErrorIs(t, err, boom)
	})

	t.Run("updates are serialized", func(t *testing.T) {
		e := open(t)
		defer e.Close()

		const n = 20
		errs := make(chan error, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- e.Update(func(doc document.Document) error {
					doc[fmt.Sprintf("k%d", i)] = i
					return nil
				})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		e.View(func(doc document.Document) {
			for i := range n {
				require.Contains(t, doc, fmt.Sprintf("k%d", i))
			}
		})
	})
}

func testDefaults() document.Document {
	return document.Document{
		"greeting": "hello",
		"items":    []any{},
	}
}

func TestFileEngine(t *testing.T) {
	runEngineTests(t, func(t *testing.T) document.Engine {
		e, err := document.NewFileEngine(filepath.Join(t.TempDir(), "db.json"), testDefaults())
		require.NoError(t, err)
		return e
	})
}

func TestMemoryEngine(t *testing.T) {
	runEngineTests(t, func(t *testing.T) document.Engine {
		return document.NewMemoryEngine(testDefaults())
	})
}

func TestSqliteEngine(t *testing.T) {
	runEngineTests(t, func(t *testing.T) document.Engine {
		e, err := document.NewSqliteEngine(filepath.Join(t.TempDir(), "db.sqlite"), testDefaults())
		require.NoError(t, err)
		return e
	})
}

func TestFileEngineCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "db.json")
	e, err := document.NewFileEngine(path, testDefaults())
	require.NoError(t, err)
	defer e.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestFileEnginePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")

	e, err := document.NewFileEngine(path, testDefaults())
	require.NoError(t, err)
	require.NoError(t, e.Update(func(doc document.Document) error {
		doc["answer"] = 42
		return nil
	}))
	require.NoError(t, e.Close())

	e2, err := document.NewFileEngine(path, nil)
	require.NoError(t, err)
	defer e2.Close()

	e2.View(func(doc document.Document) {
		require.Equal(t, float64(42), doc["answer"])
	})
}

func TestFileEngineIgnoresDefaultsWhenFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"existing": true}`), 0o644))

	e, err := document.NewFileEngine(path, testDefaults())
	require.NoError(t, err)
	defer e.Close()

	e.View(func(doc document.Document) {
		require.Equal(t, true, doc["existing"])
		require.NotContains(t, doc, "greeting")
	})
}

func TestFileEngineMalformedFile(t *testing.T) {
	for name, content := range map[string]string{
		"invalid json": "{not json",
		"null":         "null",
		"array root":   "[1, 2]",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "db.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			_, err := document.NewFileEngine(path, nil)
			require.ErrorIs(t, err, document.ErrMalformed)
		})
	}
}

func TestFileEngineMutatorErrorLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	e, err := document.NewFileEngine(path, testDefaults())
	require.NoError(t, err)
	defer e.Close()

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.Error(t, e.Update(func(doc document.Document) error {
		return fmt.Errorf("abort")
	}))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

func TestSqliteEnginePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.sqlite")

	e, err := document.NewSqliteEngine(path, testDefaults())
	require.NoError(t, err)
	require.NoError(t, e.Update(func(doc document.Document) error {
		doc["answer"] = 42
		return nil
	}))
	require.NoError(t, e.Close())

	e2, err := document.NewSqliteEngine(path, nil)
	require.NoError(t, err)
	defer e2.Close()

	e2.View(func(doc document.Document) {
		require.Equal(t, float64(42), doc["answer"])
	})
}

func TestFactory(t *testing.T) {
	dir := t.TempDir()

	e, err := document.Open("json", filepath.Join(dir, "a.json"), nil)
	require.NoError(t, err)
	require.IsType(t, &document.FileEngine{}, e)
	e.Close()

	e, err = document.Open("", filepath.Join(dir, "b.json"), nil)
	require.NoError(t, err)
	require.IsType(t, &document.FileEngine{}, e)
	e.Close()

	e, err = document.Open("memory", "", nil)
	require.NoError(t, err)
	require.IsType(t, &document.MemoryEngine{}, e)
	e.Close()

	e, err = document.Open("sqlite", filepath.Join(dir, "c.sqlite"), nil)
	require.NoError(t, err)
	require.IsType(t, &document.SqliteEngine{}, e)
	e.Close()

	_, err = document.Open("bogus", "", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown document backend")
}
