package document

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SqliteEngine stores the document as a single row in a SQLite database.
// The document is still loaded whole at open and written whole on every
// update; SQLite only replaces the flat file as the durable location.
//
// Table:
//
//	document(id, data)  single row with id = 0
type SqliteEngine struct {
	mu  sync.RWMutex
	db  *sql.DB
	doc Document
}

// NewSqliteEngine opens (or creates) the database at dbPath and loads the
// stored document, initializing it with defaults when the row is absent.
func NewSqliteEngine(dbPath string, defaults Document) (*SqliteEngine, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS document (
		id INTEGER PRIMARY KEY CHECK (id = 0),
		data TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}

	e := &SqliteEngine{db: db}

	var raw string
	err = db.QueryRow("SELECT data FROM document WHERE id = 0").Scan(&raw)
	switch {
	case err == nil:
		var doc Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, dbPath, err)
		}
		if doc == nil {
			db.Close()
			return nil, fmt.Errorf("%w: %s: document is null", ErrMalformed, dbPath)
		}
		e.doc = doc
	case errors.Is(err, sql.ErrNoRows):
		e.doc = clone(defaults)
		if err := e.persist(); err != nil {
			db.Close()
			return nil, err
		}
	default:
		db.Close()
		return nil, err
	}

	return e, nil
}

func (e *SqliteEngine) View(fn func(doc Document)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.doc)
}

func (e *SqliteEngine) Update(fn func(doc Document) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.doc); err != nil {
		return err
	}
	return e.persist()
}

func (e *SqliteEngine) persist() error {
	b, err := json.Marshal(e.doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	_, err = e.db.Exec(
		"INSERT INTO document (id, data) VALUES (0, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data",
		string(b),
	)
	return err
}

func (e *SqliteEngine) Close() error {
	return e.db.Close()
}
