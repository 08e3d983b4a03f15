package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

// FileEngine keeps the document in one JSON file on disk. Every persist
// replaces the whole file atomically, so a crash mid-write leaves either the
// old or the new content, never a torn file.
type FileEngine struct {
	mu   sync.RWMutex
	path string
	doc  Document
}

// NewFileEngine opens the document at path. If the file exists its content
// becomes the live document; a file that does not parse as a JSON object is
// an ErrMalformed failure. Otherwise the file is created containing defaults.
func NewFileEngine(path string, defaults Document) (*FileEngine, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	e := &FileEngine{path: path}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
		if doc == nil {
			return nil, fmt.Errorf("%w: %s: document is null", ErrMalformed, path)
		}
		e.doc = doc
	case os.IsNotExist(err):
		e.doc = clone(defaults)
		if err := e.persist(); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return e, nil
}

// Path returns the backing file path.
func (e *FileEngine) Path() string {
	return e.path
}

func (e *FileEngine) View(fn func(doc Document)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.doc)
}

func (e *FileEngine) Update(fn func(doc Document) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.doc); err != nil {
		return err
	}
	return e.persist()
}

// persist writes the full document to disk. Caller holds the write lock
// (or has exclusive access during construction).
func (e *FileEngine) persist() error {
	b, err := json.MarshalIndent(e.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	b = append(b, '\n')
	if err := atomic.WriteFile(e.path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("write %s: %w", e.path, err)
	}
	return nil
}

func (e *FileEngine) Close() error {
	return nil
}
