package document

import "sync"

// MemoryEngine keeps the document in memory only. Data is lost when the
// engine goes away. Useful for tests and throwaway stores.
type MemoryEngine struct {
	mu  sync.RWMutex
	doc Document
}

// NewMemoryEngine creates an engine whose document starts as a copy of
// defaults.
func NewMemoryEngine(defaults Document) *MemoryEngine {
	return &MemoryEngine{doc: clone(defaults)}
}

func (e *MemoryEngine) View(fn func(doc Document)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.doc)
}

func (e *MemoryEngine) Update(fn func(doc Document) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.doc)
}

func (e *MemoryEngine) Close() error {
	return nil
}
