// Package memory provides an in-memory document store used for development
// and tests. It keeps code paths easy to follow while the SQLite store backs
// real deployments.
package memory

import (
	"context"
	"sync"

	"spokoj/internal/core"
	"spokoj/internal/store"
)

// Store is guarded by an RWMutex and hands out deep copies so callers can
// never mutate its state through a returned document.
type Store struct {
	mu     sync.RWMutex
	doc    core.Document
	loaded bool

	saves int
}

// New constructs an empty store; Load returns store.ErrNotFound until the
// first Save.
func New() *Store {
	return &Store{}
}

// Seed installs a document directly, for tests.
func (s *Store) Seed(doc core.Document) {
	s.mu.Lock()
	s.doc = doc.Clone()
	s.loaded = true
	s.mu.Unlock()
}

// Load implements store.DocumentStore.
func (s *Store) Load(_ context.Context) (core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return core.Document{}, store.ErrNotFound
	}
	return s.doc.Clone(), nil
}

// Save implements store.DocumentStore.
func (s *Store) Save(_ context.Context, doc core.Document) error {
	s.mu.Lock()
	s.doc = doc.Clone()
	s.loaded = true
	s.saves++
	s.mu.Unlock()
	return nil
}

// Saves reports how many times Save has been called, for tests asserting
// write coalescing.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
