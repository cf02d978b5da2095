package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotFound is returned by a Backend when no store document has been
	// written yet. The store is created lazily on the first successful
	// extraction, so this is a normal outcome early in a deployment's life.
	ErrNotFound = errors.New("reminder store not found")

	// ErrConflict is returned by a Backend when another writer modified the
	// document between this writer's load and save.
	ErrConflict = errors.New("reminder store modified by another writer")

	// ErrNoChange can be returned from an Update closure to skip the write
	// while still reporting success.
	ErrNoChange = errors.New("no change")
)

// Backend is durable storage for a single store document, read and written
// wholesale.
type Backend interface {
	// Load returns the current document, or ErrNotFound if none was ever saved.
	Load(ctx context.Context) (*Document, error)

	// Save replaces the stored document.
	Save(ctx context.Context, doc *Document) error

	Close() error
}

// Store serializes read-modify-write cycles over a Backend. The extraction
// cycle, the due-check cycle and acknowledgements all funnel through Update,
// so within one process no cycle's write can silently overwrite another's.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

// NewStore wraps a backend in a mutex-serialized store.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load returns the current document without modifying it. Returns ErrNotFound
// if the store has never been written.
func (s *Store) Load(ctx context.Context) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Load(ctx)
}

// Update loads the current document (an empty one if none exists yet),
// applies fn, and saves the result. fn returning an error aborts without
// writing; fn returning ErrNoChange skips the write and reports success.
//
// On a save failure the mutated document is still returned alongside the
// error so the caller can act on state it already computed.
func (s *Store) Update(ctx context.Context, fn func(doc *Document) error) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.backend.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		doc = &Document{}
	case err != nil:
		return nil, fmt.Errorf("failed to load reminder store: %w", err)
	}

	if err := fn(doc); err != nil {
		if errors.Is(err, ErrNoChange) {
			return doc, nil
		}
		return nil, err
	}

	if err := s.backend.Save(ctx, doc); err != nil {
		return doc, fmt.Errorf("failed to save reminder store: %w", err)
	}
	return doc, nil
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
