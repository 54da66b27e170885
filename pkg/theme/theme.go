// Package theme persists the dark-mode preference.
package theme

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/recdash/recdash/pkg/storage"
)

type Store struct {
	kv storage.KV

	mu   sync.RWMutex
	dark bool
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// Restore loads the stored flag. Any stored value turns dark mode on.
func (s *Store) Restore(ctx context.Context) error {
	v, err := s.kv.Get(ctx, storage.KeyDarkMode)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("could not read theme: %w", err)
	}
	s.mu.Lock()
	s.dark = v != ""
	s.mu.Unlock()
	return nil
}

func (s *Store) IsDark() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dark
}

// Set stores "true" for dark mode and removes the key for light mode.
func (s *Store) Set(ctx context.Context, dark bool) error {
	var err error
	if dark {
		err = s.kv.Set(ctx, storage.KeyDarkMode, "true")
	} else {
		err = s.kv.Delete(ctx, storage.KeyDarkMode)
	}
	if err != nil {
		return fmt.Errorf("could not persist theme: %w", err)
	}
	s.mu.Lock()
	s.dark = dark
	s.mu.Unlock()
	return nil
}

// Toggle flips the flag and returns the new value.
func (s *Store) Toggle(ctx context.Context) (bool, error) {
	next := !s.IsDark()
	if err := s.Set(ctx, next); err != nil {
		return !next, err
	}
	return next, nil
}
