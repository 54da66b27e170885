// Package filters holds the process-wide set of selected tags.
//
// Tags from every category (frameworks, providers, classes, reasons) share one
// flat set and are told apart by their label alone.
package filters

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/recdash/recdash/internal/utils"
)

// ErrNotProvided is returned when no Store was attached to the context.
var ErrNotProvided = errors.New("filters: store not provided in context")

type Store struct {
	mu   sync.RWMutex
	tags []string
}

func New() *Store {
	return &Store{}
}

// Add selects tag. Adding a selected tag changes nothing.
func (s *Store) Add(tag string) {
	if tag == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.tags, tag) >= 0 {
		return
	}
	s.tags = append(s.tags, tag)
}

// Remove deselects tag. Removing an unselected tag changes nothing.
func (s *Store) Remove(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.tags, tag); i >= 0 {
		s.tags = append(s.tags[:i:i], s.tags[i+1:]...)
	}
}

// Toggle flips tag and reports whether it is now selected.
func (s *Store) Toggle(tag string) bool {
	if tag == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.tags, tag); i >= 0 {
		s.tags = append(s.tags[:i:i], s.tags[i+1:]...)
		return false
	}
	s.tags = append(s.tags, tag)
	return true
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.tags = nil
	s.mu.Unlock()
}

// Set replaces the selection, dropping empty and repeated tags. It reports whether anything changed.
func (s *Store) Set(tags []string) bool {
	next := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" && indexOf(next, t) < 0 {
			next = append(next, t)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if utils.SameStrings(s.tags, next) {
		return false
	}
	s.tags = next
	return true
}

// Tags returns a copy of the selection in insertion order.
func (s *Store) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

func (s *Store) Has(tag string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.tags, tag) >= 0
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tags)
}

// Key returns the selection sorted and comma-joined, so that two selections
// holding the same tags in a different order share one cached list.
func (s *Store) Key() string {
	tags := s.Tags()
	sort.Strings(tags)
	return strings.Join(tags, ",")
}

func indexOf(tags []string, tag string) int {
	for i, t := range tags {
		if t == tag {
			return i
		}
	}
	return -1
}

type ctxKey struct{}

func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Store, error) {
	s, ok := ctx.Value(ctxKey{}).(*Store)
	if !ok || s == nil {
		return nil, ErrNotProvided
	}
	return s, nil
}

func MustFromContext(ctx context.Context) *Store {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}
