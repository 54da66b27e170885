package query

import (
	"context"
	"fmt"

	"github.com/recdash/recdash/pkg/recommendations"
)

// Mutator moves recommendations between the active and archived lists.
type Mutator interface {
	Archive(ctx context.Context, id string) (recommendations.SuccessResponse, error)
	Unarchive(ctx context.Context, id string) (recommendations.SuccessResponse, error)
}

// Actions runs archive and unarchive against the server and reconciles the cache.
type Actions struct {
	svc   Mutator
	cache *Cache
}

func NewActions(svc Mutator, cache *Cache) *Actions {
	return &Actions{svc: svc, cache: cache}
}

// Archive archives id, which is shown in the list identified by from.
// The cache is only touched once the server confirmed the change.
func (a *Actions) Archive(ctx context.Context, from Key, id string) error {
	if _, err := a.svc.Archive(ctx, id); err != nil {
		return fmt.Errorf("archive %s: %w", id, err)
	}
	a.settle(from, id)
	return nil
}

// Unarchive restores id, which is shown in the list identified by from.
func (a *Actions) Unarchive(ctx context.Context, from Key, id string) error {
	if _, err := a.svc.Unarchive(ctx, id); err != nil {
		return fmt.Errorf("unarchive %s: %w", id, err)
	}
	a.settle(from, id)
	return nil
}

func (a *Actions) settle(from Key, id string) {
	a.cache.Remove(from, id)
	a.cache.Invalidate()
}
