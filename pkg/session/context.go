package session

import (
	"context"
	"errors"
)

// ErrNotProvided is returned when no Store was attached to the context.
var ErrNotProvided = errors.New("session: store not provided in context")

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

// MustFromContext panics when no Store was provided.
func MustFromContext(ctx context.Context) *Store {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}
