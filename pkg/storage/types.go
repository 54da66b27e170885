package storage

import (
	"context"
	"time"
)

// Entry is a single persisted key/value pair.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// KV is the durable key/value contract the session and theme stores persist through.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

var (
	_ KV = (*DB)(nil)
	_ KV = (*Memory)(nil)
)
