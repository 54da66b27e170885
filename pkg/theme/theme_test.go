package theme

import (
	"context"
	"testing"

	"github.com/recdash/recdash/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := New(kv)
	require.NoError(t, s.Restore(ctx))
	assert.False(t, s.IsDark())

	dark, err := s.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, dark)
	v, err := kv.Get(ctx, storage.KeyDarkMode)
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	restored := New(kv)
	require.NoError(t, restored.Restore(ctx))
	assert.True(t, restored.IsDark())

	dark, err = s.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, dark)
	_, err = kv.Get(ctx, storage.KeyDarkMode)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAnyStoredValueMeansDark(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, storage.KeyDarkMode, "1"))
	s := New(kv)
	require.NoError(t, s.Restore(ctx))
	assert.True(t, s.IsDark())
}
