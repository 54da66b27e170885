package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "state.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDBSetGetDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.Get(ctx, KeyAuthToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Set(ctx, KeyAuthToken, "first"))
	require.NoError(t, db.Set(ctx, KeyAuthToken, "second"))

	got, err := db.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	require.NoError(t, db.Delete(ctx, KeyAuthToken))
	require.NoError(t, db.Delete(ctx, KeyAuthToken))
	_, err = db.Get(ctx, KeyAuthToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDBSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.sqlite")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Set(ctx, KeyDarkMode, "true"))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Get(ctx, KeyDarkMode)
	require.NoError(t, err)
	assert.Equal(t, "true", got)

	entries, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, KeyDarkMode, entries[0].Key)
	assert.False(t, entries[0].UpdatedAt.IsZero())
}

func TestDBRejectsEmptyKey(t *testing.T) {
	db := openTestDB(t)
	assert.Error(t, db.Set(context.Background(), "", "x"))
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, "k", "v"))
	v, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}
