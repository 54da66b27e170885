package session

import (
	"context"
	"errors"
	"testing"

	"github.com/recdash/recdash/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenRecorder struct {
	tokens []string
}

func (r *tokenRecorder) SetAuthToken(token string) { r.tokens = append(r.tokens, token) }

func (r *tokenRecorder) last() string {
	if len(r.tokens) == 0 {
		return ""
	}
	return r.tokens[len(r.tokens)-1]
}

func TestRestoreWithStoredToken(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, storage.KeyAuthToken, "stored-token"))

	client := &tokenRecorder{}
	s := New(kv, client)
	assert.True(t, s.IsLoading())
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Restore(ctx))

	st := s.State()
	assert.True(t, st.IsAuthenticated)
	assert.False(t, st.IsLoading)
	assert.Equal(t, "stored-token", st.Token)
	require.NotNil(t, st.User)
	assert.Equal(t, "", st.User.Username)
	assert.Equal(t, "stored-token", client.last())
}

func TestRestoreWithoutToken(t *testing.T) {
	s := New(storage.NewMemory(), &tokenRecorder{})
	require.NoError(t, s.Restore(context.Background()))

	st := s.State()
	assert.False(t, st.IsAuthenticated)
	assert.False(t, st.IsLoading)
	assert.Nil(t, st.User)
}

func TestLoginPersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	client := &tokenRecorder{}
	s := New(kv, client)
	require.NoError(t, s.Restore(ctx))

	require.NoError(t, s.Login(ctx, "tok-1", User{Username: "jane", Email: "jane@example.com"}))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok-1", client.last())

	stored, err := kv.Get(ctx, storage.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", stored)

	fresh := New(kv, &tokenRecorder{})
	require.NoError(t, fresh.Restore(ctx))
	require.NotNil(t, fresh.State().User)
	assert.Equal(t, "jane", fresh.State().User.Username)
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	client := &tokenRecorder{}
	s := New(kv, client)
	require.NoError(t, s.Login(ctx, "tok", User{Username: "jane"}))

	require.NoError(t, s.Logout(ctx))
	st := s.State()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.Equal(t, "", client.last())

	_, err := kv.Get(ctx, storage.KeyAuthToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = kv.Get(ctx, storage.KeyAuthUser)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	s := New(storage.NewMemory(), &tokenRecorder{})
	assert.Error(t, s.Login(context.Background(), "", User{}))
	assert.False(t, s.IsAuthenticated())
}

type failingKV struct{ storage.KV }

func (failingKV) Set(context.Context, string, string) error { return errors.New("disk full") }

func TestLoginDoesNotAuthenticateWhenPersistFails(t *testing.T) {
	s := New(failingKV{storage.NewMemory()}, &tokenRecorder{})
	err := s.Login(context.Background(), "tok", User{})
	require.Error(t, err)
	assert.False(t, s.IsAuthenticated())
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemory(), &tokenRecorder{})

	var seen []bool
	cancel := s.Subscribe(func(st State) { seen = append(seen, st.IsAuthenticated) })

	require.NoError(t, s.Login(ctx, "tok", User{}))
	require.NoError(t, s.Logout(ctx))
	cancel()
	require.NoError(t, s.Login(ctx, "tok", User{}))

	assert.Equal(t, []bool{true, false}, seen)
}

func TestContextAccessors(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrNotProvided)
	assert.Panics(t, func() { MustFromContext(context.Background()) })

	s := New(storage.NewMemory(), &tokenRecorder{})
	ctx := NewContext(context.Background(), s)
	got, err := FromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, s, got)
}
