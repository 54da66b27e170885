package filters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddIsIdempotent(t *testing.T) {
	s := New()
	s.Add("CIS")
	s.Add("AWS")
	s.Add("CIS")
	s.Add("")
	assert.Equal(t, []string{"CIS", "AWS"}, s.Tags())
}

func TestRemove(t *testing.T) {
	s := New()
	s.Set([]string{"a", "b", "c"})
	s.Remove("missing")
	assert.Equal(t, []string{"a", "b", "c"}, s.Tags())
	s.Remove("b")
	assert.Equal(t, []string{"a", "c"}, s.Tags())
	assert.False(t, s.Has("b"))
}

func TestToggleAndClear(t *testing.T) {
	s := New()
	assert.True(t, s.Toggle("Storage"))
	assert.True(t, s.Has("Storage"))
	assert.False(t, s.Toggle("Storage"))
	assert.Equal(t, 0, s.Len())

	s.Set([]string{"x", "y"})
	s.Clear()
	assert.Empty(t, s.Tags())
}

func TestSetDropsDuplicatesAndReportsChange(t *testing.T) {
	s := New()
	assert.True(t, s.Set([]string{"b", "a", "b", ""}))
	assert.Equal(t, []string{"b", "a"}, s.Tags())
	assert.False(t, s.Set([]string{"b", "a"}))
	assert.True(t, s.Set([]string{"a", "b"}))
}

func TestTagsReturnsCopy(t *testing.T) {
	s := New()
	s.Add("a")
	tags := s.Tags()
	tags[0] = "mutated"
	assert.Equal(t, []string{"a"}, s.Tags())
}

func TestKeyIsOrderIndependent(t *testing.T) {
	a, b := New(), New()
	a.Set([]string{"NIST", "CIS"})
	b.Set([]string{"CIS", "NIST"})
	assert.Equal(t, "CIS,NIST", a.Key())
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "", New().Key())
}

func TestContextAccessors(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrNotProvided)
	assert.Panics(t, func() { MustFromContext(context.Background()) })

	s := New()
	got, err := FromContext(NewContext(context.Background(), s))
	require.NoError(t, err)
	assert.Same(t, s, got)
}
