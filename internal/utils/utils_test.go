package utils

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"":        logrus.InfoLevel,
		"INFO":    logrus.InfoLevel,
		"warn":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"fatal":   logrus.FatalLevel,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AL", Initials("alice"))
	assert.Equal(t, "B", Initials(" b "))
	assert.Equal(t, "ÉM", Initials("émile"))
	assert.Equal(t, "", Initials(""))
}

func TestSameStrings(t *testing.T) {
	assert.True(t, SameStrings(nil, []string{}))
	assert.True(t, SameStrings([]string{"a", "b"}, []string{"a", "b"}))
	assert.False(t, SameStrings([]string{"a", "b"}, []string{"b", "a"}))
	assert.False(t, SameStrings([]string{"a"}, []string{"a", "b"}))
}

func TestStateLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.sqlite")

	first, err := NewStateLock(path)
	require.NoError(t, err)
	require.NoError(t, first.TryLock())
	defer first.Unlock()
	assert.Equal(t, path+".lock", first.Path())

	second, err := NewStateLock(path)
	require.NoError(t, err)
	assert.ErrorIs(t, second.TryLock(), ErrStateLocked)

	require.NoError(t, first.Unlock())
	require.NoError(t, second.TryLock())
	require.NoError(t, second.Unlock())
}
