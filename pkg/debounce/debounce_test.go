package debounce

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quiet = 50 * time.Millisecond

func expectNoChange[T any](t *testing.T, d *Debouncer[T]) {
	t.Helper()
	select {
	case v := <-d.Changes():
		t.Fatalf("unexpected settled value %v", v)
	case <-time.After(quiet):
	}
}

func expectChange[T any](t *testing.T, d *Debouncer[T]) T {
	t.Helper()
	select {
	case v := <-d.Changes():
		return v
	case <-time.After(time.Second):
		t.Fatal("value never settled")
	}
	var zero T
	return zero
}

func TestSettlesOnceAfterQuietPeriod(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := New(clock, 500*time.Millisecond, "")
	defer d.Stop()

	// changes at t=0, t=100, t=300
	d.Set("a")
	clock.Advance(100 * time.Millisecond)
	d.Set("ab")
	clock.Advance(200 * time.Millisecond)
	d.Set("abc")

	// t=799
	clock.Advance(499 * time.Millisecond)
	expectNoChange(t, d)
	assert.Equal(t, "", d.Value())
	assert.True(t, d.Pending())

	// t=800
	clock.Advance(time.Millisecond)
	assert.Equal(t, "abc", expectChange(t, d))
	assert.Equal(t, "abc", d.Value())
	assert.False(t, d.Pending())

	clock.Advance(5 * time.Second)
	expectNoChange(t, d)
}

func TestSupersededTimersNeverFire(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := New(clock, 100*time.Millisecond, 0)
	defer d.Stop()

	for i := 1; i <= 5; i++ {
		d.Set(i)
		clock.Advance(50 * time.Millisecond)
	}
	expectNoChange(t, d)

	clock.Advance(50 * time.Millisecond)
	assert.Equal(t, 5, expectChange(t, d))
	expectNoChange(t, d)
}

func TestZeroDelaySettlesImmediately(t *testing.T) {
	d := New(clockwork.NewFakeClock(), 0, "x")
	defer d.Stop()
	d.Set("y")
	assert.Equal(t, "y", d.Value())
	assert.Equal(t, "y", expectChange(t, d))
}

func TestStopCancelsPending(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := New(clock, 100*time.Millisecond, "init")
	d.Set("next")
	d.Stop()
	clock.Advance(time.Second)

	_, ok := <-d.Changes()
	require.False(t, ok)
	assert.Equal(t, "init", d.Value())

	d.Set("ignored")
	d.Stop()
}
