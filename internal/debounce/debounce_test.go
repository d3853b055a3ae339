package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs every timer that became due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

func TestDebouncerCollapsesBurst(t *testing.T) {
	clock := &fakeClock{}
	d := New(120*time.Millisecond, WithClock(clock))

	var calls []int
	for _, w := range []int{500, 800, 1300} {
		w := w
		d.Call(func() { calls = append(calls, w) })
		clock.Advance(50 * time.Millisecond)
	}
	assert.Empty(t, calls)

	clock.Advance(70 * time.Millisecond)
	require.Len(t, calls, 1)
	assert.Equal(t, 1300, calls[0])

	clock.Advance(time.Second)
	assert.Len(t, calls, 1)
}

func TestDebouncerSeparateBursts(t *testing.T) {
	clock := &fakeClock{}
	d := New(120*time.Millisecond, WithClock(clock))

	count := 0
	d.Call(func() { count++ })
	clock.Advance(200 * time.Millisecond)
	d.Call(func() { count++ })
	clock.Advance(200 * time.Millisecond)

	assert.Equal(t, 2, count)
}

func TestDebouncerStop(t *testing.T) {
	clock := &fakeClock{}
	d := New(120*time.Millisecond, WithClock(clock))

	called := false
	d.Call(func() { called = true })
	d.Stop()
	clock.Advance(time.Second)

	assert.False(t, called)
}

func TestDebouncerIgnoresStaleTimer(t *testing.T) {
	clock := &fakeClock{}
	d := New(10*time.Millisecond, WithClock(clock))

	var got []string
	d.Call(func() { got = append(got, "first") })
	first := clock.timers[0]

	d.Call(func() { got = append(got, "second") })
	// Simulate the first timer firing even though Stop was requested.
	first.fn()
	assert.Empty(t, got)

	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"second"}, got)
}

func TestDebouncerWallClock(t *testing.T) {
	d := New(20 * time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, d.Delay())

	done := make(chan int, 4)
	for i := 1; i <= 3; i++ {
		i := i
		d.Call(func() { done <- i })
	}

	select {
	case v := <-done:
		assert.Equal(t, 3, v)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never ran")
	}

	select {
	case v := <-done:
		t.Fatalf("unexpected extra call %d", v)
	case <-time.After(100 * time.Millisecond):
	}
}
