package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(start time.Time) (*time.Time, func() time.Time) {
	now := start
	return &now, func() time.Time { return now }
}

func TestFixedWindow_DeniesBeyondMax(t *testing.T) {
	l := NewFixedWindow(Config{Window: time.Second, MaxRequests: 3})
	now, clock := fixedClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	l.now = clock

	expected := []bool{true, true, true, false}
	for i, want := range expected {
		result := l.Check("10.0.0.1")
		assert.Equal(t, want, result.Allowed, "call %d", i+1)
	}

	// Denied calls do not keep counting; the window still resets on time.
	*now = now.Add(1100 * time.Millisecond)
	result := l.Check("10.0.0.1")
	assert.True(t, result.Allowed)
	assert.Equal(t, 2, result.Remaining)
}

func TestFixedWindow_RemainingAndReset(t *testing.T) {
	l := NewFixedWindow(Config{Window: time.Minute, MaxRequests: 5})
	now, clock := fixedClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	l.now = clock

	first := l.Check("client-a")
	assert.True(t, first.Allowed)
	assert.Equal(t, 4, first.Remaining)
	assert.Equal(t, now.Add(time.Minute), first.ResetAt)

	second := l.Check("client-a")
	assert.Equal(t, 3, second.Remaining)
	assert.Equal(t, first.ResetAt, second.ResetAt)
}

func TestFixedWindow_IdentifiersAreIndependent(t *testing.T) {
	l := NewFixedWindow(Config{Window: time.Minute, MaxRequests: 1})

	assert.True(t, l.Check("a").Allowed)
	assert.False(t, l.Check("a").Allowed)
	assert.True(t, l.Check("b").Allowed)
}

func TestFixedWindow_PruneDropsExpiredEntries(t *testing.T) {
	l := NewFixedWindow(Config{Window: time.Second, MaxRequests: 3})
	now, clock := fixedClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	l.now = clock

	l.Check("a")
	l.Check("b")
	*now = now.Add(2 * time.Second)

	l.mu.Lock()
	l.pruneLocked(*now)
	remaining := len(l.entries)
	l.mu.Unlock()

	assert.Equal(t, 0, remaining)
}

func TestFixedWindow_Defaults(t *testing.T) {
	l := NewFixedWindow(Config{})
	assert.Equal(t, time.Minute, l.cfg.Window)
	assert.Equal(t, 60, l.cfg.MaxRequests)
}
