package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLimiter returns a limiter with a controllable clock. The sweep
// goroutine still runs but is irrelevant at test timescales.
func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *time.Time) {
	l := New(cfg)
	t.Cleanup(l.Stop)

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }
	return l, &current
}

func TestLimiter_FixedWindow(t *testing.T) {
	cfg := Config{Window: 60 * time.Second, MaxRequests: 3}
	l, clock := newTestLimiter(t, cfg)

	// The first maxRequests calls in a window pass, everything after is limited.
	assert.False(t, l.Check("session-a"))
	assert.False(t, l.Check("session-a"))
	assert.False(t, l.Check("session-a"))
	assert.True(t, l.Check("session-a"))
	assert.True(t, l.Check("session-a"))

	// Past the window boundary the key behaves as brand-new.
	*clock = clock.Add(60*time.Second + time.Millisecond)
	assert.False(t, l.Check("session-a"))
	assert.Equal(t, 2, l.Remaining("session-a"))
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	cfg := Config{Window: time.Minute, MaxRequests: 2}
	l, _ := newTestLimiter(t, cfg)

	assert.False(t, l.Check("session-a"))
	assert.False(t, l.Check("session-a"))
	assert.True(t, l.Check("session-a"))

	// Exhausting key A must not affect key B.
	assert.Equal(t, 2, l.Remaining("session-b"))
	assert.False(t, l.Check("session-b"))
}

func TestLimiter_Remaining(t *testing.T) {
	cfg := Config{Window: time.Minute, MaxRequests: 2}
	l, clock := newTestLimiter(t, cfg)

	assert.Equal(t, 2, l.Remaining("unseen"), "unseen key has the full budget")

	l.Check("session-a")
	assert.Equal(t, 1, l.Remaining("session-a"))
	l.Check("session-a")
	l.Check("session-a")
	assert.Equal(t, 0, l.Remaining("session-a"), "never negative")

	*clock = clock.Add(2 * time.Minute)
	assert.Equal(t, 2, l.Remaining("session-a"), "expired window restores the budget")
}

func TestLimiter_ResetAt(t *testing.T) {
	cfg := Config{Window: time.Minute, MaxRequests: 2}
	l, clock := newTestLimiter(t, cfg)

	_, ok := l.ResetAt("unseen")
	assert.False(t, ok)

	l.Check("session-a")
	resetAt, ok := l.ResetAt("session-a")
	require.True(t, ok)
	assert.Equal(t, clock.Add(time.Minute), resetAt)
}

func TestLimiter_SweepRemovesExpiredEntries(t *testing.T) {
	cfg := Config{Window: time.Minute, MaxRequests: 2}
	l, clock := newTestLimiter(t, cfg)

	l.Check("session-a")
	l.Check("session-b")

	*clock = clock.Add(2 * time.Minute)
	l.sweep()

	l.mu.Lock()
	assert.Empty(t, l.entries)
	l.mu.Unlock()

	// Sweeping never affects Check correctness.
	assert.False(t, l.Check("session-a"))
}
