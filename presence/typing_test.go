package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// loopStub collects posted callbacks the way the session event loop
// would, so expiry stays deterministic in tests.
type loopStub struct {
	calls chan func()
}

func newLoopStub() *loopStub {
	return &loopStub{calls: make(chan func(), 16)}
}

func (l *loopStub) post(fn func()) {
	l.calls <- fn
}

// runOne applies the next posted callback, waiting up to timeout.
func (l *loopStub) runOne(t *testing.T, timeout time.Duration) bool {
	t.Helper()
	select {
	case fn := <-l.calls:
		fn()
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestDebouncer_ActivatesAndExpires(t *testing.T) {
	req := require.New(t)
	loop := newLoopStub()

	var changes []bool
	d := NewDebouncer(150*time.Millisecond, loop.post, func(_ Indicator, active bool) {
		changes = append(changes, active)
	})

	// When a typing signal arrives
	d.Signal("Alice")

	// Then the indicator is active inside the window
	ind, active := d.Active()
	req.True(active)
	req.Equal("Alice", ind.DisplayName)

	// And it expires once the window elapses
	req.True(loop.runOne(t, time.Second))
	_, active = d.Active()
	req.False(active)
	req.Equal([]bool{true, false}, changes)
}

func TestDebouncer_RefreshRestartsSingleTimer(t *testing.T) {
	req := require.New(t)
	loop := newLoopStub()

	d := NewDebouncer(200*time.Millisecond, loop.post, func(Indicator, bool) {})

	d.Signal("Alice")
	time.Sleep(100 * time.Millisecond)
	d.Signal("Alice again")

	// The first timer was superseded: even if it fires, its stale
	// generation is ignored and the indicator stays active.
	if loop.runOne(t, 150*time.Millisecond) {
		ind, active := d.Active()
		req.True(active)
		req.Equal("Alice again", ind.DisplayName)
	}

	// The refreshed window eventually expires exactly once.
	req.True(loop.runOne(t, time.Second))
	for {
		if !loop.runOne(t, 50*time.Millisecond) {
			break
		}
	}
	_, active := d.Active()
	req.False(active)
}

func TestDebouncer_StaleExpiryIsIgnored(t *testing.T) {
	req := require.New(t)
	loop := newLoopStub()

	d := NewDebouncer(time.Hour, loop.post, func(Indicator, bool) {})

	d.Signal("Alice")
	stale := d.gen
	d.Signal("Alice")

	// A timer armed before the refresh must not clear the indicator.
	d.expire(stale)
	_, active := d.Active()
	req.True(active)

	d.expire(d.gen)
	_, active = d.Active()
	req.False(active)
}

func TestDebouncer_ClearIsImmediate(t *testing.T) {
	req := require.New(t)
	loop := newLoopStub()

	var changes []bool
	d := NewDebouncer(time.Hour, loop.post, func(_ Indicator, active bool) {
		changes = append(changes, active)
	})

	// A durable message landing while active clears without waiting
	// for the window.
	d.Signal("Alice")
	d.Clear()

	_, active := d.Active()
	req.False(active)
	req.Equal([]bool{true, false}, changes)

	// Clearing an idle debouncer notifies nothing.
	d.Clear()
	req.Equal([]bool{true, false}, changes)
}
