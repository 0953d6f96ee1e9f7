// Package presence tracks the ephemeral typing indicator. The indicator
// is decoupled from the durable timeline: it occupies a single slot,
// expires on its own, and never survives a session reset.
package presence

import "time"

// Indicator is the transient typing state shown to the user.
type Indicator struct {
	DisplayName string
	ExpiresAt   time.Time
}

// Debouncer implements the idle -> active -> idle state machine for
// inbound chat.typing signals. A signal (re)arms a single expiry timer;
// repeated signals refresh the payload and restart the timer instead of
// stacking. Signal, Clear and the expiry callback must all run on the
// session event loop: the timer fires on its own goroutine and re-enters
// the loop through post.
type Debouncer struct {
	window   time.Duration
	post     func(func())
	onChange func(Indicator, bool)

	active *Indicator
	gen    int
	timer  *time.Timer
	now    func() time.Time
}

// NewDebouncer builds a debouncer with the role's typing window.
// onChange fires with (indicator, true) on activation or refresh and
// (zero, false) when the indicator goes idle.
func NewDebouncer(window time.Duration, post func(func()), onChange func(Indicator, bool)) *Debouncer {
	return &Debouncer{
		window:   window,
		post:     post,
		onChange: onChange,
		now:      time.Now,
	}
}

// Signal transitions to active and restarts the expiry timer.
func (d *Debouncer) Signal(displayName string) {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	ind := Indicator{DisplayName: displayName, ExpiresAt: d.now().Add(d.window)}
	d.active = &ind

	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() {
		d.post(func() { d.expire(gen) })
	})
	d.onChange(ind, true)
}

// Active returns the current indicator, if any.
func (d *Debouncer) Active() (Indicator, bool) {
	if d.active == nil {
		return Indicator{}, false
	}
	return *d.active, true
}

// Clear drops the indicator immediately. Called when a durable message
// lands (the indicator must not trail behind real content) and on
// session teardown.
func (d *Debouncer) Clear() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	if d.active != nil {
		d.active = nil
		d.onChange(Indicator{}, false)
	}
}

// expire transitions back to idle unless a newer signal superseded the
// timer while the callback was in flight.
func (d *Debouncer) expire(gen int) {
	if gen != d.gen || d.active == nil {
		return
	}
	d.active = nil
	d.timer = nil
	d.onChange(Indicator{}, false)
}
