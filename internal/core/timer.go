package core

import "time"

// Timer models the single logical timer that drives a page.
//
// The platform cannot cancel a tick that is already scheduled, so every tick
// carries the generation it was armed under. Arming or stopping bumps the
// generation, which makes every earlier tick stale: a new timer never runs
// alongside the one it replaced.
type Timer struct {
	gen      uint64
	interval time.Duration
	repeat   bool
	armed    bool
}

// Arm cancels whatever was armed before and arms a new timer.
// It returns the generation that ticks must present to Fire.
func (t *Timer) Arm(d time.Duration, repeat bool) uint64 {
	t.gen++
	t.interval = d
	t.repeat = repeat
	t.armed = true
	return t.gen
}

// Stop cancels the armed timer, if any.
func (t *Timer) Stop() {
	t.gen++
	t.armed = false
}

// Fire reports whether a tick of the given generation is live.
// A live one-shot timer disarms itself; a repeating one stays armed.
func (t *Timer) Fire(gen uint64) bool {
	if !t.armed || gen != t.gen {
		return false
	}
	if !t.repeat {
		t.armed = false
	}
	return true
}

// Armed reports whether a timer is currently armed.
func (t *Timer) Armed() bool {
	return t.armed
}

// Repeating reports whether the armed timer repeats.
func (t *Timer) Repeating() bool {
	return t.armed && t.repeat
}

// Interval returns the delay of the armed timer.
func (t *Timer) Interval() time.Duration {
	return t.interval
}

// Generation returns the live generation.
func (t *Timer) Generation() uint64 {
	return t.gen
}
