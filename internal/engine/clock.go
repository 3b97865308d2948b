package engine

// Clock issues strictly increasing event ids.
//
// Every scheduled event is stamped from this clock, which gives the queue a
// total order: ties on due turn break by id, i.e. scheduling order. The
// engine is single-writer, so no synchronization is needed; determinism
// comes from the monotonic sequence, not from locking.
type Clock struct {
	seq int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a specific sequence number.
// Used when restoring a snapshot so new ids never collide with old ones.
func NewClockAt(start int64) *Clock {
	return &Clock{seq: start}
}

// Next returns the next id and advances the clock.
func (c *Clock) Next() int64 {
	c.seq++
	return c.seq
}

// Current returns the last issued id without advancing.
func (c *Clock) Current() int64 {
	return c.seq
}
