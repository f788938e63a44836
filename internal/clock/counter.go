package clock

import "sync/atomic"

// Counter is a monotonically increasing version counter. The leader owns
// exactly one Counter; followers never generate versions, they only compare
// versions delivered to them.
//
// The zero value is ready to use and starts counting at 1.
type Counter struct {
	v atomic.Int64
}

// NewCounter creates a counter whose first Next call returns 1.
func NewCounter() *Counter {
	return &Counter{}
}

// Next assigns and returns the next version. Versions are strictly
// increasing and never reused, even under concurrent callers.
func (c *Counter) Next() int64 {
	return c.v.Add(1)
}

// Current returns the most recently assigned version, or 0 if no version
// has been assigned yet.
func (c *Counter) Current() int64 {
	return c.v.Load()
}
