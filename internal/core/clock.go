package core

import "time"

// Clock abstracts "now" so MRP runs and ledger timestamps are
// deterministic in tests: identical inputs, including the clock,
// must produce byte-identical planned-order sets.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock is a test Clock that always returns the same instant.
type FixedClock struct {
	At time.Time
}

func (f FixedClock) Now() time.Time { return f.At }
