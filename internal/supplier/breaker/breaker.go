package breaker

import (
	"sync"
	"time"
)

// Breaker counts consecutive transport/parse failures against one supplier
// and short-circuits calls for a cool-down window once the threshold is hit.
// It is an availability safeguard, not a correctness mechanism; counts under
// concurrency are approximate on purpose.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	coolDown  time.Duration
	failures  int
	openedAt  time.Time

	// now is swapped in tests
	now func() time.Time
}

func New(threshold int, coolDown time.Duration) *Breaker {
	return &Breaker{
		threshold: threshold,
		coolDown:  coolDown,
		now:       time.Now,
	}
}

// Allow reports whether a call may go out to the network. While open, calls
// are refused until the cool-down has elapsed; the first call after that is
// let through as a probe.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return true
	}

	if b.now().Sub(b.openedAt) >= b.coolDown {
		// half-open: let one probe through
		b.failures = b.threshold - 1
		return true
	}

	return false
}

func (b *Breaker) Success() {
	b.mu.Lock()
	b.failures = 0
	b.mu.Unlock()
}

func (b *Breaker) Failure() {
	b.mu.Lock()
	b.failures++
	if b.failures == b.threshold {
		b.openedAt = b.now()
	}
	b.mu.Unlock()
}

func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures >= b.threshold && b.now().Sub(b.openedAt) < b.coolDown
}
