// Package breaker implements a sliding-window circuit breaker used to back
// a source's availability predicate: a source failing hard is marked
// unavailable for a cooldown instead of being retried into the ground.
package breaker

import (
	"sync"
	"time"
)

// State is the circuit breaker's current posture.
type State int

const (
	Closed State = iota
	HalfOpen
	Open
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case HalfOpen:
		return "half_open"
	case Open:
		return "open"
	default:
		return "unknown"
	}
}

type result struct {
	t  time.Time
	ok bool
}

// Breaker tracks call outcomes over a sliding window and trips open once
// the failure rate within that window crosses a threshold.
type Breaker struct {
	mu               sync.Mutex
	state            State
	window           time.Duration
	cooldown         time.Duration
	failureThreshold float64
	minSamples       int
	lastTransition   time.Time
	results          []result
	halfOpenInFlight bool
}

// New creates a Breaker. window is how far back Record looks when
// computing the failure rate; cooldown is how long Open is held before a
// single probe call is allowed through; failureThreshold is the fraction of
// failures (within minSamples or more) that trips the breaker open.
func New(window, cooldown time.Duration, failureThreshold float64, minSamples int) *Breaker {
	return &Breaker{
		state:            Closed,
		window:           window,
		cooldown:         cooldown,
		failureThreshold: failureThreshold,
		minSamples:       minSamples,
		lastTransition:   time.Now(),
	}
}

// State reports the breaker's current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call should proceed. In Open state, calls are
// rejected until the cooldown elapses, at which point exactly one probe is
// allowed through (HalfOpen).
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Open:
		if time.Since(b.lastTransition) >= b.cooldown {
			b.state = HalfOpen
			b.lastTransition = time.Now()
			b.halfOpenInFlight = true
			return true
		}
		return false
	case HalfOpen:
		if b.halfOpenInFlight {
			return false
		}
		b.halfOpenInFlight = true
		return true
	default:
		return true
	}
}

// Record reports the outcome of a call that Allow permitted.
func (b *Breaker) Record(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()

	cutoff := now.Add(-b.window)
	filtered := b.results[:0]
	for _, r := range b.results {
		if r.t.After(cutoff) {
			filtered = append(filtered, r)
		}
	}
	b.results = append(filtered, result{t: now, ok: ok})

	total := len(b.results)
	if total < b.minSamples {
		if b.state == HalfOpen {
			b.resolveHalfOpen(ok, now)
		}
		return
	}

	fails := 0
	for _, r := range b.results {
		if !r.ok {
			fails++
		}
	}
	rate := float64(fails) / float64(total)

	switch b.state {
	case Closed:
		if rate >= b.failureThreshold {
			b.state = Open
			b.lastTransition = now
		}
	case HalfOpen:
		b.resolveHalfOpen(ok, now)
	case Open:
		// Allow() handles the Open -> HalfOpen transition.
	}
}

func (b *Breaker) resolveHalfOpen(ok bool, now time.Time) {
	if ok {
		b.state = Closed
	} else {
		b.state = Open
	}
	b.halfOpenInFlight = false
	b.lastTransition = now
}
