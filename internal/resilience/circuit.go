package resilience

import (
	"sync"
	"time"
)

// BreakerState is the lifecycle state of a source breaker.
type BreakerState int

const (
	// BreakerClosed lets calls through.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects calls until the cooldown elapses.
	BreakerOpen
	// BreakerHalfOpen admits one probe call to test recovery.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Breaker is a minimal circuit breaker for one external source. The chain
// runner asks Allow before a fetch and reports the outcome with Record; a
// source that keeps failing is skipped (treated as failed) until Cooldown
// elapses, at which point one probe is admitted.
type Breaker struct {
	failureThreshold int
	cooldown         time.Duration

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time

	nowFunc func() time.Time
}

// NewBreaker creates a breaker that opens after failureThreshold consecutive
// failures and probes again after cooldown.
func NewBreaker(failureThreshold int, cooldown time.Duration) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = 3
	}
	if cooldown <= 0 {
		cooldown = 5 * time.Minute
	}
	return &Breaker{
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		nowFunc:          time.Now,
	}
}

// WithNow fixes the breaker's clock for tests.
func (b *Breaker) WithNow(now func() time.Time) *Breaker {
	b.nowFunc = now
	return b
}

// Allow reports whether a call may proceed. An open breaker whose cooldown
// has elapsed transitions to half-open and admits the caller as a probe.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.nowFunc().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = BreakerHalfOpen
		return true
	default:
		return true
	}
}

// Record reports the outcome of an allowed call. Success closes the breaker
// and clears the failure run; failure increments it and opens the breaker at
// the threshold. A failed half-open probe reopens immediately.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.state = BreakerClosed
		b.failures = 0
		return
	}

	b.failures++
	if b.state == BreakerHalfOpen || b.failures >= b.failureThreshold {
		b.state = BreakerOpen
		b.openedAt = b.nowFunc()
	}
}

// State returns the current state without side effects.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// BreakerSet holds one breaker per named source.
type BreakerSet struct {
	mu       sync.Mutex
	breakers map[string]*Breaker

	failureThreshold int
	cooldown         time.Duration
}

// NewBreakerSet creates a registry of per-source breakers sharing one
// configuration.
func NewBreakerSet(failureThreshold int, cooldown time.Duration) *BreakerSet {
	return &BreakerSet{
		breakers:         make(map[string]*Breaker),
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
	}
}

// For returns the breaker for a named source, creating it on first use.
func (s *BreakerSet) For(source string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.breakers[source]
	if !ok {
		b = NewBreaker(s.failureThreshold, s.cooldown)
		s.breakers[source] = b
	}
	return b
}

// States snapshots every breaker's state for observability.
func (s *BreakerSet) States() map[string]BreakerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]BreakerState, len(s.breakers))
	for name, b := range s.breakers {
		out[name] = b.State()
	}
	return out
}
