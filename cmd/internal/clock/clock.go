// Package clock abstracts wall-clock access so the scheduler can be
// driven deterministically in tests. Production code injects Real();
// tests inject NewFake() and move time forward explicitly.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTicker delivers ticks on C at the given interval. The
	// channel has capacity 1; ticks are dropped, never queued, when
	// the consumer falls behind.
	NewTicker(d time.Duration) *Ticker
}

// Ticker wraps a periodic timer. Call Stop when done.
type Ticker struct {
	C <-chan time.Time

	stop func()
}

func (t *Ticker) Stop() { t.stop() }

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) *Ticker {
	ticker := time.NewTicker(d)
	return &Ticker{C: ticker.C, stop: ticker.Stop}
}

// Fake is a Clock whose time stands still until Advance is called.
// Safe for concurrent use.
type Fake struct {
	mu      sync.Mutex
	current time.Time
	tickers []*fakeTicker
}

type fakeTicker struct {
	deadline time.Time
	interval time.Duration
	channel  chan time.Time
	stopped  bool
}

// NewFake returns a Fake initialized to the given instant.
func NewFake(initial time.Time) *Fake {
	return &Fake{current: initial}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *Fake) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	ticker := &fakeTicker{
		deadline: f.current.Add(d),
		interval: d,
		channel:  make(chan time.Time, 1),
	}
	f.tickers = append(f.tickers, ticker)

	return &Ticker{
		C: ticker.channel,
		stop: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			ticker.stopped = true
		},
	}
}

// Advance moves the clock forward by d and fires every ticker whose
// deadline falls within the new time, once per elapsed interval.
// Sends are non-blocking, matching time.Ticker's drop-if-full
// behavior.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = f.current.Add(d)
	for _, ticker := range f.tickers {
		for !ticker.stopped && !ticker.deadline.After(f.current) {
			select {
			case ticker.channel <- ticker.deadline:
			default:
			}
			ticker.deadline = ticker.deadline.Add(ticker.interval)
		}
	}
}
