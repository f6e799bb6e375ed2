package crawler

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCaptchaTimeout = errors.New("captcha was not solved in time")

type Decision int

const (
	// Retry extracts the episode once more.
	Retry Decision = iota
	// Skip gives up on the episode.
	Skip
)

func (d Decision) String() string {
	if d == Retry {
		return "retry"
	}

	return "skip"
}

// Gate suspends a crawl on a challenge until someone answers. It holds at
// most one outstanding ticket, and one answer wakes at most one waiter.
type Gate struct {
	mu     sync.Mutex
	ticket *Ticket
}

type Ticket struct {
	gate *Gate
	ch   chan Decision
}

// Arm issues a new ticket. A previously issued ticket that was never
// answered is abandoned and can no longer be resolved.
func (g *Gate) Arm() *Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := &Ticket{gate: g, ch: make(chan Decision, 1)}
	g.ticket = t

	return t
}

// Current returns the ticket a crawl is waiting on, or nil.
func (g *Gate) Current() *Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.ticket
}

// Armed reports whether a crawl is waiting for an answer.
func (g *Gate) Armed() bool {
	return g.Current() != nil
}

// Pending reports whether t is still waiting for an answer.
func (t *Ticket) Pending() bool {
	return t.gate.Current() == t
}

// Resume asks the crawl waiting on t to retry. It returns false once t was
// answered, timed out or replaced by a newer ticket, so a late answer never
// reaches a challenge it was not given for.
func (t *Ticket) Resume() bool {
	return t.gate.resolve(t, Retry)
}

// Skip asks the crawl waiting on t to drop the episode.
func (t *Ticket) Skip() bool {
	return t.gate.resolve(t, Skip)
}

func (g *Gate) resolve(t *Ticket, d Decision) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if t == nil || g.ticket != t {
		return false
	}

	t.ch <- d
	g.ticket = nil

	return true
}

// Wait blocks until the ticket is answered, ctx is done or timeout passes.
// A timeout of zero waits without limit.
func (t *Ticket) Wait(ctx context.Context, timeout time.Duration) (Decision, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case d := <-t.ch:
		return d, nil
	case <-ctx.Done():
		t.disarm()
		return Skip, ctx.Err()
	case <-expired:
		t.disarm()
		return Skip, ErrCaptchaTimeout
	}
}

func (t *Ticket) disarm() {
	t.gate.mu.Lock()
	defer t.gate.mu.Unlock()

	if t.gate.ticket == t {
		t.gate.ticket = nil
	}
}
