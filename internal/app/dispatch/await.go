package dispatch

import (
	"context"
	"sync"
	"time"
)

// MessageEvent is a plain message posted in a channel, as delivered by the
// transport. It is the secondary event handlers can wait for.
type MessageEvent struct {
	GuildID   string
	ChannelID string
	AuthorID  string
	Content   string
}

// Outcome is the result of a timed wait. Exactly one of Matched / TimedOut is
// meaningful: when TimedOut is false, Event holds the matching message.
type Outcome struct {
	Event    MessageEvent
	TimedOut bool
}

func (o Outcome) Matched() bool { return !o.TimedOut }

type waiter struct {
	match func(MessageEvent) bool
	ch    chan MessageEvent
}

// Awaiter lets handlers suspend until a matching message arrives or a
// timeout passes. Waits are single shot; messages with no pending waiter are
// dropped.
type Awaiter struct {
	mu      sync.Mutex
	waiters map[*waiter]struct{}
}

func NewAwaiter() *Awaiter {
	return &Awaiter{waiters: make(map[*waiter]struct{})}
}

// Publish hands ev to every pending waiter whose predicate accepts it. Each
// of them is retired.
func (a *Awaiter) Publish(ev MessageEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for w := range a.waiters {
		if !w.match(ev) {
			continue
		}
		delete(a.waiters, w)
		w.ch <- ev // buffered, never blocks
	}
}

// AwaitMatching blocks until pred accepts a published message or timeout
// elapses. The returned error is non-nil only when ctx ends first.
func (a *Awaiter) AwaitMatching(ctx context.Context, pred func(MessageEvent) bool, timeout time.Duration) (Outcome, error) {
	w := &waiter{match: pred, ch: make(chan MessageEvent, 1)}
	a.mu.Lock()
	a.waiters[w] = struct{}{}
	a.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev := <-w.ch:
		return Outcome{Event: ev}, nil
	case <-timer.C:
	case <-ctx.Done():
	}

	a.mu.Lock()
	_, pending := a.waiters[w]
	delete(a.waiters, w)
	a.mu.Unlock()
	if !pending {
		// Publish retired us between the deadline and the lock; the match wins.
		return Outcome{Event: <-w.ch}, nil
	}
	if err := ctx.Err(); err != nil {
		return Outcome{TimedOut: true}, err
	}
	return Outcome{TimedOut: true}, nil
}

// Pending is the number of waits not yet resolved.
func (a *Awaiter) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.waiters)
}
