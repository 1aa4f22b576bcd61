package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Target identifies the interaction an outbound reply belongs to. The fields
// are opaque to the core; the transport maps them to its own API.
type Target struct {
	InteractionID string
	AppID         string
	Token         string
	ChannelID     string
}

// Message is one outbound reply. Private replies are visible to the caller only.
type Message struct {
	Content string
	Private bool
}

// Transport sends interaction replies. Each method is exactly one outbound call.
type Transport interface {
	Respond(ctx context.Context, t Target, msg Message) error
	Defer(ctx context.Context, t Target, private bool) error
	EditResponse(ctx context.Context, t Target, content string) error
	Followup(ctx context.Context, t Target, msg Message) error
}

type ResponseState int

const (
	Unacknowledged ResponseState = iota
	PrimarySent
	Edited
)

func (s ResponseState) String() string {
	switch s {
	case Unacknowledged:
		return "unacknowledged"
	case PrimarySent:
		return "primary_sent"
	case Edited:
		return "edited"
	}
	return fmt.Sprintf("ResponseState(%d)", int(s))
}

// ResponseChannel enforces the reply contract of one interaction: a single
// primary reply before the acknowledgement deadline, at most one edit of it,
// and any number of followups once it exists.
type ResponseChannel struct {
	transport Transport
	target    Target
	deadline  time.Time
	now       func() time.Time

	mu        sync.Mutex
	state     ResponseState
	deferred  bool
	private   bool // visibility of the deferred placeholder
	followups int
}

func NewResponseChannel(tr Transport, t Target, deadline time.Time) *ResponseChannel {
	return &ResponseChannel{transport: tr, target: t, deadline: deadline, now: time.Now}
}

func (c *ResponseChannel) State() ResponseState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Sent reports whether the primary slot has been consumed.
func (c *ResponseChannel) Sent() bool { return c.State() != Unacknowledged }

// Followups is the number of followups delivered so far.
func (c *ResponseChannel) Followups() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.followups
}

// Remaining is the time left before the acknowledgement deadline.
func (c *ResponseChannel) Remaining() time.Duration {
	return c.deadline.Sub(c.now())
}

func (c *ResponseChannel) SendPrimary(ctx context.Context, content string, private bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkPrimaryLocked(); err != nil {
		return err
	}
	if err := c.transport.Respond(ctx, c.target, Message{Content: content, Private: private}); err != nil {
		return fmt.Errorf("send primary: %w", err)
	}
	c.state = PrimarySent
	return nil
}

// Defer acknowledges the interaction without content. The deferred reply is
// filled in later with EditPrimary.
func (c *ResponseChannel) Defer(ctx context.Context, private bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkPrimaryLocked(); err != nil {
		return err
	}
	if err := c.transport.Defer(ctx, c.target, private); err != nil {
		return fmt.Errorf("defer: %w", err)
	}
	c.state = PrimarySent
	c.deferred = true
	c.private = private
	return nil
}

func (c *ResponseChannel) checkPrimaryLocked() error {
	if c.state != Unacknowledged {
		return ErrAlreadySent
	}
	if !c.now().Before(c.deadline) {
		return ErrAckDeadlineExceeded
	}
	return nil
}

func (c *ResponseChannel) EditPrimary(ctx context.Context, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Unacknowledged:
		return ErrNothingToEdit
	case Edited:
		return ErrAlreadyEdited
	}
	if err := c.transport.EditResponse(ctx, c.target, content); err != nil {
		return fmt.Errorf("edit primary: %w", err)
	}
	c.state = Edited
	return nil
}

func (c *ResponseChannel) SendFollowup(ctx context.Context, content string, private bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Unacknowledged {
		return ErrChannelNotOpen
	}
	if err := c.transport.Followup(ctx, c.target, Message{Content: content, Private: private}); err != nil {
		return fmt.Errorf("send followup: %w", err)
	}
	c.followups++
	return nil
}

// Notify sends text privately through whichever slot is still available:
// the primary reply if unacknowledged, the placeholder of a private deferred
// reply, otherwise a private followup. A public placeholder is never used.
func (c *ResponseChannel) Notify(ctx context.Context, content string) error {
	c.mu.Lock()
	state, deferred, private := c.state, c.deferred, c.private
	c.mu.Unlock()

	if state == Unacknowledged {
		return c.SendPrimary(ctx, content, true)
	}
	// an empty deferred reply would otherwise stay as "thinking..."
	if deferred && private && state == PrimarySent {
		return c.EditPrimary(ctx, content)
	}
	return c.SendFollowup(ctx, content, true)
}
