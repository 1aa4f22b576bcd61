package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	DefaultAckDeadline = 3 * time.Second

	busyNotice     = "I'm handling too many commands right now. Try again in a moment."
	slowDownNotice = "You're sending commands too fast. Try again in a moment."
)

var errNoReply = errors.New("handler returned without replying")

// Event is a raw command invocation as delivered by the transport.
type Event struct {
	InteractionID string
	AppID         string
	Token         string
	GuildID       string
	ChannelID     string
	CallerID      string
	Command       string
	RawArgs       map[string]any
	ReceivedAt    time.Time
}

// Interaction is what a handler gets: the resolved command, bound arguments
// and the reply channel for this invocation.
type Interaction struct {
	ID         string
	GuildID    string
	ChannelID  string
	CallerID   string
	Command    *Descriptor
	Args       Args
	Response   *ResponseChannel
	ReceivedAt time.Time
	Log        *slog.Logger
}

type State int

const (
	Received State = iota
	Resolved
	Authorized
	Executing
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Received:
		return "received"
	case Resolved:
		return "resolved"
	case Authorized:
		return "authorized"
	case Executing:
		return "executing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result is the terminal state of one dispatch. Err is the error that drove
// it there, if any (including caller errors reported as Completed).
type Result struct {
	State State
	Err   error
}

type Options struct {
	// AckDeadline is the transport's window for the primary reply.
	AckDeadline time.Duration
	// MaxInFlight caps concurrently executing handlers; 0 means unbounded.
	MaxInFlight int64
	// UserRatePerSec enables per-caller rate limiting when > 0.
	UserRatePerSec float64
	UserRateBurst  int
	// Now overrides the clock, for tests.
	Now func() time.Time
}

type Dispatcher struct {
	registry  *Registry
	caps      CapabilitySource
	transport Transport
	log       *slog.Logger

	ackDeadline time.Duration
	now         func() time.Time
	sem         *semaphore.Weighted
	users       *userLimiter
}

func New(reg *Registry, caps CapabilitySource, tr Transport, log *slog.Logger, opts Options) *Dispatcher {
	d := &Dispatcher{
		registry:    reg,
		caps:        caps,
		transport:   tr,
		log:         log,
		ackDeadline: opts.AckDeadline,
		now:         opts.Now,
	}
	if d.ackDeadline <= 0 {
		d.ackDeadline = DefaultAckDeadline
	}
	if d.now == nil {
		d.now = time.Now
	}
	if opts.MaxInFlight > 0 {
		d.sem = semaphore.NewWeighted(opts.MaxInFlight)
	}
	if opts.UserRatePerSec > 0 {
		d.users = newUserLimiter(opts.UserRatePerSec, opts.UserRateBurst)
	}
	return d
}

// Dispatch runs one interaction to a terminal state. It never panics and
// always leaves the caller with at least one visible reply when the
// transport allows it.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) Result {
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = d.now()
	}
	rc := NewResponseChannel(d.transport, Target{
		InteractionID: ev.InteractionID,
		AppID:         ev.AppID,
		Token:         ev.Token,
		ChannelID:     ev.ChannelID,
	}, ev.ReceivedAt.Add(d.ackDeadline))
	rc.now = d.now

	log := d.log.With("cmd", ev.Command, "by", ev.CallerID, "guild", ev.GuildID, "interaction", ev.InteractionID)
	log.Info("slash command")
	done := step(log, "dispatch")

	res := d.run(ctx, ev, rc, log)
	done("state", res.State.String(), "reply", rc.State().String())
	return res
}

func (d *Dispatcher) run(ctx context.Context, ev Event, rc *ResponseChannel, log *slog.Logger) Result {
	desc, err := d.registry.Resolve(ev.Command)
	if err != nil {
		log.Error("cannot resolve command", "err", err)
		d.notify(ctx, rc, log, GenericFailure)
		return Result{State: Failed, Err: err}
	}

	if d.users != nil && !d.users.Allow(ev.CallerID, d.now()) {
		log.Info("rate limited")
		return d.reject(ctx, rc, log, &CallerError{Msg: slowDownNotice})
	}

	if desc.Requires != CapNone {
		caps, err := d.caps.CapabilitiesOf(ctx, ev.CallerID, ev.GuildID)
		if err != nil {
			log.Error("cannot resolve caller capabilities", "err", err)
			d.notify(ctx, rc, log, GenericFailure)
			return Result{State: Failed, Err: err}
		}
		if dec := Authorize(caps, desc.Requires); !dec.Allowed {
			log.Info("denied", "requires", string(desc.Requires), "has", caps.String())
			return d.reject(ctx, rc, log, &CallerError{Msg: dec.Reason})
		}
	}

	args, err := Bind(desc.Params, ev.RawArgs)
	if err != nil {
		log.Info("bad arguments", "err", err)
		return d.reject(ctx, rc, log, err)
	}

	if d.sem != nil {
		if !d.sem.TryAcquire(1) {
			log.Warn("too many interactions in flight")
			return d.reject(ctx, rc, log, &CallerError{Msg: busyNotice})
		}
		defer d.sem.Release(1)
	}

	ix := &Interaction{
		ID:         ev.InteractionID,
		GuildID:    ev.GuildID,
		ChannelID:  ev.ChannelID,
		CallerID:   ev.CallerID,
		Command:    desc,
		Args:       args,
		Response:   rc,
		ReceivedAt: ev.ReceivedAt,
		Log:        log,
	}
	if err := execute(ctx, desc.Handler, ix); err != nil {
		return d.fail(ctx, rc, log, err)
	}
	if !rc.Sent() {
		log.Error("no reply sent, sending failure notice", "err", errNoReply)
		d.notify(ctx, rc, log, GenericFailure)
		return Result{State: Completed, Err: errNoReply}
	}
	return Result{State: Completed}
}

func execute(ctx context.Context, h Handler, ix *Interaction) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in /%s: %v", ix.Command.Name, rec)
		}
	}()
	return h(ctx, ix)
}

// reject reports a caller error before the handler runs.
func (d *Dispatcher) reject(ctx context.Context, rc *ResponseChannel, log *slog.Logger, err error) Result {
	msg, _ := publicMessage(err)
	d.notify(ctx, rc, log, msg)
	return Result{State: Completed, Err: err}
}

// fail reports an error returned by a handler. Caller and external-service
// errors are expected outcomes; anything else is logged as a fault.
func (d *Dispatcher) fail(ctx context.Context, rc *ResponseChannel, log *slog.Logger, err error) Result {
	msg, expected := publicMessage(err)
	if expected {
		log.Info("command rejected", "err", err)
		d.notify(ctx, rc, log, msg)
		return Result{State: Completed, Err: err}
	}
	if errors.Is(err, ErrProtocolViolation) {
		log.Error("reply protocol violation", "err", err)
	} else {
		log.Error("command failed", "err", err)
	}
	d.notify(ctx, rc, log, msg)
	return Result{State: Failed, Err: err}
}

func (d *Dispatcher) notify(ctx context.Context, rc *ResponseChannel, log *slog.Logger, msg string) {
	if err := rc.Notify(ctx, msg); err != nil {
		log.Error("cannot deliver reply", "err", err)
	}
}
