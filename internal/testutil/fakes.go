// Package testutil holds in-memory collaborators shared by package tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
	"github.com/thelux31/hiddendevsappforwhatever/internal/domain"
)

// Discard is a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type CallKind string

const (
	CallRespond  CallKind = "respond"
	CallDefer    CallKind = "defer"
	CallEdit     CallKind = "edit"
	CallFollowup CallKind = "followup"
)

type Call struct {
	Kind    CallKind
	Target  dispatch.Target
	Content string
	Private bool
}

// Transport records every outbound reply. Setting Err[kind] makes that kind
// of call fail.
type Transport struct {
	mu    sync.Mutex
	calls []Call
	Err   map[CallKind]error
}

func NewTransport() *Transport {
	return &Transport{Err: map[CallKind]error{}}
}

func (t *Transport) record(c Call) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.Err[c.Kind]; err != nil {
		return err
	}
	t.calls = append(t.calls, c)
	return nil
}

func (t *Transport) Respond(_ context.Context, tg dispatch.Target, m dispatch.Message) error {
	return t.record(Call{Kind: CallRespond, Target: tg, Content: m.Content, Private: m.Private})
}

func (t *Transport) Defer(_ context.Context, tg dispatch.Target, private bool) error {
	return t.record(Call{Kind: CallDefer, Target: tg, Private: private})
}

func (t *Transport) EditResponse(_ context.Context, tg dispatch.Target, content string) error {
	return t.record(Call{Kind: CallEdit, Target: tg, Content: content})
}

func (t *Transport) Followup(_ context.Context, tg dispatch.Target, m dispatch.Message) error {
	return t.record(Call{Kind: CallFollowup, Target: tg, Content: m.Content, Private: m.Private})
}

// Calls returns a copy of the delivered calls in order.
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Call(nil), t.calls...)
}

// Only returns delivered calls of one kind.
func (t *Transport) Only(kind CallKind) []Call {
	var out []Call
	for _, c := range t.Calls() {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Capabilities serves a fixed capability set per caller.
type Capabilities struct {
	ByCaller map[string]dispatch.CapabilitySet
	Err      error
	Calls    int
}

func (c *Capabilities) CapabilitiesOf(_ context.Context, callerID, _ string) (dispatch.CapabilitySet, error) {
	c.Calls++
	if c.Err != nil {
		return nil, c.Err
	}
	if set, ok := c.ByCaller[callerID]; ok {
		return set, nil
	}
	return dispatch.NewCapabilitySet(), nil
}

type Moderator struct {
	mu      sync.Mutex
	Actions []domain.ModerationAction
	Err     error
}

func (m *Moderator) Moderate(_ context.Context, a domain.ModerationAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Actions = append(m.Actions, a)
	return m.Err
}

type Translator struct {
	mu    sync.Mutex
	Out   string
	Err   error
	Calls int
	Last  struct{ Text, Lang string }
	// Deadline is whether the last call's ctx carried one.
	Deadline bool
}

func (t *Translator) Translate(ctx context.Context, text, lang string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Calls++
	t.Last.Text, t.Last.Lang = text, lang
	_, t.Deadline = ctx.Deadline()
	return t.Out, t.Err
}

// Questions always returns Q, or Err when set.
type Questions struct {
	Q   domain.Question
	Err error
}

func (q Questions) Random(context.Context) (domain.Question, error) {
	return q.Q, q.Err
}

type Latency time.Duration

func (l Latency) Latency() time.Duration { return time.Duration(l) }
