package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, ev dispatch.Event) dispatch.Result
}

// Router connects the gateway to the core: command interactions go to the
// dispatcher, plain messages go to the awaiter.
type Router struct {
	s        *discordgo.Session
	guildID  string
	registry *dispatch.Registry
	disp     Dispatcher
	await    *dispatch.Awaiter
	log      *slog.Logger

	ctx       context.Context
	ready     atomic.Bool
	connected atomic.Bool

	// gateway outage tracking; lost closes once an outage outlasts maxOutage
	mu        sync.Mutex
	maxOutage time.Duration
	outage    *time.Timer
	lost      chan struct{}
	lostOnce  sync.Once
}

// DefaultMaxOutage is how long the gateway may stay down before Lost fires.
const DefaultMaxOutage = 2 * time.Minute

func NewRouter(
	ctx context.Context,
	s *discordgo.Session,
	guildID string,
	registry *dispatch.Registry,
	disp Dispatcher,
	await *dispatch.Awaiter,
	log *slog.Logger,
) *Router {
	return &Router{
		s:         s,
		guildID:   guildID,
		registry:  registry,
		disp:      disp,
		await:     await,
		log:       log,
		ctx:       ctx,
		maxOutage: DefaultMaxOutage,
		lost:      make(chan struct{}),
	}
}

// SetMaxOutage changes how long a disconnect is tolerated. Call before Handlers.
func (r *Router) SetMaxOutage(d time.Duration) {
	if d > 0 {
		r.maxOutage = d
	}
}

// Lost is closed when the gateway stayed disconnected longer than the
// allowed outage; the process is expected to exit.
func (r *Router) Lost() <-chan struct{} { return r.lost }

// Register overwrites the guild's slash commands with the registry content.
func (r *Router) Register() error {
	appID := r.s.State.User.ID
	cmds := ApplicationCommands(r.registry.All())
	if _, err := r.s.ApplicationCommandBulkOverwrite(appID, r.guildID, cmds, discordgo.WithContext(r.ctx)); err != nil {
		return fmt.Errorf("register commands in guild %s: %w", r.guildID, err)
	}
	r.ready.Store(true)
	return nil
}

func (r *Router) Handlers() {
	r.s.AddHandler(r.onInteraction)
	r.s.AddHandler(r.onMessage)
	r.s.AddHandler(r.onConnect)
	r.s.AddHandler(r.onDisconnect)
}

// Ready reports whether commands are registered and the gateway is up.
func (r *Router) Ready() bool { return r.ready.Load() && r.connected.Load() }

func (r *Router) onConnect(_ *discordgo.Session, _ *discordgo.Connect) {
	r.connected.Store(true)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outage != nil {
		r.outage.Stop()
		r.outage = nil
		r.log.Info("gateway reconnected")
	}
}

func (r *Router) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	r.connected.Store(false)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.Warn("gateway disconnected", "max_outage", r.maxOutage)
	if r.outage != nil {
		return
	}
	r.outage = time.AfterFunc(r.maxOutage, func() {
		if r.connected.Load() {
			return
		}
		r.log.Error("gateway outage exceeded limit", "max_outage", r.maxOutage)
		r.lostOnce.Do(func() { close(r.lost) })
	})
}

func (r *Router) onInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	ev, ok := eventFromInteraction(ic, time.Now())
	if !ok {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("panic in interaction handler", "cmd", ev.Command, "panic", rec)
		}
	}()
	r.disp.Dispatch(r.ctx, ev)
}

func (r *Router) onMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if ev, ok := messageEvent(m); ok {
		r.await.Publish(ev)
	}
}
