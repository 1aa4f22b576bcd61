package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
	"github.com/thelux31/hiddendevsappforwhatever/internal/testutil"
)

type commander interface {
	Commands() []dispatch.Descriptor
}

type rig struct {
	tr   *testutil.Transport
	caps *testutil.Capabilities
	d    *dispatch.Dispatcher
	logs *bytes.Buffer // read only after the dispatch returned
}

func newRig(t *testing.T, svcs ...commander) *rig {
	t.Helper()
	reg := dispatch.NewRegistry()
	for _, s := range svcs {
		for _, d := range s.Commands() {
			require.NoError(t, reg.Register(d))
		}
	}
	reg.Freeze()
	r := &rig{
		tr:   testutil.NewTransport(),
		caps: &testutil.Capabilities{ByCaller: map[string]dispatch.CapabilitySet{}},
		logs: &bytes.Buffer{},
	}
	log := slog.New(slog.NewTextHandler(r.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r.d = dispatch.New(reg, r.caps, r.tr, log, dispatch.Options{})
	return r
}

func (r *rig) run(cmd, caller string, args map[string]any) dispatch.Result {
	return r.runAt(cmd, caller, args, time.Time{})
}

// runAt dispatches as if the interaction arrived at receivedAt (zero = now).
func (r *rig) runAt(cmd, caller string, args map[string]any, receivedAt time.Time) dispatch.Result {
	return r.d.Dispatch(context.Background(), dispatch.Event{
		InteractionID: "i-" + cmd,
		GuildID:       "g1",
		ChannelID:     "c1",
		CallerID:      caller,
		Command:       cmd,
		RawArgs:       args,
		ReceivedAt:    receivedAt,
	})
}
