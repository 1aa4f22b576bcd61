package dispatch_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
)

func fromUser(id string) func(dispatch.MessageEvent) bool {
	return func(ev dispatch.MessageEvent) bool { return ev.AuthorID == id }
}

// waitPending spins until n waits are registered.
func waitPending(t *testing.T, a *dispatch.Awaiter, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return a.Pending() == n }, time.Second, time.Millisecond)
}

func TestAwaitMatchingTimesOut(t *testing.T) {
	a := dispatch.NewAwaiter()
	start := time.Now()
	out, err := a.AwaitMatching(context.Background(), fromUser("u1"), 50*time.Millisecond)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, out.TimedOut)
	assert.False(t, out.Matched())
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
	assert.Zero(t, a.Pending())
}

func TestAwaitMatchingDeliversFirstMatch(t *testing.T) {
	a := dispatch.NewAwaiter()
	var (
		out dispatch.Outcome
		err error
		wg  sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		out, err = a.AwaitMatching(context.Background(), fromUser("u1"), 5*time.Second)
	}()
	waitPending(t, a, 1)

	a.Publish(dispatch.MessageEvent{AuthorID: "u2", Content: "not me"})
	assert.Equal(t, 1, a.Pending())
	a.Publish(dispatch.MessageEvent{AuthorID: "u1", Content: "Paris"})
	wg.Wait()

	require.NoError(t, err)
	require.True(t, out.Matched())
	assert.Equal(t, "Paris", out.Event.Content)
	assert.Zero(t, a.Pending())

	// retired: a later message has nowhere to go
	a.Publish(dispatch.MessageEvent{AuthorID: "u1", Content: "Paris again"})
	assert.Zero(t, a.Pending())
}

func TestAwaitMatchingIndependentWaits(t *testing.T) {
	a := dispatch.NewAwaiter()
	results := make(chan dispatch.Outcome, 2)
	for _, id := range []string{"u1", "u2"} {
		go func() {
			out, _ := a.AwaitMatching(context.Background(), fromUser(id), 5*time.Second)
			results <- out
		}()
	}
	waitPending(t, a, 2)

	a.Publish(dispatch.MessageEvent{AuthorID: "u2", Content: "b"})
	first := <-results
	assert.Equal(t, "b", first.Event.Content)
	assert.Equal(t, 1, a.Pending())

	a.Publish(dispatch.MessageEvent{AuthorID: "u1", Content: "a"})
	second := <-results
	assert.Equal(t, "a", second.Event.Content)
}

func TestAwaitMatchingContextCancel(t *testing.T) {
	a := dispatch.NewAwaiter()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for a.Pending() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	out, err := a.AwaitMatching(ctx, fromUser("u1"), 5*time.Second)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, out.TimedOut)
	assert.Zero(t, a.Pending())
}
