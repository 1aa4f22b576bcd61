package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
	"github.com/thelux31/hiddendevsappforwhatever/internal/domain"
	"github.com/thelux31/hiddendevsappforwhatever/internal/testutil"
)

var capital = domain.Question{ID: 1, Category: "geography", Text: "What is the capital of France?", Answer: "Paris"}

// startTrivia runs /trivia in the background and returns once the question
// is posted and the wait is registered.
func startTrivia(t *testing.T, timeout time.Duration) (*rig, *dispatch.Awaiter, func() dispatch.Result) {
	t.Helper()
	aw := dispatch.NewAwaiter()
	r := newRig(t, NewTriviaService(testutil.Questions{Q: capital}, aw, timeout))

	var (
		wg  sync.WaitGroup
		res dispatch.Result
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		res = r.run("trivia", "u1", nil)
	}()
	require.Eventually(t, func() bool { return aw.Pending() == 1 }, time.Second, time.Millisecond)

	return r, aw, func() dispatch.Result {
		wg.Wait()
		return res
	}
}

func TestTriviaCorrectAnswer(t *testing.T) {
	r, aw, wait := startTrivia(t, 5*time.Second)
	aw.Publish(dispatch.MessageEvent{ChannelID: "c1", AuthorID: "u1", Content: "  paris  "})
	res := wait()

	require.NoError(t, res.Err)
	calls := r.tr.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "Time for Trivia! \n**What is the capital of France?**", calls[0].Content)
	followups := r.tr.Only(testutil.CallFollowup)
	require.Len(t, followups, 1)
	assert.Contains(t, followups[0].Content, "Correct! The answer was **Paris**.")
	assert.False(t, followups[0].Private)
}

func TestTriviaWrongAnswer(t *testing.T) {
	r, aw, wait := startTrivia(t, 5*time.Second)
	aw.Publish(dispatch.MessageEvent{ChannelID: "c1", AuthorID: "u1", Content: "London"})
	require.NoError(t, wait().Err)

	followups := r.tr.Only(testutil.CallFollowup)
	require.Len(t, followups, 1)
	assert.Equal(t, "❌ The correct answer was **Paris**.", followups[0].Content)
}

func TestTriviaIgnoresOtherAuthorsAndChannels(t *testing.T) {
	r, aw, wait := startTrivia(t, 200*time.Millisecond)
	aw.Publish(dispatch.MessageEvent{ChannelID: "c1", AuthorID: "u2", Content: "Paris"})
	aw.Publish(dispatch.MessageEvent{ChannelID: "c2", AuthorID: "u1", Content: "Paris"})
	require.NoError(t, wait().Err)

	followups := r.tr.Only(testutil.CallFollowup)
	require.Len(t, followups, 1)
	assert.Equal(t, "Time out! Try again next time.", followups[0].Content)
	assert.Zero(t, aw.Pending())
}

func TestTriviaTimeout(t *testing.T) {
	r, aw, wait := startTrivia(t, 150*time.Millisecond)
	require.NoError(t, wait().Err)

	assert.Equal(t, []testutil.CallKind{testutil.CallRespond, testutil.CallFollowup}, callKinds(r.tr.Calls()))
	assert.Equal(t, "Time out! Try again next time.", r.tr.Only(testutil.CallFollowup)[0].Content)
	assert.Zero(t, aw.Pending())
	assert.Contains(t, r.logs.String(), "trivia timed out")
	assert.Contains(t, r.logs.String(), "deadline=")
}

func TestTriviaEmptyBank(t *testing.T) {
	aw := dispatch.NewAwaiter()
	r := newRig(t, NewTriviaService(NewMemoryQuestions(nil), aw, time.Second))

	res := r.run("trivia", "u1", nil)

	assert.Equal(t, dispatch.Completed, res.State)
	require.ErrorIs(t, res.Err, ErrNoQuestions)
	calls := r.tr.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "No trivia questions are available right now.", calls[0].Content)
	assert.True(t, calls[0].Private)
	assert.Zero(t, aw.Pending())
}

func TestTriviaSession(t *testing.T) {
	s := TriviaSession{Question: capital, CallerID: "u1", ChannelID: "c1"}
	assert.True(t, s.Correct("PARIS"))
	assert.True(t, s.Correct("\tparis\n"))
	assert.False(t, s.Correct("Pari"))
	assert.True(t, s.Accepts(dispatch.MessageEvent{AuthorID: "u1", ChannelID: "c1"}))
	assert.False(t, s.Accepts(dispatch.MessageEvent{AuthorID: "u1", ChannelID: "c9"}))
}

func TestMemoryQuestions(t *testing.T) {
	bank := NewMemoryQuestions(domain.DefaultQuestions)
	bank.intn = func(int) int { return 1 }
	q, err := bank.Random(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultQuestions[1], q)
}

func callKinds(calls []testutil.Call) []testutil.CallKind {
	out := make([]testutil.CallKind, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Kind)
	}
	return out
}
