package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
	"github.com/thelux31/hiddendevsappforwhatever/internal/domain"
)

const DefaultTriviaTimeout = 10 * time.Second

// TriviaSession is one open question waiting for its caller's answer.
type TriviaSession struct {
	Question  domain.Question
	CallerID  string
	ChannelID string
	Deadline  time.Time
}

// Accepts reports whether ev is an answer attempt for this session: same
// author and same channel as the command.
func (ts TriviaSession) Accepts(ev dispatch.MessageEvent) bool {
	return ev.AuthorID == ts.CallerID && ev.ChannelID == ts.ChannelID
}

func (ts TriviaSession) Correct(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(ts.Question.Answer))
}

type TriviaService struct {
	bank    QuestionBank
	await   *dispatch.Awaiter
	timeout time.Duration
	now     func() time.Time
}

func NewTriviaService(bank QuestionBank, await *dispatch.Awaiter, timeout time.Duration) *TriviaService {
	if timeout <= 0 {
		timeout = DefaultTriviaTimeout
	}
	return &TriviaService{bank: bank, await: await, timeout: timeout, now: time.Now}
}

func (s *TriviaService) Commands() []dispatch.Descriptor {
	return []dispatch.Descriptor{
		{Name: "trivia", Description: "Start a trivia question", Handler: s.trivia},
	}
}

func (s *TriviaService) trivia(ctx context.Context, ix *dispatch.Interaction) error {
	q, err := s.bank.Random(ctx)
	if err != nil {
		return &dispatch.ExternalServiceError{
			Service: "trivia",
			Reason:  "No trivia questions are available right now.",
			Err:     err,
		}
	}

	sess := TriviaSession{
		Question:  q,
		CallerID:  ix.CallerID,
		ChannelID: ix.ChannelID,
		Deadline:  s.now().Add(s.timeout),
	}
	if err := ix.Response.SendPrimary(ctx, fmt.Sprintf("Time for Trivia! \n**%s**", q.Text), false); err != nil {
		return err
	}

	out, err := s.await.AwaitMatching(ctx, sess.Accepts, s.timeout)
	if err != nil {
		return fmt.Errorf("trivia wait: %w", err)
	}

	var reply string
	switch {
	case out.TimedOut:
		ix.Log.Debug("trivia timed out", "question", q.ID, "deadline", sess.Deadline, "late_by", s.now().Sub(sess.Deadline))
		reply = "Time out! Try again next time."
	case sess.Correct(out.Event.Content):
		reply = fmt.Sprintf("Correct! The answer was **%s**.", q.Answer)
	default:
		reply = fmt.Sprintf("❌ The correct answer was **%s**.", q.Answer)
	}
	return ix.Response.SendFollowup(ctx, reply, false)
}
