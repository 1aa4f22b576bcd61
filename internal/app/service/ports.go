package service

import (
	"context"
	"time"

	"github.com/thelux31/hiddendevsappforwhatever/internal/domain"
)

// Implemented by internal/adapters/discord.Moderator. Failures should be
// *dispatch.ExternalServiceError so the reason can be shown to the caller.
type Moderator interface {
	Moderate(ctx context.Context, action domain.ModerationAction) error
}

// Implemented by internal/adapters/translate.Client.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Implemented by MemoryQuestions and internal/infra/storage.QuestionRepo.
type QuestionBank interface {
	Random(ctx context.Context) (domain.Question, error)
}

// Implemented by the discord session (heartbeat round trip).
type LatencySource interface {
	Latency() time.Duration
}
