package dispatch

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// userLimiter keeps one token bucket per caller. Buckets idle for longer
// than idleTTL are dropped on the next Allow.
type userLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	users   map[string]*userBucket
	swept   time.Time
}

type userBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newUserLimiter(perSecond float64, burst int) *userLimiter {
	if burst < 1 {
		burst = 1
	}
	return &userLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		users:   map[string]*userBucket{},
	}
}

func (l *userLimiter) Allow(userID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > l.idleTTL {
		for id, b := range l.users {
			if now.Sub(b.seen) > l.idleTTL {
				delete(l.users, id)
			}
		}
		l.swept = now
	}

	b, ok := l.users[userID]
	if !ok {
		b = &userBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.users[userID] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}
