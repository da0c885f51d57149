package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/inventorymaster/storefront/pkg/api"
)

// RateLimiter checks whether an authenticated user may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, user *api.User) error
}

// maxTrackedUsers bounds the limiter map before idle entries are pruned.
const maxTrackedUsers = 10000

// InProcessLimiter is a token-bucket limiter keyed by user id. Each role can
// have its own requests-per-minute budget.
type InProcessLimiter struct {
	roles      map[string]int
	defaultRPM int
	now        func() time.Time

	mu       sync.Mutex
	limiters map[string]*userLimiter
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewInProcessLimiter creates a limiter. roles maps a user role to its
// requests-per-minute budget; other roles get defaultRPM. A budget of zero
// or less means unlimited.
func NewInProcessLimiter(roles map[string]int, defaultRPM int) *InProcessLimiter {
	return &InProcessLimiter{
		roles:      roles,
		defaultRPM: defaultRPM,
		now:        time.Now,
		limiters:   make(map[string]*userLimiter),
	}
}

// Allow consumes one token from the user's bucket.
func (l *InProcessLimiter) Allow(_ context.Context, user *api.User) error {
	rpm := l.defaultRPM
	if v, ok := l.roles[user.Role]; ok {
		rpm = v
	}
	if rpm <= 0 {
		return nil
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	ul, ok := l.limiters[user.ID]
	if !ok {
		if len(l.limiters) >= maxTrackedUsers {
			l.pruneLocked(now)
		}
		ul = &userLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burstFor(rpm)),
		}
		l.limiters[user.ID] = ul
	}
	ul.lastSeen = now

	if !ul.limiter.AllowN(now, 1) {
		return ErrTooManyRequests
	}
	return nil
}

// burstFor allows ten seconds worth of requests at once, at least one.
func burstFor(rpm int) int {
	return max(1, rpm/6)
}

// pruneLocked drops buckets idle for more than a minute. A bucket idle that
// long has refilled completely, so dropping it loses nothing.
func (l *InProcessLimiter) pruneLocked(now time.Time) {
	for id, ul := range l.limiters {
		if now.Sub(ul.lastSeen) > time.Minute {
			delete(l.limiters, id)
		}
	}
}
