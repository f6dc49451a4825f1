package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

const contextNowKey ctxKey = "now"

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}

// ContextWithNow pins the clock used by request handlers, mostly for tests.
func ContextWithNow(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, contextNowKey, now)
}

// NowFromContext returns the pinned clock or time.Now in loc.
func NowFromContext(ctx context.Context, loc *time.Location) time.Time {
	if now, ok := ctx.Value(contextNowKey).(time.Time); ok {
		return now
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc)
}
