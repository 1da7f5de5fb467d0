package usecase

import (
	"context"
	"time"
)

// QuotaTracker counts outbound provider calls for the current UTC day.
type QuotaTracker interface {
	CountToday(ctx context.Context) (int64, error)
	Increment(ctx context.Context, by int64) error
	OverLimit(ctx context.Context, max int) (bool, error)
}

// DateCursor remembers which past days already had their results ingested.
type DateCursor interface {
	NextUnprocessed(ctx context.Context, from, until time.Time) (time.Time, error)
	MarkProcessed(ctx context.Context, day time.Time) error
}

// LogoStore downloads a remote image and returns the stored relative path.
type LogoStore interface {
	Store(ctx context.Context, sourceURL string) (string, error)
}

// Executor runs whole jobs in the background.
type Executor interface {
	Submit(ctx context.Context, task func(ctx context.Context)) error
}

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}
