package quota

import (
	"context"
	"sync"
	"time"
)

// MemoryTracker is a process-local tracker for runs without redis. Counts
// are lost on restart.
type MemoryTracker struct {
	mu     sync.Mutex
	counts map[string]int64
	now    func() time.Time
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{counts: make(map[string]int64), now: time.Now}
}

func (t *MemoryTracker) CountToday(_ context.Context) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := RequestsKey(t.now())
	t.dropStale(key)
	return t.counts[key], nil
}

func (t *MemoryTracker) Increment(_ context.Context, by int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := RequestsKey(t.now())
	t.dropStale(key)
	t.counts[key] += by
	return nil
}

func (t *MemoryTracker) OverLimit(ctx context.Context, max int) (bool, error) {
	count, err := t.CountToday(ctx)
	if err != nil {
		return false, err
	}
	return count >= int64(max), nil
}

// must hold t.mu
func (t *MemoryTracker) dropStale(current string) {
	for key := range t.counts {
		if key != current {
			delete(t.counts, key)
		}
	}
}

type MemoryDateCursor struct {
	mu        sync.Mutex
	processed map[string]struct{}
}

func NewMemoryDateCursor() *MemoryDateCursor {
	return &MemoryDateCursor{processed: make(map[string]struct{})}
}

func (c *MemoryDateCursor) NextUnprocessed(_ context.Context, from, until time.Time) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	days := dayRange(from, until)
	for _, day := range days {
		if _, done := c.processed[ProcessedKey(day)]; !done {
			return day, nil
		}
	}
	if len(days) == 0 {
		return until, nil
	}
	return days[len(days)-1], nil
}

func (c *MemoryDateCursor) MarkProcessed(_ context.Context, day time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.processed[ProcessedKey(day)] = struct{}{}
	return nil
}
