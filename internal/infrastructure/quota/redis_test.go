package quota

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestTracker(t *testing.T, now time.Time) (*RedisTracker, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tracker := NewRedisTracker(client)
	tracker.now = func() time.Time { return now }
	return tracker, server
}

func TestRequestsKey_UsesUTCDate(t *testing.T) {
	local := time.Date(2024, 3, 2, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	if got := RequestsKey(local); got != "2024-03-03_api_requests_count" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestRedisTracker_CountTodayInitialisesKey(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	tracker, server := newTestTracker(t, now)

	count, err := tracker.CountToday(ctx)
	if err != nil {
		t.Fatalf("count today: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero, got %d", count)
	}

	value, err := server.Get("2024-03-02_api_requests_count")
	if err != nil || value != "0" {
		t.Fatalf("expected key initialised to 0, got %q err=%v", value, err)
	}
	if ttl := server.TTL("2024-03-02_api_requests_count"); ttl != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %s", ttl)
	}
}

func TestRedisTracker_IncrementWithoutInitialCount(t *testing.T) {
	ctx := context.Background()
	tracker, server := newTestTracker(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))

	if err := tracker.Increment(ctx, 1); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := tracker.Increment(ctx, 2); err != nil {
		t.Fatalf("increment: %v", err)
	}

	count, err := tracker.CountToday(ctx)
	if err != nil {
		t.Fatalf("count today: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}
	if ttl := server.TTL("2024-03-02_api_requests_count"); ttl <= 0 {
		t.Fatalf("expected ttl on counter, got %s", ttl)
	}
}

func TestRedisTracker_OverLimitAtMax(t *testing.T) {
	ctx := context.Background()
	tracker, server := newTestTracker(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))
	if err := server.Set("2024-03-02_api_requests_count", "99"); err != nil {
		t.Fatalf("seed counter: %v", err)
	}

	over, err := tracker.OverLimit(ctx, 100)
	if err != nil || over {
		t.Fatalf("expected room for one more call, over=%v err=%v", over, err)
	}

	if err := tracker.Increment(ctx, 1); err != nil {
		t.Fatalf("increment: %v", err)
	}
	over, err = tracker.OverLimit(ctx, 100)
	if err != nil || !over {
		t.Fatalf("expected limit reached at 100, over=%v err=%v", over, err)
	}
}

func TestRedisTracker_CounterExpiresNextDay(t *testing.T) {
	ctx := context.Background()
	tracker, server := newTestTracker(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))

	if err := tracker.Increment(ctx, 5); err != nil {
		t.Fatalf("increment: %v", err)
	}
	server.FastForward(25 * time.Hour)

	if server.Exists("2024-03-02_api_requests_count") {
		t.Fatalf("expected counter to expire")
	}
}

func TestRedisDateCursor(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cursor := NewRedisDateCursor(client)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)

	day, err := cursor.NextUnprocessed(ctx, from, until)
	if err != nil || !day.Equal(from) {
		t.Fatalf("expected first day, got %s err=%v", day, err)
	}

	if err := cursor.MarkProcessed(ctx, from); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	if !server.Exists("2024-03-01_processed") {
		t.Fatalf("expected processed marker key")
	}

	day, err = cursor.NextUnprocessed(ctx, from, until)
	if err != nil || !day.Equal(from.AddDate(0, 0, 1)) {
		t.Fatalf("expected second day, got %s err=%v", day, err)
	}

	_ = cursor.MarkProcessed(ctx, from.AddDate(0, 0, 1))
	_ = cursor.MarkProcessed(ctx, until)
	day, err = cursor.NextUnprocessed(ctx, from, until)
	if err != nil || !day.Equal(until) {
		t.Fatalf("expected until when all processed, got %s err=%v", day, err)
	}
}
