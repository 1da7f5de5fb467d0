package quota

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	requestsKeySuffix  = "_api_requests_count"
	processedKeySuffix = "_processed"

	counterTTL   = 24 * time.Hour
	processedTTL = 60 * 24 * time.Hour
)

// RequestsKey is the counter key for the UTC day of t.
func RequestsKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly) + requestsKeySuffix
}

func ProcessedKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly) + processedKeySuffix
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// RedisTracker keeps the daily request counter in redis so every process
// shares one budget.
type RedisTracker struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisTracker(client *redis.Client) *RedisTracker {
	return &RedisTracker{client: client, now: time.Now}
}

// CountToday initialises the counter to zero with a day TTL when absent.
func (t *RedisTracker) CountToday(ctx context.Context) (int64, error) {
	key := RequestsKey(t.now())

	var get *redis.StringCmd
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, counterTTL)
		get = pipe.Get(ctx, key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("read request counter %s: %w", key, err)
	}

	count, err := strconv.ParseInt(get.Val(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse request counter %s: %w", key, err)
	}
	return count, nil
}

// Increment is atomic: a missing key starts from zero and gets the day TTL.
func (t *RedisTracker) Increment(ctx context.Context, by int64) error {
	key := RequestsKey(t.now())

	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, counterTTL)
		pipe.IncrBy(ctx, key, by)
		return nil
	})
	if err != nil {
		return fmt.Errorf("increment request counter %s: %w", key, err)
	}
	return nil
}

func (t *RedisTracker) OverLimit(ctx context.Context, max int) (bool, error) {
	count, err := t.CountToday(ctx)
	if err != nil {
		return false, err
	}
	return count >= int64(max), nil
}

// RedisDateCursor stores one marker key per fully ingested day.
type RedisDateCursor struct {
	client *redis.Client
}

func NewRedisDateCursor(client *redis.Client) *RedisDateCursor {
	return &RedisDateCursor{client: client}
}

// NextUnprocessed returns the oldest day in [from, until] without a marker,
// or until when every day is done.
func (c *RedisDateCursor) NextUnprocessed(ctx context.Context, from, until time.Time) (time.Time, error) {
	days := dayRange(from, until)
	if len(days) == 0 {
		return until, nil
	}

	cmds := make([]*redis.IntCmd, len(days))
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, day := range days {
			cmds[i] = pipe.Exists(ctx, ProcessedKey(day))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return time.Time{}, fmt.Errorf("read processed markers: %w", err)
	}

	for i, cmd := range cmds {
		if cmd.Val() == 0 {
			return days[i], nil
		}
	}
	return days[len(days)-1], nil
}

func (c *RedisDateCursor) MarkProcessed(ctx context.Context, day time.Time) error {
	key := ProcessedKey(day)
	if err := c.client.Set(ctx, key, 1, processedTTL).Err(); err != nil {
		return fmt.Errorf("mark %s: %w", key, err)
	}
	return nil
}

func dayRange(from, until time.Time) []time.Time {
	from = truncateDay(from)
	until = truncateDay(until)

	var days []time.Time
	for day := from; !day.After(until); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
