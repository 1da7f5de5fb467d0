package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_SharesConcurrentMisses(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "la-liga", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "tournament:id:140", loader)
			if err != nil || v != "la-liga" {
				t.Errorf("unexpected load v=%q err=%v", v, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	errDown := errors.New("db down")
	var calls int

	load := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errDown
		}
		return 7, nil
	}

	if _, err := store.GetOrLoad(context.Background(), "stage:provider:final", load); !errors.Is(err, errDown) {
		t.Fatalf("expected load error, got %v", err)
	}
	v, err := store.GetOrLoad(context.Background(), "stage:provider:final", load)
	if err != nil || v != 7 {
		t.Fatalf("expected retry after error, v=%d err=%v", v, err)
	}
	if v, _ = store.GetOrLoad(context.Background(), "stage:provider:final", load); v != 7 || calls != 2 {
		t.Fatalf("expected cached value, v=%d calls=%d", v, calls)
	}
}

func TestStore_ExpiresEntries(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set("tournament:id:1", "la-liga")
	store.Set("tournament:id:2", "premier-league")
	if _, ok := store.Get("tournament:id:1"); !ok {
		t.Fatalf("expected fresh entry to be returned")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get("tournament:id:1"); ok {
		t.Fatalf("expected expired entry to be dropped")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entries to be purged, len=%d", store.Len())
	}
}

func TestStore_ZeroTTLKeepsUntilDeleted(t *testing.T) {
	t.Parallel()

	store := NewStore[int](0)
	store.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	store.Set("team:id:1", 1)

	if _, ok := store.Get("team:id:1"); !ok {
		t.Fatalf("expected entry without ttl to be kept")
	}
	store.Delete("team:id:1")
	if store.Len() != 0 {
		t.Fatalf("expected entry to be deleted")
	}
}
