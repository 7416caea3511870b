package dira

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestCache_GetSet(t *testing.T) {
	c := NewCache(time.Hour)

	if _, ok := c.Get("1452", "1943"); ok {
		t.Fatal("Get() on empty cache returned a hit")
	}

	want := SubscriberCounts{TotalSubscribers: 3526, TotalLocalSubscribers: 438}
	c.Set("1452", "1943", want)

	got, ok := c.Get("1452", "1943")
	if !ok || got != want {
		t.Errorf("Get() = %+v, %v, want %+v, true", got, ok, want)
	}
	if _, ok := c.Get("9999", "1943"); ok {
		t.Error("Get() hit for another project with the same lottery")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache(time.Hour)
	c.Set("1", "1", SubscriberCounts{TotalSubscribers: 1})
	c.Set("2", "2", SubscriberCounts{TotalSubscribers: 2})

	c.CachedAt[cacheKey("1", "1")] = time.Now().Add(-2 * time.Hour)

	if _, ok := c.Get("1", "1"); ok {
		t.Error("Get() returned an expired entry")
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d after expired Get, want 1", c.Size())
	}

	c.CachedAt[cacheKey("2", "2")] = time.Now().Add(-2 * time.Hour)
	if removed := c.CleanExpired(); removed != 1 {
		t.Errorf("CleanExpired() = %d, want 1", removed)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestCache_DecodedWithoutMaps(t *testing.T) {
	c := &Cache{TTL: time.Hour}
	c.Set("1", "1", SubscriberCounts{TotalSubscribers: 5})
	if got, ok := c.Get("1", "1"); !ok || got.TotalSubscribers != 5 {
		t.Errorf("Get() = %+v, %v", got, ok)
	}
}

func TestCachingFetcher(t *testing.T) {
	var calls int32
	next := fetcherFunc(func(ctx context.Context, project, lot string) (SubscriberCounts, error) {
		atomic.AddInt32(&calls, 1)
		if lot == "bad" {
			return SubscriberCounts{}, errors.New("unavailable")
		}
		return SubscriberCounts{TotalSubscribers: 10, TotalLocalSubscribers: 2}, nil
	})

	f := NewCachingFetcher(next, NewCache(time.Hour))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := f.FetchSubscribers(ctx, "1452", "1943")
		if err != nil {
			t.Fatalf("FetchSubscribers() error = %v", err)
		}
		if got.TotalSubscribers != 10 {
			t.Errorf("TotalSubscribers = %d, want 10", got.TotalSubscribers)
		}
	}
	if calls != 1 {
		t.Errorf("wrapped fetcher called %d times, want 1", calls)
	}

	for i := 0; i < 2; i++ {
		if _, err := f.FetchSubscribers(ctx, "1452", "bad"); err == nil {
			t.Error("expected error for failing lottery")
		}
	}
	if calls != 3 {
		t.Errorf("wrapped fetcher called %d times, want 3 (failures are not cached)", calls)
	}
}

func TestCachingFetcher_WithAggregator(t *testing.T) {
	var calls int32
	next := fetcherFunc(func(ctx context.Context, project, lot string) (SubscriberCounts, error) {
		atomic.AddInt32(&calls, 1)
		return SubscriberCounts{TotalSubscribers: 1}, nil
	})

	cache := NewCache(time.Hour)
	a := newTestAggregator(NewCachingFetcher(next, cache))
	refs := makeRefs(25)

	for run := 0; run < 2; run++ {
		subs, err := a.Aggregate(context.Background(), refs)
		if err != nil {
			t.Fatalf("run %d: Aggregate() error = %v", run, err)
		}
		if len(subs) != 25 {
			t.Fatalf("run %d: got %d entries, want 25", run, len(subs))
		}
	}

	if calls != 25 {
		t.Errorf("wrapped fetcher called %d times over two runs, want 25", calls)
	}
	if cache.Size() != 25 {
		t.Errorf("cache size = %d, want 25", cache.Size())
	}
}
