package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/wallet-console-go/internal/infra/cache"
	"github.com/boddenberg/wallet-console-go/internal/port"
)

var _ port.Cache[string] = (*cache.InMemory[string])(nil)

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_TouchExtendsEntry(t *testing.T) {
	clock := &fakeNow{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := cache.New[int](time.Hour, cache.WithClock[int](clock.Now))
	defer c.Close()

	c.Set("s1", 1)
	clock.Advance(50 * time.Minute)
	if !c.Touch("s1") {
		t.Fatal("expected touch on live entry to succeed")
	}
	clock.Advance(50 * time.Minute)

	if _, ok := c.Get("s1"); !ok {
		t.Fatal("expected touched entry to outlive the original TTL")
	}
	if c.Touch("missing") {
		t.Error("expected touch on missing entry to fail")
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	clock := &fakeNow{t: time.Now()}
	c := cache.New[int](time.Hour, cache.WithClock[int](clock.Now))
	defer c.Close()

	c.SetWithTTL("short", 1, time.Minute)
	c.Set("long", 2)
	clock.Advance(2 * time.Minute)

	if _, ok := c.Get("short"); ok {
		t.Error("expected short entry to expire")
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 live entry, got %d", c.Len())
	}
}

func TestCache_SweepCallsEvictHook(t *testing.T) {
	clock := &fakeNow{t: time.Now()}
	var evicted []string
	c := cache.New[int](time.Minute,
		cache.WithClock[int](clock.Now),
		cache.WithEvictHook(func(key string, _ int) { evicted = append(evicted, key) }),
	)
	defer c.Close()

	c.Set("a", 1)
	clock.Advance(2 * time.Minute)
	c.Set("b", 2)
	c.Sweep()

	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("expected only 'a' evicted, got %v", evicted)
	}
}
