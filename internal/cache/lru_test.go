// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/lumen/internal/metrics"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestLRU(t *testing.T, capacity int, ttl time.Duration) (*LRU[float64], *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[float64]("test-"+t.Name(), capacity, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRU_BasicOperations(t *testing.T) {
	t.Parallel()

	c, _ := newTestLRU(t, 3, time.Minute)
	c.Add("000001", 25)
	c.Add("000002", 12.637)
	c.Add("000003", 0)

	for key, want := range map[string]float64{"000001": 25, "000002": 12.637, "000003": 0} {
		got, ok := c.Get(key)
		if !ok || got != want {
			t.Errorf("Get(%s) = %v, %v, want %v", key, got, ok, want)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	c.Add("000001", 20)
	if got, _ := c.Get("000001"); got != 20 {
		t.Errorf("updated value = %v, want 20", got)
	}
	if c.Len() != 3 {
		t.Errorf("update changed Len() to %d", c.Len())
	}
}

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	c, _ := newTestLRU(t, 3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// Touch a so b becomes least recently used.
	c.Get("a")
	c.Add("d", 4)

	if c.Contains("b") {
		t.Error("b should be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if !c.Contains(key) {
			t.Errorf("%s should be present", key)
		}
	}
	if s := c.Stats(); s.Evictions != 1 || s.Size != 3 || s.Capacity != 3 {
		t.Errorf("Stats() = %+v", s)
	}
	if got := testutil.ToFloat64(metrics.CacheEvictions.WithLabelValues(c.Name())); got != 1 {
		t.Errorf("cache_evictions_total = %v, want 1", got)
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	t.Parallel()

	c, clock := newTestLRU(t, 10, time.Minute)
	c.Add("a", 1)

	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be present before expiry")
	}
	clock.Advance(61 * time.Second)
	if c.Contains("a") {
		t.Error("Contains(a) after expiry")
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, Len() = %d", c.Len())
	}
}

func TestLRU_CleanupExpired(t *testing.T) {
	t.Parallel()

	c, clock := newTestLRU(t, 10, time.Minute)
	c.Add("old1", 1)
	c.Add("old2", 2)
	clock.Advance(30 * time.Second)
	c.Add("fresh", 3)
	clock.Advance(40 * time.Second)

	if removed := c.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if !c.Contains("fresh") || c.Len() != 1 {
		t.Errorf("fresh entry lost, Len() = %d", c.Len())
	}
}

func TestLRU_RemoveAndClear(t *testing.T) {
	t.Parallel()

	c, _ := newTestLRU(t, 10, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)

	if !c.Remove("a") || c.Remove("a") {
		t.Error("Remove() should succeed once")
	}
	c.Clear()
	if c.Len() != 0 || c.Contains("b") {
		t.Error("Clear() left entries")
	}
	c.Add("c", 3)
	if !c.Contains("c") {
		t.Error("cache unusable after Clear()")
	}
}

func TestLRU_Stats(t *testing.T) {
	t.Parallel()

	c, _ := newTestLRU(t, 10, time.Minute)
	c.Add("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Stats() = %+v", s)
	}
	if rate := s.HitRate(); rate < 0.66 || rate > 0.67 {
		t.Errorf("HitRate() = %v", rate)
	}
	if (Stats{}).HitRate() != 0 {
		t.Error("empty HitRate() should be 0")
	}
	if got := testutil.ToFloat64(metrics.CacheHits.WithLabelValues(c.Name())); got != 2 {
		t.Errorf("cache_hits_total = %v, want 2", got)
	}
}

func TestLRU_Defaults(t *testing.T) {
	t.Parallel()

	c := NewLRU[string]("defaults", 0, 0)
	if c.capacity != defaultCapacity || c.ttl != defaultTTL {
		t.Errorf("capacity = %d, ttl = %v", c.capacity, c.ttl)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c, _ := newTestLRU(t, 100, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 20; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := strconv.Itoa((g*200 + i) % 150)
				c.Add(key, float64(i))
				c.Get(key)
				if i%50 == 0 {
					c.CleanupExpired()
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}

func BenchmarkLRU_Get(b *testing.B) {
	c := NewLRU[float64]("bench", 1000, time.Minute)
	for i := 0; i < 1000; i++ {
		c.Add(strconv.Itoa(i), float64(i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(strconv.Itoa(i % 1000))
	}
}
