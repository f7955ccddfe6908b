package forecast

import (
	"sync"
	"testing"
	"time"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestCache_HitWithinTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cache := NewCache(5 * time.Minute).WithClock(fixedClock(now))

	horizons := []time.Duration{time.Hour, 3 * time.Hour}
	predictions := []Prediction{{EntityID: "vm-1", Metric: "cpu_usage", PredictedValue: 42}}

	cache.Put("vm-1", "cpu_usage", horizons, predictions)

	got, ok := cache.Get("vm-1", "cpu_usage", horizons)
	if !ok {
		t.Fatal("expected cache hit within TTL")
	}
	if got[0].PredictedValue != 42 {
		t.Fatalf("expected cached value 42, got %g", got[0].PredictedValue)
	}
}

func TestCache_ExpiryMisses(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	cache := NewCache(5 * time.Minute).WithClock(func() time.Time { return clock })

	horizons := []time.Duration{time.Hour}
	cache.Put("vm-1", "cpu_usage", horizons, []Prediction{{PredictedValue: 1}})

	clock = now.Add(5*time.Minute + time.Second)
	if _, ok := cache.Get("vm-1", "cpu_usage", horizons); ok {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestCache_HorizonOrderInsensitive(t *testing.T) {
	cache := NewCache(5 * time.Minute)

	cache.Put("vm-1", "disk_usage", []time.Duration{3 * time.Hour, time.Hour}, []Prediction{{PredictedValue: 9}})
	if _, ok := cache.Get("vm-1", "disk_usage", []time.Duration{time.Hour, 3 * time.Hour}); !ok {
		t.Fatal("expected hit regardless of horizon order")
	}
}

func TestCache_KeyIsolation(t *testing.T) {
	cache := NewCache(5 * time.Minute)
	cache.Put("vm-1", "cpu_usage", []time.Duration{time.Hour}, []Prediction{{PredictedValue: 1}})

	if _, ok := cache.Get("vm-2", "cpu_usage", []time.Duration{time.Hour}); ok {
		t.Fatal("expected miss for different entity")
	}
	if _, ok := cache.Get("vm-1", "memory_usage", []time.Duration{time.Hour}); ok {
		t.Fatal("expected miss for different metric")
	}
	if _, ok := cache.Get("vm-1", "cpu_usage", []time.Duration{2 * time.Hour}); ok {
		t.Fatal("expected miss for different horizon set")
	}
}

func TestCache_ZeroTTLDisables(t *testing.T) {
	cache := NewCache(0)
	cache.Put("vm-1", "cpu_usage", []time.Duration{time.Hour}, []Prediction{{PredictedValue: 1}})
	if _, ok := cache.Get("vm-1", "cpu_usage", []time.Duration{time.Hour}); ok {
		t.Fatal("zero TTL must disable caching")
	}
}

func TestCache_NilSafe(t *testing.T) {
	var cache *Cache
	cache.Put("vm-1", "cpu_usage", []time.Duration{time.Hour}, nil)
	if _, ok := cache.Get("vm-1", "cpu_usage", []time.Duration{time.Hour}); ok {
		t.Fatal("nil cache must always miss")
	}
}

func TestCache_Prune(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	cache := NewCache(time.Minute).WithClock(func() time.Time { return clock })

	cache.Put("a", "m", []time.Duration{time.Hour}, nil)
	cache.Put("b", "m", []time.Duration{time.Hour}, nil)

	clock = now.Add(2 * time.Minute)
	cache.Put("c", "m", []time.Duration{time.Hour}, nil)
	cache.Prune()

	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry after prune, got %d", cache.Len())
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache(5 * time.Minute)
	horizons := []time.Duration{time.Hour}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Put("vm-1", "cpu_usage", horizons, []Prediction{{PredictedValue: 7}})
				if got, ok := cache.Get("vm-1", "cpu_usage", horizons); ok {
					// A reader must never observe a torn entry.
					if len(got) != 1 || got[0].PredictedValue != 7 {
						t.Error("observed inconsistent cache entry")
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}
