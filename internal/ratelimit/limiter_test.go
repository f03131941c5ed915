package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	// Anchored to wall time so ResetAt comparisons against time.Until in
	// the middleware stay meaningful.
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(clock *fakeClock) *MemoryStore {
	store := NewMemoryStore()
	store.now = clock.Now
	return store
}

func TestMemoryStore_AllowsUpToMax(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(clock)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := store.Check(ctx, "10.0.0.1:/api/responses/generate", time.Minute, 5)
		if err != nil {
			t.Fatalf("Check %d: %v", i, err)
		}
		if !result.Allowed {
			t.Fatalf("Request %d should be allowed", i)
		}
		want := 5 - i - 1
		if result.Remaining != want {
			t.Errorf("Request %d remaining: got %d, want %d", i, result.Remaining, want)
		}
		clock.Advance(time.Second)
	}
}

func TestMemoryStore_RejectsOverMax(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(clock)
	ctx := context.Background()
	id := "10.0.0.1:/api/responses/generate"

	for i := 0; i < 3; i++ {
		if result, _ := store.Check(ctx, id, time.Minute, 3); !result.Allowed {
			t.Fatalf("Request %d should be allowed", i)
		}
	}

	result, err := store.Check(ctx, id, time.Minute, 3)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result.Allowed {
		t.Fatal("4th request within the window should be rejected")
	}
	if result.Remaining != 0 {
		t.Errorf("Remaining on rejection: got %d, want 0", result.Remaining)
	}
	wantReset := clock.Now().Add(time.Minute)
	if !result.ResetAt.Equal(wantReset) {
		t.Errorf("ResetAt: got %v, want %v", result.ResetAt, wantReset)
	}
}

// A rejected request must not consume budget.
func TestMemoryStore_RejectionDoesNotRecord(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(clock)
	ctx := context.Background()
	id := "10.0.0.1:/api/history"

	store.Check(ctx, id, time.Minute, 1)
	for i := 0; i < 10; i++ {
		store.Check(ctx, id, time.Minute, 1)
	}

	clock.Advance(time.Minute + time.Millisecond)
	result, _ := store.Check(ctx, id, time.Minute, 1)
	if !result.Allowed {
		t.Error("Request after the window elapsed should be allowed again")
	}
}

func TestMemoryStore_WindowSlides(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(clock)
	ctx := context.Background()
	id := "10.0.0.1:/api/responses/generate"

	store.Check(ctx, id, time.Minute, 2)
	clock.Advance(30 * time.Second)
	store.Check(ctx, id, time.Minute, 2)

	if result, _ := store.Check(ctx, id, time.Minute, 2); result.Allowed {
		t.Fatal("Third request inside the window should be rejected")
	}

	// First timestamp ages out 31 seconds later; one slot frees up.
	clock.Advance(31 * time.Second)
	if result, _ := store.Check(ctx, id, time.Minute, 2); !result.Allowed {
		t.Error("Request should be allowed after the oldest entry aged out")
	}
}

func TestMemoryStore_IdentifiersAreIsolated(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(clock)
	ctx := context.Background()

	store.Check(ctx, "10.0.0.1:/api/responses/generate", time.Minute, 1)
	if result, _ := store.Check(ctx, "10.0.0.1:/api/responses/generate", time.Minute, 1); result.Allowed {
		t.Fatal("Same identifier should be exhausted")
	}

	// Different route, same client: separate budget.
	if result, _ := store.Check(ctx, "10.0.0.1:/api/history", time.Minute, 1); !result.Allowed {
		t.Error("Different route should not share the budget")
	}
	// Different client, same route: separate budget.
	if result, _ := store.Check(ctx, "10.0.0.2:/api/responses/generate", time.Minute, 1); !result.Allowed {
		t.Error("Different client should not share the budget")
	}
}

func TestMemoryStore_ConcurrentChecksNeverOverAdmit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	const workers = 50
	const max = 10

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := store.Check(ctx, "concurrent:/api/responses/generate", time.Minute, max)
			if err != nil {
				t.Errorf("Check: %v", err)
				return
			}
			if result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != max {
		t.Errorf("Allowed %d of %d concurrent requests, want exactly %d", allowed, workers, max)
	}
}

func TestPresets(t *testing.T) {
	if Strict.MaxRequests >= Standard.MaxRequests || Standard.MaxRequests >= Relaxed.MaxRequests {
		t.Errorf("Presets must be ordered strict < standard < relaxed: %d %d %d",
			Strict.MaxRequests, Standard.MaxRequests, Relaxed.MaxRequests)
	}
}

// A store failure must fail open rather than reject traffic.
type failingStore struct{}

func (failingStore) Check(context.Context, string, time.Duration, int) (Result, error) {
	return Result{}, context.DeadlineExceeded
}

func TestLimiter_FailsOpenOnStoreError(t *testing.T) {
	limiter := NewLimiter(failingStore{})
	result := limiter.Check(context.Background(), "x:/api/history", Standard)
	if !result.Allowed {
		t.Error("Limiter should fail open when the store errors")
	}
}
