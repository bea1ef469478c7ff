package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopassist/backend/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value []byte
		ttl   time.Duration
	}{
		{name: "store and retrieve bytes", key: "test-key-1", value: []byte("test-value"), ttl: time.Minute},
		{name: "store json snapshot", key: "catalog:snapshot", value: []byte(`[{"id":"1","name":"Wireless Headphones"}]`), ttl: time.Minute},
		{name: "store without expiry", key: "test-key-3", value: []byte("forever"), ttl: 0},
		{name: "store empty value", key: "test-key-4", value: []byte{}, ttl: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != string(tt.value) {
				t.Errorf("Get() = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	if err := cache.Set(ctx, "short", []byte("expires-soon"), time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := cache.Get(ctx, "short"); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() after expiry error = %v, want ErrCacheMiss", err)
	}
	if ok, _ := cache.Exists(ctx, "short"); ok {
		t.Error("Exists() = true after expiry")
	}
}

func TestMemoryCache_StoresCopies(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	value := []byte("original")
	_ = cache.Set(ctx, "key", value, time.Minute)
	value[0] = 'X'

	got, _ := cache.Get(ctx, "key")
	if string(got) != "original" {
		t.Errorf("cached value changed with caller's slice: %q", got)
	}

	got[0] = 'Y'
	again, _ := cache.Get(ctx, "key")
	if string(again) != "original" {
		t.Errorf("cached value changed with returned slice: %q", again)
	}
}

func TestMemoryCache_GetMiss(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()

	_, err := cache.Get(context.Background(), "non-existent")
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_DeleteAndExists(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	_ = cache.Set(ctx, "key", []byte("value"), time.Minute)

	if ok, err := cache.Exists(ctx, "key"); err != nil || !ok {
		t.Fatalf("Exists() = %v, %v; want true, nil", ok, err)
	}

	if err := cache.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if ok, _ := cache.Exists(ctx, "key"); ok {
		t.Error("Exists() = true after Delete")
	}

	// Deleting a missing key is not an error
	if err := cache.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestMemoryCache_Janitor(t *testing.T) {
	cache := NewMemoryCache(5 * time.Millisecond)
	defer cache.Close()
	ctx := context.Background()

	_ = cache.Set(ctx, "short", []byte("a"), time.Millisecond)
	_ = cache.Set(ctx, "long", []byte("b"), time.Hour)

	deadline := time.Now().Add(time.Second)
	for cache.Size() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if cache.Size() != 1 {
		t.Errorf("Size() = %d after sweep, want 1", cache.Size())
	}
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	if err := cache.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	_ = cache.Set(ctx, "a", []byte("1"), time.Minute)
	_ = cache.Set(ctx, "b", []byte("2"), time.Minute)
	cache.Clear()

	if cache.Size() != 0 {
		t.Errorf("Size() = %d after Clear, want 0", cache.Size())
	}
}

func TestMemoryCache_Concurrency(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%26))
			_ = cache.Set(ctx, key, []byte{byte(i)}, time.Minute)
			_, _ = cache.Get(ctx, key)
			_, _ = cache.Exists(ctx, key)
		}(i)
	}
	wg.Wait()

	if cache.Size() != 26 {
		t.Errorf("Size() = %d, want 26", cache.Size())
	}
}
