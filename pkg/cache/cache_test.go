package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	src := []byte("svg")
	if err := c.Set(ctx, "render", src, 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	src[0] = 'x'

	data, hit, err := c.Get(ctx, "render")
	if err != nil || !hit {
		t.Fatalf("Get() hit = %v, err = %v, want hit", hit, err)
	}
	if string(data) != "svg" {
		t.Errorf("Get() = %q, want %q (stored value must be a copy)", data, "svg")
	}

	if err := c.Delete(ctx, "render"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "render"); hit {
		t.Error("Get() after Delete should miss")
	}
}

func TestMemoryCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("Get() before expiry should hit")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() after expiry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after lazy eviction", c.Len())
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestKey(t *testing.T) {
	k1 := Key("render", "abc", 3)
	if !strings.HasPrefix(k1, "render:") {
		t.Errorf("Key() = %q, want render: prefix", k1)
	}
	if k1 == Key("render", "abc", 4) {
		t.Error("Key should differ when parts differ")
	}
	if k1 != Key("render", "abc", 3) {
		t.Error("Key should be deterministic")
	}
}

func TestShort(t *testing.T) {
	if got := Short("0123456789abcdef"); got != "0123456789ab" {
		t.Errorf("Short() = %q, want %q", got, "0123456789ab")
	}
	if got := Short("abc"); got != "abc" {
		t.Errorf("Short() = %q, want %q", got, "abc")
	}
}
