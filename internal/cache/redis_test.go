package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "test:", time.Minute, nil), mr
}

func TestRedisGetSetExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	c.Set(ctx, "k", []byte(`{"a":1}`))
	if !mr.Exists("test:k") {
		t.Fatal("expected prefixed key in redis")
	}
	if got, ok := c.Get(ctx, "k"); !ok || string(got) != `{"a":1}` {
		t.Fatalf("unexpected hit %q %v", got, ok)
	}

	mr.FastForward(61 * time.Second)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected expiry after ttl")
	}
}

func TestRedisInvalidateAllKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	for _, k := range []string{"a", "b", "employee_1"} {
		c.Set(ctx, k, []byte("x"))
	}
	if err := mr.Set("other:key", "keep"); err != nil {
		t.Fatalf("seed foreign key: %v", err)
	}

	c.Invalidate(ctx, "a")
	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("a should be gone")
	}

	c.InvalidateAll(ctx)
	for _, k := range []string{"b", "employee_1"} {
		if _, ok := c.Get(ctx, k); ok {
			t.Fatalf("%s should be flushed", k)
		}
	}
	if !mr.Exists("other:key") {
		t.Fatal("keys outside the prefix must survive a flush")
	}
}

func TestRedisFaultDegradesToMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	c.Set(ctx, "k", []byte("v"))
	mr.Close()

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("unreachable redis must read as a miss")
	}
	c.Set(ctx, "k", []byte("v"))
	c.Invalidate(ctx, "k")
	c.InvalidateAll(ctx)
}
