package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "hotel_search/internal/adapters/redis"
	"hotel_search/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	in := []domain.SuggestResult{{ID: "1", DisplayName: "Park Hyatt (Tokyo)"}}
	if err := c.Set(ctx, "suggest:1:park", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("hotelsearch:suggest:1:park") {
		t.Fatalf("expected prefixed key, have %v", mr.Keys())
	}

	var out []domain.SuggestResult
	ok, err := c.Get(ctx, "suggest:1:park", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(out) != 1 || out[0].DisplayName != "Park Hyatt (Tokyo)" {
		t.Fatalf("round trip: %+v", out)
	}

	if err := c.Del(ctx, "suggest:1:park"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, err = c.Get(ctx, "suggest:1:park", &out)
	if err != nil || ok {
		t.Fatalf("expected miss after del: ok=%v err=%v", ok, err)
	}
}

func TestCache_TTL(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", map[string]int{"a": 1}, 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(31 * time.Second)

	var out map[string]int
	if ok, _ := c.Get(ctx, "k", &out); ok {
		t.Fatalf("expected key to expire")
	}
}

func TestCache_GetCorrupt(t *testing.T) {
	c, mr := newCache(t)
	_ = mr.Set("hotelsearch:bad", "{not json")

	var out map[string]any
	if _, err := c.Get(context.Background(), "bad", &out); err == nil {
		t.Fatalf("expected decode error")
	}
}
