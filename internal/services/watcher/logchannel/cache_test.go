package logchannel

import (
	"context"
	"testing"
)

func TestRedisCache_Miss(t *testing.T) {
	cache, _ := newTestCache(t)

	_, ok, err := cache.Get(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected a cache miss")
	}
}

func TestRedisCache_SetGet(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	want := []LogChannel{{ID: 1, GuildID: "1", ChannelID: "10", WebhookID: "w", WebhookToken: "t", ThreadID: "5"}}
	if err := cache.Set(ctx, "1", want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := cache.Get(ctx, "1")
	if err != nil || !ok {
		t.Fatalf("expected a cache hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if ttl := mr.TTL("logChannel:1"); ttl != CacheTTL {
		t.Errorf("expected ttl %s, got %s", CacheTTL, ttl)
	}
}

func TestRedisCache_Expires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "1", []LogChannel{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mr.FastForward(CacheTTL)

	if _, ok, _ := cache.Get(ctx, "1"); ok {
		t.Error("expected entry to expire")
	}
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)

	if err := mr.Set("logChannel:1", "not json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := cache.Get(context.Background(), "1"); err == nil {
		t.Error("expected decode error")
	}
}
