package services

import (
	"context"
	"testing"
	"time"
)

func TestMemoryKVExpiry(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }

	_ = kv.Set(ctx, "a", "1", time.Minute)
	if v, ok, _ := kv.Get(ctx, "a"); !ok || v != "1" {
		t.Fatalf("Get() = %q, %v", v, ok)
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := kv.Get(ctx, "a"); ok {
		t.Error("expired key still readable")
	}
}

func TestMemoryKVSetNX(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	first, _ := kv.SetNX(ctx, "k", "x", time.Hour)
	second, _ := kv.SetNX(ctx, "k", "y", time.Hour)
	if !first || second {
		t.Errorf("SetNX = %v, %v; want true, false", first, second)
	}
	if v, _, _ := kv.Get(ctx, "k"); v != "x" {
		t.Errorf("value overwritten: %q", v)
	}
}

func TestMemoryKVIncrAndDelPrefix(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	for i := int64(1); i <= 3; i++ {
		n, err := kv.Incr(ctx, "otp:attempts:a", time.Minute)
		if err != nil || n != i {
			t.Fatalf("Incr() = %d, %v; want %d", n, err, i)
		}
	}
	_ = kv.Set(ctx, "stats:x", "1", 0)
	_ = kv.Set(ctx, "stats:y", "1", 0)
	_ = kv.Set(ctx, "other", "1", 0)
	_ = kv.DelPrefix(ctx, "stats:")
	if _, ok, _ := kv.Get(ctx, "stats:x"); ok {
		t.Error("prefix key survived DelPrefix")
	}
	if _, ok, _ := kv.Get(ctx, "other"); !ok {
		t.Error("unrelated key removed")
	}
}
