package toolutil

import (
	"context"
	"testing"
	"time"

	"github.com/anatolykoptev/go_ytlens/internal/engine"
)

type cached struct {
	Text string `json:"text"`
}

func TestCacheJSONRoundTrip(t *testing.T) {
	engine.InitCache("", time.Minute, 10, time.Minute)
	ctx := context.Background()
	key := engine.CacheKey("toolutil", "round-trip")

	if _, ok := CacheLoadJSON[cached](ctx, key); ok {
		t.Fatal("expected miss")
	}
	CacheStoreJSON(ctx, key, cached{Text: "வணக்கம்"})
	got, ok := CacheLoadJSON[cached](ctx, key)
	if !ok || got.Text != "வணக்கம்" {
		t.Errorf("got %+v, %v", got, ok)
	}
}

func TestCacheLoadJSON_BadPayload(t *testing.T) {
	engine.InitCache("", time.Minute, 10, time.Minute)
	ctx := context.Background()
	key := engine.CacheKey("toolutil", "bad")
	engine.CacheSet(ctx, key, []byte("{not json"))
	if _, ok := CacheLoadJSON[cached](ctx, key); ok {
		t.Error("expected decode failure to count as miss")
	}
}

func TestRuneLen(t *testing.T) {
	if n := RuneLen("  héllo  "); n != 5 {
		t.Errorf("RuneLen = %d, want 5", n)
	}
	if n := RuneLen(" \n\t "); n != 0 {
		t.Errorf("RuneLen(blank) = %d, want 0", n)
	}
}
