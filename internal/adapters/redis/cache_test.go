package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "trustwatch/internal/adapters/redis"
	"trustwatch/internal/domain"
)

func newTestCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.New(mr.Addr(), "", 0), mr
}

func TestCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	in := domain.Brand{ID: 7, Domain: "acme.io", TrustScore: ptrFloat(4.2)}
	if err := c.Set(ctx, "brand:acme.io", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out domain.Brand
	ok, err := c.Get(ctx, "brand:acme.io", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.ID != 7 || out.Domain != "acme.io" || out.TrustScore == nil || *out.TrustScore != 4.2 {
		t.Fatalf("unexpected value: %+v", out)
	}
}

func TestCache_MissAndDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var out domain.Brand
	ok, err := c.Get(ctx, "brand:absent", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected a miss")
	}

	if err := c.Set(ctx, "brand:acme.io", domain.Brand{ID: 7}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Del(ctx, "brand:acme.io"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "brand:acme.io", &out); ok {
		t.Fatal("deleted key must miss")
	}
}

func TestCache_EntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "report:acme.io:2026-W04", domain.WeeklyReport{}, 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("report:acme.io:2026-W04"); ttl != 30*time.Second {
		t.Fatalf("ttl = %v", ttl)
	}

	mr.FastForward(31 * time.Second)
	var out domain.WeeklyReport
	if ok, _ := c.Get(ctx, "report:acme.io:2026-W04", &out); ok {
		t.Fatal("expired key must miss")
	}
}

func ptrFloat(f float64) *float64 { return &f }
