package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/voici5986/lumina-layout/internal/layout"
)

func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	c, err := NewRedis(ctx, mr.Addr(), time.Minute)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer func() { _ = c.Close() }()

	if _, ok, err := c.Get(ctx, "k1"); err != nil || ok {
		t.Fatalf("empty get = %v, %v; want miss", ok, err)
	}

	content := "hello"
	want := layout.Structure{PageCount: 1, Pages: []layout.Page{{
		PageIndex: 1, Width: 612, Height: 792,
		Blocks: []layout.Block{{ID: "el_1_0", Type: "text", BBox: [4]float64{1, 2, 3, 4}, PageIndex: 1, Content: &content}},
	}}}
	if err := c.Set(ctx, "k1", want); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("get = %v, %v; want hit", ok, err)
	}
	if got.PageCount != 1 || got.Pages[0].Blocks[0].ID != "el_1_0" || *got.Pages[0].Blocks[0].Content != "hello" {
		t.Fatalf("round trip: %+v", got)
	}
	if !mr.Exists(keyPrefix + "k1") {
		t.Fatalf("expected prefixed key in redis")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k1"); ok {
		t.Fatalf("entry should have expired")
	}
}

func TestRedisCorruptEntryIsMiss(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	if err := mr.Set(keyPrefix+"bad", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, err := NewRedis(context.Background(), "redis://"+mr.Addr()+"/0", 0)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer func() { _ = c.Close() }()
	if _, ok, err := c.Get(context.Background(), "bad"); ok || err != nil {
		t.Fatalf("corrupt entry = %v, %v; want miss", ok, err)
	}
}

func TestNewRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedis(ctx, "127.0.0.1:1", 0); err == nil {
		t.Fatalf("expected ping error")
	}
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	if err := c.Set(context.Background(), "k", layout.Structure{PageCount: 1}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := c.Get(context.Background(), "k"); ok {
		t.Fatalf("nop cache must never hit")
	}
}

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		url    string
		addrs  int
		master string
		db     int
		tls    bool
	}{
		{"localhost:6379", 1, "", 0, false},
		{"redis://:pass@localhost:6379/1", 1, "", 1, false},
		{"redis://host1:6379,host2:6379/0", 2, "", 0, false},
		{"rediss://localhost:6380?db=3", 1, "", 3, true},
		{"redis-sentinel://s1:26379,s2:26379/mymaster?db=2", 2, "mymaster", 2, false},
	}
	for _, tt := range tests {
		opts, err := parseRedisURL(tt.url)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.url, err)
		}
		if len(opts.Addrs) != tt.addrs || opts.MasterName != tt.master || opts.DB != tt.db || (opts.TLSConfig != nil) != tt.tls {
			t.Fatalf("parse %q = %+v", tt.url, opts)
		}
	}
	for _, bad := range []string{"http://localhost", "redis://localhost/x", "redis-sentinel://h/m?db=z"} {
		if _, err := parseRedisURL(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
