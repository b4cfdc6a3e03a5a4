package cache

import (
	"strings"
	"testing"
	"time"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://localhost:6379/0", false},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	ctx := t.Context()
	_, err := New(ctx, "redis://localhost:59999")
	if err == nil {
		t.Fatal("New() should return error for unreachable host")
	}
}

func TestCache_Operations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping cache integration test in short mode")
	}

	ctx := t.Context()
	c, err := New(ctx, "redis://localhost:6379/15")
	if err != nil {
		t.Skipf("no local cache available: %v", err)
	}
	defer c.Close()

	key := "test:" + t.Name()
	defer c.Client.Del(ctx, key, key+":list")

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get() on missing key = ok %v, err %v", ok, err)
	}
	if err := c.Set(ctx, key, []byte("hello"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok || string(got) != "hello" {
		t.Fatalf("Get() = %q, %v, %v", got, ok, err)
	}

	list := key + ":list"
	if err := c.AppendCapped(ctx, list, 3, time.Minute, "a", "b", "c", "d"); err != nil {
		t.Fatalf("AppendCapped() error = %v", err)
	}
	tail, err := c.Tail(ctx, list, 10)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if strings.Join(tail, ",") != "b,c,d" {
		t.Errorf("Tail() = %v, want [b c d]", tail)
	}
}
