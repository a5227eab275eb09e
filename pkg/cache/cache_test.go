package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := NewMemory(time.Minute)
	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("Get = %q, %v; want %q, true", got, ok, "v")
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}
}

func TestExpiry(t *testing.T) {
	c := NewMemory(10 * time.Millisecond)
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestInvalidate(t *testing.T) {
	c := NewMemory(time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Invalidate()
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected a to be gone after Invalidate")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be gone after Invalidate")
	}
}
