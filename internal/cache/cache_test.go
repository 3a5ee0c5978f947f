package cache

import (
	"testing"
	"time"
)

func TestTTLCache_SetGet(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("key", "value", time.Minute)

	got, ok := c.Get("key")
	if !ok {
		t.Fatal("expected key to be present")
	}
	if got != "value" {
		t.Errorf("got %v, want value", got)
	}
}

func TestTTLCache_Expiry(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("key", "value", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("key"); ok {
		t.Error("expected key to have expired")
	}
}

func TestTTLCache_Overwrite(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("key", 1, time.Minute)
	c.Set("key", 2, time.Minute)

	got, _ := c.Get("key")
	if got != 2 {
		t.Errorf("got %v, want 2", got)
	}
}

func TestTTLCache_Delete(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("key", "value", time.Minute)
	c.Delete("key")

	if _, ok := c.Get("key"); ok {
		t.Error("expected key to be gone after delete")
	}
}

func TestTTLCache_Sweep(t *testing.T) {
	c := New(20 * time.Millisecond)
	defer c.Close()

	c.Set("short", "v", 5*time.Millisecond)
	c.Set("long", "v", time.Minute)

	time.Sleep(60 * time.Millisecond)

	if c.Len() != 1 {
		t.Errorf("len = %d after sweep, want 1", c.Len())
	}
}
