package cache_test

import (
	"testing"
	"time"

	"github.com/samyukta/credit-intelligence-go/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("snapshot", "value1")
	val, ok := c.Get("snapshot")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("snapshot", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("snapshot")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Clear(t *testing.T) {
	c := cache.New[int](5 * time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected cache to be empty after Clear")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected cache to be empty after Clear")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("state", "token")
	c.Delete("state")

	_, ok := c.Get("state")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}
