package cache

import (
	"testing"
	"time"
)

type requestShape struct {
	States []string `json:"states"`
	IDs    []string `json:"ids"`
}

func TestKey(t *testing.T) {
	a := Key(requestShape{States: []string{"NSW"}, IDs: []string{"1//DP131118"}})
	b := Key(requestShape{States: []string{"NSW"}, IDs: []string{"1//DP131118"}})
	c := Key(requestShape{States: []string{"NSW"}, IDs: []string{"2//DP131118"}})

	if a == "" || len(a) != 16 {
		t.Fatalf("Key = %q, want 16 hex chars", a)
	}
	if a != b {
		t.Error("equal requests produced different keys")
	}
	if a == c {
		t.Error("different requests produced the same key")
	}

	if Key(make(chan int)) != "" {
		t.Error("Key of an unencodable value should be empty")
	}
}

func TestResponseCache(t *testing.T) {
	c := New(10, time.Minute)
	req := requestShape{States: []string{"NSW"}}

	if _, ok := c.Get(req); ok {
		t.Fatal("Get hit on an empty cache")
	}

	c.Set(req, []byte("payload"))
	got, ok := c.Get(req)
	if !ok || string(got) != "payload" {
		t.Fatalf("Get = (%q, %v), want cached payload", got, ok)
	}

	if _, ok := c.Get(requestShape{States: []string{"QLD"}}); ok {
		t.Error("Get hit for a different request")
	}
}

func TestResponseCacheExpiry(t *testing.T) {
	c := New(10, 20*time.Millisecond)
	c.Set("k", []byte("v"))

	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry missing before TTL")
	}
	time.Sleep(50 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("entry still present after TTL")
	}
}
