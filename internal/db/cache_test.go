package db

import (
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestCacheRoundTrip(t *testing.T) {
	database := testDB(t)

	if _, ok := database.GetCached("missing"); ok {
		t.Fatal("GetCached hit on an empty cache")
	}

	if err := database.SetCached("k1", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("SetCached: %v", err)
	}
	got, ok := database.GetCached("k1")
	if !ok || string(got) != "payload" {
		t.Fatalf("GetCached = (%q, %v), want stored payload", got, ok)
	}

	// Replacement overwrites in place.
	if err := database.SetCached("k1", []byte("updated"), time.Hour); err != nil {
		t.Fatalf("SetCached replace: %v", err)
	}
	if got, _ := database.GetCached("k1"); string(got) != "updated" {
		t.Errorf("GetCached after replace = %q, want updated", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	database := testDB(t)

	if err := database.SetCached("stale", []byte("old"), -time.Minute); err != nil {
		t.Fatalf("SetCached: %v", err)
	}
	if _, ok := database.GetCached("stale"); ok {
		t.Error("GetCached returned an expired entry")
	}
}

func TestPurgeExpired(t *testing.T) {
	database := testDB(t)

	if err := database.SetCached("stale", []byte("old"), -time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := database.SetCached("fresh", []byte("new"), time.Hour); err != nil {
		t.Fatal(err)
	}

	purged, err := database.PurgeExpired()
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if purged != 1 {
		t.Errorf("PurgeExpired removed %d entries, want 1", purged)
	}
	if _, ok := database.GetCached("fresh"); !ok {
		t.Error("PurgeExpired removed a live entry")
	}
}
