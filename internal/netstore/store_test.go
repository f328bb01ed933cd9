package netstore

import (
	"path/filepath"
	"testing"

	"github.com/boltdb/bolt"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "network.db")
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		t.Fatalf("bolt.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s, err := Open(db)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestStoreRoundTripsString(t *testing.T) {
	s := newTestStore(t)
	s.SetKey("server", "explorer1.fnonetwork.example:50002:s", true)
	got := s.Get("server", "")
	if got != "explorer1.fnonetwork.example:50002:s" {
		t.Fatalf("unexpected round trip: %v", got)
	}
}

func TestStoreRoundTripsBool(t *testing.T) {
	s := newTestStore(t)
	s.SetKey("oneserver", true, true)
	if got := s.Get("oneserver", false); got != true {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestStoreRoundTripsStringSlice(t *testing.T) {
	s := newTestStore(t)
	want := []string{"a.example:50002:s", "b.example:50001:t"}
	s.SetKey("recent_servers", want, true)
	got, ok := s.Get("recent_servers", []string{}).([]string)
	if !ok || len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected round trip: %#v", got)
	}
}

func TestStoreMissingKeyReturnsDefault(t *testing.T) {
	s := newTestStore(t)
	if got := s.Get("protocol", "s"); got != "s" {
		t.Fatalf("expected default %q, got %v", "s", got)
	}
}
