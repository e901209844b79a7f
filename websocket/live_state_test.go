package websocket

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMemoryLiveStoreReservations(t *testing.T) {
	store := NewMemoryLiveStore()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	payload := json.RawMessage(`{"machine":"washer-1","startTime":"10:00"}`)

	store.SetReservation("user-1", payload, base)

	snapshot := store.Reservations()
	if len(snapshot) != 1 {
		t.Fatalf("got %d reservations, want 1", len(snapshot))
	}
	got, ok := snapshot["user-1"]
	if !ok {
		t.Fatal("reservation for user-1 missing from snapshot")
	}
	if string(got.Payload) != string(payload) {
		t.Errorf("payload = %s, want %s", got.Payload, payload)
	}

	if !store.CancelReservation("user-1") {
		t.Error("cancelling an existing reservation must report true")
	}
	if store.CancelReservation("user-1") {
		t.Error("cancelling twice must report false")
	}
	if len(store.Reservations()) != 0 {
		t.Error("snapshot still holds a cancelled reservation")
	}
}

func TestMemoryLiveStoreEviction(t *testing.T) {
	store := NewMemoryLiveStore()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 30 * time.Second

	store.SetReservation("stale", nil, base)
	store.SetReservation("fresh", nil, base.Add(20*time.Second))

	evicted := store.EvictExpired(base.Add(31*time.Second), ttl)
	if len(evicted) != 1 || evicted[0] != "stale" {
		t.Fatalf("evicted = %v, want [stale]", evicted)
	}

	snapshot := store.Reservations()
	if _, ok := snapshot["stale"]; ok {
		t.Error("stale reservation survived eviction")
	}
	if _, ok := snapshot["fresh"]; !ok {
		t.Error("fresh reservation was evicted")
	}
}

func TestMemoryLiveStoreEvictionAtExactTTL(t *testing.T) {
	store := NewMemoryLiveStore()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 30 * time.Second

	store.SetReservation("edge", nil, base)

	// exactly at the TTL the reservation is still valid
	if evicted := store.EvictExpired(base.Add(ttl), ttl); len(evicted) != 0 {
		t.Errorf("reservation at exactly the TTL must survive, evicted %v", evicted)
	}
}

func TestMemoryLiveStoreDryerSelections(t *testing.T) {
	store := NewMemoryLiveStore()
	payload := json.RawMessage(`{"slots":["21:00"]}`)

	store.SetDryerSelection("user-1", payload)

	snapshot := store.DryerSelections()
	if string(snapshot["user-1"]) != string(payload) {
		t.Errorf("selection = %s, want %s", snapshot["user-1"], payload)
	}

	if !store.CancelDryerSelection("user-1") {
		t.Error("cancelling an existing selection must report true")
	}
	if store.CancelDryerSelection("user-1") {
		t.Error("cancelling twice must report false")
	}
}

func TestMemoryLiveStoreSnapshotIsolation(t *testing.T) {
	store := NewMemoryLiveStore()
	store.SetReservation("user-1", nil, time.Now())

	snapshot := store.Reservations()
	delete(snapshot, "user-1")

	if len(store.Reservations()) != 1 {
		t.Error("mutating a snapshot must not affect the store")
	}
}
