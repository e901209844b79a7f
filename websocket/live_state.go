package websocket

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TentativeReservation is a UI-level soft lock a user holds while filling
// out the booking form. Never persisted; lost on restart by design.
type TentativeReservation struct {
	UserID    string          `json:"user_id"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// LiveStore holds the ephemeral tentative-reservation and dryer-selection
// maps. The in-memory implementation is the default; the Redis one shares
// the maps across instances.
type LiveStore interface {
	SetReservation(userID string, payload json.RawMessage, at time.Time)
	CancelReservation(userID string) bool
	Reservations() map[string]TentativeReservation
	// EvictExpired removes reservations older than ttl and returns the
	// affected user ids so the eviction can be announced.
	EvictExpired(now time.Time, ttl time.Duration) []string

	SetDryerSelection(userID string, payload json.RawMessage)
	CancelDryerSelection(userID string) bool
	DryerSelections() map[string]json.RawMessage
}

// MemoryLiveStore keeps the live state in process memory.
type MemoryLiveStore struct {
	mu           sync.RWMutex
	reservations map[string]TentativeReservation
	selections   map[string]json.RawMessage
}

func NewMemoryLiveStore() *MemoryLiveStore {
	return &MemoryLiveStore{
		reservations: make(map[string]TentativeReservation),
		selections:   make(map[string]json.RawMessage),
	}
}

func (s *MemoryLiveStore) SetReservation(userID string, payload json.RawMessage, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[userID] = TentativeReservation{UserID: userID, Payload: payload, Timestamp: at}
}

func (s *MemoryLiveStore) CancelReservation(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[userID]; !ok {
		return false
	}
	delete(s.reservations, userID)
	return true
}

func (s *MemoryLiveStore) Reservations() map[string]TentativeReservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]TentativeReservation, len(s.reservations))
	for userID, reservation := range s.reservations {
		snapshot[userID] = reservation
	}
	return snapshot
}

func (s *MemoryLiveStore) EvictExpired(now time.Time, ttl time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var evicted []string
	for userID, reservation := range s.reservations {
		if now.Sub(reservation.Timestamp) > ttl {
			delete(s.reservations, userID)
			evicted = append(evicted, userID)
		}
	}
	return evicted
}

func (s *MemoryLiveStore) SetDryerSelection(userID string, payload json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections[userID] = payload
}

func (s *MemoryLiveStore) CancelDryerSelection(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selections[userID]; !ok {
		return false
	}
	delete(s.selections, userID)
	return true
}

func (s *MemoryLiveStore) DryerSelections() map[string]json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]json.RawMessage, len(s.selections))
	for userID, selection := range s.selections {
		snapshot[userID] = selection
	}
	return snapshot
}

const (
	redisReservationPrefix = "laundry:tentative:"
	redisSelectionPrefix   = "laundry:dryersel:"
)

// RedisLiveStore backs the live state with a shared Redis instance so
// multiple service instances observe the same soft locks. Errors are logged
// and degrade to empty state: the maps are best-effort UI hints, never
// authoritative.
type RedisLiveStore struct {
	client *redis.Client
}

func NewRedisLiveStore(addr, password string, db int) *RedisLiveStore {
	return &RedisLiveStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *RedisLiveStore) SetReservation(userID string, payload json.RawMessage, at time.Time) {
	data, err := json.Marshal(TentativeReservation{UserID: userID, Payload: payload, Timestamp: at})
	if err != nil {
		log.Printf("⚠️ Unable to encode tentative reservation for %s: %v", userID, err)
		return
	}
	if err := s.client.Set(context.Background(), redisReservationPrefix+userID, data, 0).Err(); err != nil {
		log.Printf("⚠️ Redis set reservation failed: %v", err)
	}
}

func (s *RedisLiveStore) CancelReservation(userID string) bool {
	removed, err := s.client.Del(context.Background(), redisReservationPrefix+userID).Result()
	if err != nil {
		log.Printf("⚠️ Redis del reservation failed: %v", err)
		return false
	}
	return removed > 0
}

func (s *RedisLiveStore) Reservations() map[string]TentativeReservation {
	snapshot := make(map[string]TentativeReservation)
	for userID, data := range s.scan(redisReservationPrefix) {
		var reservation TentativeReservation
		if err := json.Unmarshal([]byte(data), &reservation); err != nil {
			continue
		}
		snapshot[userID] = reservation
	}
	return snapshot
}

func (s *RedisLiveStore) EvictExpired(now time.Time, ttl time.Duration) []string {
	var evicted []string
	for userID, reservation := range s.Reservations() {
		if now.Sub(reservation.Timestamp) > ttl {
			if s.CancelReservation(userID) {
				evicted = append(evicted, userID)
			}
		}
	}
	return evicted
}

func (s *RedisLiveStore) SetDryerSelection(userID string, payload json.RawMessage) {
	if err := s.client.Set(context.Background(), redisSelectionPrefix+userID, []byte(payload), 0).Err(); err != nil {
		log.Printf("⚠️ Redis set dryer selection failed: %v", err)
	}
}

func (s *RedisLiveStore) CancelDryerSelection(userID string) bool {
	removed, err := s.client.Del(context.Background(), redisSelectionPrefix+userID).Result()
	if err != nil {
		log.Printf("⚠️ Redis del dryer selection failed: %v", err)
		return false
	}
	return removed > 0
}

func (s *RedisLiveStore) DryerSelections() map[string]json.RawMessage {
	snapshot := make(map[string]json.RawMessage)
	for userID, data := range s.scan(redisSelectionPrefix) {
		snapshot[userID] = json.RawMessage(data)
	}
	return snapshot
}

func (s *RedisLiveStore) scan(prefix string) map[string]string {
	ctx := context.Background()
	out := make(map[string]string)

	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		value, err := s.client.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		out[strings.TrimPrefix(key, prefix)] = value
	}
	if err := iter.Err(); err != nil {
		log.Printf("⚠️ Redis scan failed: %v", err)
	}
	return out
}
