package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"laundry-booking-server/metrics"
	"laundry-booking-server/models"
	"laundry-booking-server/timeutil"
)

// Hub manages all WebSocket connections and the ephemeral live state
// (tentative reservations and dryer selections).
type Hub struct {
	// Registered clients
	Clients map[string]*Client

	// Broadcast channel for messages to all clients
	Broadcast chan *Message

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Message handlers
	MessageHandlers map[string]MessageHandler

	live          LiveStore
	tentativeTTL  time.Duration
	sweepInterval time.Duration
	metrics       *metrics.Metrics

	mu sync.RWMutex
}

// Message is the envelope for every frame in both directions.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// MessageHandler handles different types of messages
type MessageHandler func(*Client, *Message) error

// NewHub creates a new WebSocket hub
func NewHub(live LiveStore, tentativeTTL, sweepInterval time.Duration, m *metrics.Metrics) *Hub {
	hub := &Hub{
		Clients:         make(map[string]*Client),
		Broadcast:       make(chan *Message, 256),
		Register:        make(chan *Client),
		Unregister:      make(chan *Client),
		MessageHandlers: make(map[string]MessageHandler),
		live:            live,
		tentativeTTL:    tentativeTTL,
		sweepInterval:   sweepInterval,
		metrics:         m,
	}

	// Register default message handlers
	hub.registerDefaultHandlers()

	return hub
}

// registerDefaultHandlers registers default message handlers
func (h *Hub) registerDefaultHandlers() {
	h.MessageHandlers["tempReservation"] = h.handleTempReservation
	h.MessageHandlers["cancelTempReservation"] = h.handleCancelTempReservation
	h.MessageHandlers["dryerSelection"] = h.handleDryerSelection
	h.MessageHandlers["cancelDryerSelection"] = h.handleCancelDryerSelection
	h.MessageHandlers["requestTempReservationsSync"] = h.handleTempReservationsSync
	h.MessageHandlers["requestDryerSelectionSync"] = h.handleDryerSelectionSync
	h.MessageHandlers["ping"] = h.handlePing
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	sweep := time.NewTicker(h.sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("🔌 Client registered: ID=%s", client.ID)
			h.sendSnapshot(client)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client.ID]; ok {
				delete(h.Clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("🔌 Client unregistered: ID=%s", client.ID)

		case message := <-h.Broadcast:
			h.broadcastMessage(message)

		case <-sweep.C:
			h.sweepTentative(timeutil.Now())
		}
	}
}

// sendSnapshot pushes the current live state to a freshly connected client so
// its view starts consistent with everyone else's.
func (h *Hub) sendSnapshot(client *Client) {
	if err := client.SendMessage(&Message{
		Type:      "syncTempReservations",
		Data:      h.live.Reservations(),
		Timestamp: timeutil.Now(),
	}); err != nil {
		log.Printf("⚠️ Could not sync reservations to client %s: %v", client.ID, err)
	}
	if err := client.SendMessage(&Message{
		Type:      "syncDryerSelection",
		Data:      h.live.DryerSelections(),
		Timestamp: timeutil.Now(),
	}); err != nil {
		log.Printf("⚠️ Could not sync dryer selections to client %s: %v", client.ID, err)
	}
}

// sweepTentative evicts tentative reservations older than the TTL and
// announces each eviction so every client drops the stale soft lock.
func (h *Hub) sweepTentative(now time.Time) {
	evicted := h.live.EvictExpired(now, h.tentativeTTL)
	for _, userID := range evicted {
		log.Printf("⏰ Tentative reservation for user %s expired", userID)
		h.broadcastMessage(&Message{
			Type:      "cancelTempReservation",
			Data:      map[string]interface{}{"userId": userID},
			Timestamp: now,
		})
	}
}

// broadcastMessage sends a message to all connected clients
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	for _, client := range h.Clients {
		select {
		case client.Send <- data:
		default:
			close(client.Send)
			delete(h.Clients, client.ID)
		}
	}
	if h.metrics != nil {
		h.metrics.EventsBroadcast.Inc()
	}
}

// enqueue hands a message to the hub loop without ever blocking the caller.
func (h *Hub) enqueue(messageType string, data interface{}) {
	message := &Message{
		Type:      messageType,
		Data:      data,
		Timestamp: timeutil.Now(),
	}
	select {
	case h.Broadcast <- message:
	default:
		log.Printf("⚠️ Broadcast buffer full, dropping %s event", messageType)
	}
}

// BookingCreated clears the owner's soft locks, announces the clears, then
// fans out the accepted booking.
func (h *Hub) BookingCreated(booking *models.Booking) {
	if userID := booking.User.UID; userID != "" {
		if h.live.CancelReservation(userID) {
			h.enqueue("cancelTempReservation", map[string]interface{}{"userId": userID})
		}
		if h.live.CancelDryerSelection(userID) {
			h.enqueue("cancelDryerSelection", map[string]interface{}{"userId": userID})
		}
	}
	h.enqueue("programare", map[string]interface{}{
		"action":     "create",
		"programare": booking,
	})
}

func (h *Hub) BookingUpdated(booking *models.Booking) {
	h.enqueue("programare", map[string]interface{}{
		"action":     "update",
		"programare": booking,
	})
}

func (h *Hub) BookingDeleted(bookingID string) {
	h.enqueue("programare", map[string]interface{}{
		"action":       "delete",
		"programareId": bookingID,
	})
}

func (h *Hub) NotificationCreated(notification *models.Notification) {
	h.enqueue("notification", map[string]interface{}{
		"userId":       notification.UserID,
		"notification": notification,
	})
}

func (h *Hub) MaintenanceCreated(interval *models.MaintenanceInterval) {
	h.enqueue("maintenance", map[string]interface{}{
		"action":      "create",
		"maintenance": interval,
	})
}

func (h *Hub) MaintenanceDeleted(maintenanceID string) {
	h.enqueue("maintenance", map[string]interface{}{
		"action":        "delete",
		"maintenanceId": maintenanceID,
	})
}

func (h *Hub) SettingsUpdated(setting *models.Setting) {
	h.enqueue("settings", map[string]interface{}{
		"settings": setting,
	})
}

// TempReservations exposes the current soft-lock map (REST mirror of the
// socket snapshot).
func (h *Hub) TempReservations() map[string]TentativeReservation {
	return h.live.Reservations()
}

// handleTempReservation registers or refreshes a user's soft lock and fans it
// out so every client can grey out the interval.
func (h *Hub) handleTempReservation(client *Client, message *Message) error {
	userID, payload := liveEventFields(message.Data, "reservation")
	if userID == "" {
		log.Printf("⚠️ tempReservation without userId from client %s", client.ID)
		return nil
	}
	h.live.SetReservation(userID, payload, timeutil.Now())
	h.broadcastMessage(&Message{Type: "tempReservation", Data: message.Data, Timestamp: timeutil.Now()})
	return nil
}

func (h *Hub) handleCancelTempReservation(client *Client, message *Message) error {
	userID, _ := liveEventFields(message.Data, "")
	if userID == "" {
		return nil
	}
	if h.live.CancelReservation(userID) {
		h.broadcastMessage(&Message{
			Type:      "cancelTempReservation",
			Data:      map[string]interface{}{"userId": userID},
			Timestamp: timeutil.Now(),
		})
	}
	return nil
}

// handleDryerSelection mirrors a user's in-progress dryer picks to everyone.
func (h *Hub) handleDryerSelection(client *Client, message *Message) error {
	userID, payload := liveEventFields(message.Data, "selection")
	if userID == "" {
		log.Printf("⚠️ dryerSelection without userId from client %s", client.ID)
		return nil
	}
	h.live.SetDryerSelection(userID, payload)
	h.broadcastMessage(&Message{Type: "dryerSelection", Data: message.Data, Timestamp: timeutil.Now()})
	return nil
}

func (h *Hub) handleCancelDryerSelection(client *Client, message *Message) error {
	userID, _ := liveEventFields(message.Data, "")
	if userID == "" {
		return nil
	}
	if h.live.CancelDryerSelection(userID) {
		h.broadcastMessage(&Message{
			Type:      "cancelDryerSelection",
			Data:      map[string]interface{}{"userId": userID},
			Timestamp: timeutil.Now(),
		})
	}
	return nil
}

func (h *Hub) handleTempReservationsSync(client *Client, message *Message) error {
	return client.SendMessage(&Message{
		Type:      "syncTempReservations",
		Data:      h.live.Reservations(),
		Timestamp: timeutil.Now(),
	})
}

func (h *Hub) handleDryerSelectionSync(client *Client, message *Message) error {
	return client.SendMessage(&Message{
		Type:      "syncDryerSelection",
		Data:      h.live.DryerSelections(),
		Timestamp: timeutil.Now(),
	})
}

// handlePing handles ping messages for connection health
func (h *Hub) handlePing(client *Client, message *Message) error {
	return client.SendMessage(&Message{
		Type:      "pong",
		Timestamp: timeutil.Now(),
	})
}

// liveEventFields pulls the userId and an optional payload field out of a
// decoded event body.
func liveEventFields(data interface{}, payloadKey string) (string, json.RawMessage) {
	body, ok := data.(map[string]interface{})
	if !ok {
		return "", nil
	}
	userID, _ := body["userId"].(string)
	if payloadKey == "" {
		return userID, nil
	}
	payload, err := json.Marshal(body[payloadKey])
	if err != nil {
		return userID, nil
	}
	return userID, payload
}
