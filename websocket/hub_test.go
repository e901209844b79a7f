package websocket

import (
	"testing"
	"time"

	"laundry-booking-server/models"
)

func drain(t *testing.T, h *Hub) []*Message {
	t.Helper()
	var messages []*Message
	for {
		select {
		case msg := <-h.Broadcast:
			messages = append(messages, msg)
		default:
			return messages
		}
	}
}

func TestBookingCreatedClearsOwnerSoftLocks(t *testing.T) {
	live := NewMemoryLiveStore()
	hub := NewHub(live, 30*time.Second, time.Minute, nil)

	live.SetReservation("user-1", nil, time.Now())
	live.SetDryerSelection("user-1", nil)

	booking := &models.Booking{
		ID:      "b1",
		Machine: models.MachineWasher1,
		User:    models.UserSnapshot{UID: "user-1"},
	}
	hub.BookingCreated(booking)

	if len(live.Reservations()) != 0 {
		t.Error("owner's tentative reservation must be cleared by an accepted booking")
	}
	if len(live.DryerSelections()) != 0 {
		t.Error("owner's dryer selection must be cleared by an accepted booking")
	}

	messages := drain(t, hub)
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want cancelTempReservation, cancelDryerSelection, programare", len(messages))
	}
	if messages[0].Type != "cancelTempReservation" || messages[1].Type != "cancelDryerSelection" {
		t.Errorf("clear events first, got %s then %s", messages[0].Type, messages[1].Type)
	}
	last := messages[2]
	if last.Type != "programare" {
		t.Fatalf("final message type = %s, want programare", last.Type)
	}
	body := last.Data.(map[string]interface{})
	if body["action"] != "create" {
		t.Errorf("action = %v, want create", body["action"])
	}
	if body["programare"] != booking {
		t.Error("programare payload must carry the booking")
	}
}

func TestBookingCreatedWithoutSoftLocks(t *testing.T) {
	hub := NewHub(NewMemoryLiveStore(), 30*time.Second, time.Minute, nil)

	hub.BookingCreated(&models.Booking{ID: "b1", User: models.UserSnapshot{UID: "user-1"}})

	messages := drain(t, hub)
	if len(messages) != 1 || messages[0].Type != "programare" {
		t.Fatalf("expected only the programare event, got %d messages", len(messages))
	}
}

func TestBookingDeletedEventShape(t *testing.T) {
	hub := NewHub(NewMemoryLiveStore(), 30*time.Second, time.Minute, nil)

	hub.BookingDeleted("b9")

	messages := drain(t, hub)
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}
	body := messages[0].Data.(map[string]interface{})
	if body["action"] != "delete" || body["programareId"] != "b9" {
		t.Errorf("unexpected delete event body: %v", body)
	}
}

func TestNotificationCreatedEventShape(t *testing.T) {
	hub := NewHub(NewMemoryLiveStore(), 30*time.Second, time.Minute, nil)

	notification := &models.Notification{ID: "n1", UserID: "user-1"}
	hub.NotificationCreated(notification)

	messages := drain(t, hub)
	if len(messages) != 1 || messages[0].Type != "notification" {
		t.Fatalf("expected one notification event, got %d messages", len(messages))
	}
	body := messages[0].Data.(map[string]interface{})
	if body["userId"] != "user-1" {
		t.Errorf("userId = %v, want user-1", body["userId"])
	}
}

func TestLiveEventFields(t *testing.T) {
	tests := []struct {
		name       string
		data       interface{}
		payloadKey string
		wantUser   string
		wantNil    bool
	}{
		{
			"user and reservation payload",
			map[string]interface{}{"userId": "u1", "reservation": map[string]interface{}{"machine": "washer-1"}},
			"reservation",
			"u1",
			false,
		},
		{
			"user only",
			map[string]interface{}{"userId": "u1"},
			"",
			"u1",
			true,
		},
		{
			"missing userId",
			map[string]interface{}{"reservation": "x"},
			"reservation",
			"",
			false,
		},
		{
			"not an object",
			"plain string",
			"reservation",
			"",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, payload := liveEventFields(tt.data, tt.payloadKey)
			if userID != tt.wantUser {
				t.Errorf("userID = %q, want %q", userID, tt.wantUser)
			}
			if tt.wantNil && payload != nil {
				t.Errorf("payload = %s, want nil", payload)
			}
		})
	}
}

func TestSweepTentativeAnnouncesEvictions(t *testing.T) {
	live := NewMemoryLiveStore()
	hub := NewHub(live, 30*time.Second, time.Minute, nil)

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	live.SetReservation("stale", nil, base)

	// sweepTentative fans out directly, so a registered client sees the event
	client := &Client{Hub: hub, ID: "c1", Send: make(chan []byte, 8)}
	hub.Clients[client.ID] = client

	hub.sweepTentative(base.Add(time.Minute))

	if len(live.Reservations()) != 0 {
		t.Error("stale reservation survived the sweep")
	}
	select {
	case frame := <-client.Send:
		if len(frame) == 0 {
			t.Error("empty frame sent to client")
		}
	default:
		t.Error("eviction was not announced to connected clients")
	}
}
