package notify

import (
	"context"
	"testing"
)

func TestNewEvent(t *testing.T) {
	ev := NewEvent(7, "pending", "processing", "email")
	if ev.ID == "" {
		t.Fatal("event ID should be set")
	}
	if ev.OrderID != 7 || ev.FromStatus != "pending" || ev.ToStatus != "processing" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.OccurredAt.IsZero() {
		t.Fatal("OccurredAt should be set")
	}

	other := NewEvent(7, "pending", "processing", "email")
	if other.ID == ev.ID {
		t.Fatal("event IDs should be unique")
	}
}

func TestNewEvent_PlacementHasEmptyFrom(t *testing.T) {
	ev := NewEvent(1, "", "pending", "email")
	if ev.FromStatus != "" || ev.ToStatus != "pending" {
		t.Fatalf("unexpected placement event: %+v", ev)
	}
}

func TestLogDispatcher_Notify(t *testing.T) {
	d := LogDispatcher{}
	if err := d.Notify(context.Background(), NewEvent(1, "", "pending", "email")); err != nil {
		t.Fatalf("notify: %v", err)
	}
}
