// Package notify carries order lifecycle events to whatever actually sends
// email/SMS. The core only decides when to notify; delivery is best-effort
// and never rolls back a state transition.
package notify

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Event describes one successful lifecycle transition.
type Event struct {
	ID         string    `json:"id"`
	OrderID    uint      `json:"order_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Channel    string    `json:"channel"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent builds a transition event. fromStatus is empty when the event is
// the order's placement.
func NewEvent(orderID uint, fromStatus, toStatus, channel string) Event {
	return Event{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Channel:    channel,
		OccurredAt: time.Now(),
	}
}

// Dispatcher receives lifecycle events. Implementations may fail; callers
// log the error and move on.
type Dispatcher interface {
	Notify(ctx context.Context, ev Event) error
}

// LogDispatcher writes events to the process log. Used in development and
// when no broker is configured.
type LogDispatcher struct{}

func (LogDispatcher) Notify(_ context.Context, ev Event) error {
	log.Printf("order %d: %s -> %s (event %s)", ev.OrderID, ev.FromStatus, ev.ToStatus, ev.ID)
	return nil
}
