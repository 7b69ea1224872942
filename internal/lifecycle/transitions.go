package lifecycle

import (
	"fmt"

	"github.com/diewo77/storefront/internal/models"
	"github.com/diewo77/storefront/validation"
)

// orderTransitions is the single transition table for order status. Any
// transition absent from it is rejected and leaves the order unchanged.
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivered:  {},
	models.OrderStatusCancelled:  {},
}

// deliveryTransitions tracks the delivery sub-machine: pending ->
// in_progress -> completed, with cancelled and delayed as exception states.
// A delayed delivery may resume, complete, or be cancelled.
var deliveryTransitions = map[models.DeliveryStatus][]models.DeliveryStatus{
	models.DeliveryPending:    {models.DeliveryInProgress, models.DeliveryDelayed, models.DeliveryCancelled},
	models.DeliveryInProgress: {models.DeliveryCompleted, models.DeliveryDelayed, models.DeliveryCancelled},
	models.DeliveryDelayed:    {models.DeliveryInProgress, models.DeliveryCompleted, models.DeliveryCancelled},
	models.DeliveryCompleted:  {},
	models.DeliveryCancelled:  {},
}

// CanTransition reports whether the order status change is in the table.
func CanTransition(from, to models.OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanTransitionDelivery reports whether the delivery status change is valid.
func CanTransitionDelivery(from, to models.DeliveryStatus) bool {
	for _, allowed := range deliveryTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s names a known order status.
func ValidStatus(s models.OrderStatus) bool {
	_, ok := orderTransitions[s]
	return ok
}

// ValidDeliveryStatus reports whether s names a known delivery status.
func ValidDeliveryStatus(s models.DeliveryStatus) bool {
	_, ok := deliveryTransitions[s]
	return ok
}

// InvalidTransitionError is returned when a status change is not in the
// transition table, or when a concurrent update already moved the order.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// ValidationError reports rejected checkout input: missing delivery fields,
// an empty cart, or malformed line data.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", map[string]string(e.Violations))
}
