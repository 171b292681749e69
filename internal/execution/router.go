// Package execution defines the order-routing collaborator surface and a
// deterministic paper venue used for simulation and tests.
package execution

import (
	"github.com/rxtech-lab/ladder-trading/internal/types"
)

// OrderRouter is the venue-facing collaborator that holds resting orders.
// The engine core never talks to a broker directly; it only emits intents
// through this interface and polls order state back.
type OrderRouter interface {
	// PlaceOrder submits an intent and returns the venue's view of the
	// created order. Market intents may return an already-filled order.
	PlaceOrder(intent types.OrderIntent) (types.Order, error)

	// AmendOrder changes the price and remaining quantity of a resting order
	// in place, preserving any quantity already filled.
	AmendOrder(orderID string, price float64, quantity int64) error

	// CancelOrder cancels a resting order. Fills accumulated before the
	// cancel are preserved on the order.
	CancelOrder(orderID string) error

	// OrderStatus returns the venue's current view of an order.
	OrderStatus(orderID string) (types.Order, error)
}
