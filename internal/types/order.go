package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ladder-trading/pkg/errors"
)

type PurchaseType string

type OrderType string

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

const (
	OrderReasonEntryLadder string = "entry_ladder"
	OrderReasonExitLadder  string = "exit_ladder"
	OrderReasonZeroOut     string = "zero_out"
)

// Reason records the machine-readable reason and a human-readable message for
// an order or event.
type Reason struct {
	Reason  string `yaml:"reason" json:"reason" validate:"required"`
	Message string `yaml:"message" json:"message" validate:"required"`
}

// Opposite returns the opposite purchase side.
func (p PurchaseType) Opposite() PurchaseType {
	if p == PurchaseTypeBuy {
		return PurchaseTypeSell
	}

	return PurchaseTypeBuy
}

// OrderIntent is the engine's instruction to the order-routing collaborator.
// Limit intents carry the resting price; market intents execute at the last
// traded price.
type OrderIntent struct {
	LineID    string       `yaml:"line_id" json:"line_id"`
	Symbol    string       `yaml:"symbol" json:"symbol" validate:"required"`
	Side      PurchaseType `yaml:"side" json:"side" validate:"required,oneof=BUY SELL"`
	OrderType OrderType    `yaml:"order_type" json:"order_type" validate:"required,oneof=MARKET LIMIT"`
	Price     float64      `yaml:"price" json:"price" validate:"gte=0"`
	Quantity  int64        `yaml:"quantity" json:"quantity" validate:"required,gt=0"`
	Reason    Reason       `yaml:"reason" json:"reason" validate:"required"`
}

// Order is a resting or executed order as tracked by the router.
// Quantity is the remaining unfilled size; FilledQuantity accumulates fills.
type Order struct {
	OrderID        string                     `yaml:"order_id" json:"order_id"`
	LineID         string                     `yaml:"line_id" json:"line_id"`
	Symbol         string                     `yaml:"symbol" json:"symbol"`
	Side           PurchaseType               `yaml:"side" json:"side"`
	OrderType      OrderType                  `yaml:"order_type" json:"order_type"`
	Price          float64                    `yaml:"price" json:"price"`
	Quantity       int64                      `yaml:"quantity" json:"quantity"`
	FilledQuantity int64                      `yaml:"filled_quantity" json:"filled_quantity"`
	Status         OrderStatus                `yaml:"status" json:"status"`
	PlacedAt       time.Time                  `yaml:"placed_at" json:"placed_at"`
	FilledAt       optional.Option[time.Time] `yaml:"filled_at" json:"filled_at"`
	Reason         Reason                     `yaml:"reason" json:"reason"`
}

// Validate validates the OrderIntent struct.
func (oi *OrderIntent) Validate() error {
	validate := validator.New()
	if err := validate.Struct(oi); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order intent", err)
	}

	// Limit intents must carry a positive resting price; market intents
	// execute at the venue's last traded price and carry none.
	if oi.OrderType == OrderTypeLimit && oi.Price <= 0 {
		return errors.Newf(errors.ErrCodeInvalidOrder, "limit intent requires a positive price, got %f", oi.Price)
	}

	return nil
}

// IsOpen reports whether the order is still resting at the venue.
func (o Order) IsOpen() bool {
	return o.Status == OrderStatusPending
}
